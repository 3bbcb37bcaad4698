package docx

import (
	"bytes"
	"image"
	"path"
	"sort"
	"strings"

	// Decoders registered for DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/docx2ctx/model"
)

const mediaDir = "word/media/"

// imageExtensions are the media members extracted as figures.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImage reports whether name has a picture extension the converter
// extracts.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

// Images returns the pictures stored under word/media, sorted by name.
// Dimensions are filled in when the format can be decoded; undecodable
// images are still returned with zero size.
func (r *Reader) Images() ([]model.Image, error) {
	var names []string
	for name := range r.files {
		if strings.HasPrefix(name, mediaDir) && IsImage(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	images := make([]model.Image, 0, len(names))
	for _, name := range names {
		img, err := r.image(name)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// ImageData returns the picture with the given base name, as used in
// \externalfigure.
func (r *Reader) ImageData(name string) (model.Image, error) {
	return r.image(mediaDir + path.Base(name))
}

func (r *Reader) image(member string) (model.Image, error) {
	data, err := r.Part(member)
	if err != nil {
		return model.Image{}, err
	}
	img := model.Image{Name: path.Base(member), Data: data}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Format = format
		img.Width = cfg.Width
		img.Height = cfg.Height
	}
	return img, nil
}
