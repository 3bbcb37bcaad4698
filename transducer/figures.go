package transducer

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/tsawler/docx2ctx/xmlstream"
)

// figure describes an inline image while its a:graphic is open.
type figure struct {
	name  string
	descr string
	relID string
	file  string
}

func (t *Transducer) openDocPr(ev xmlstream.Event) error {
	f := figure{}
	f.name, _ = ev.Attr("name")
	f.descr, _ = ev.Attr("descr")
	if f.descr == "" {
		f.descr, _ = ev.Attr("title")
	}
	t.docPr = f
	return nil
}

func (t *Transducer) openGraphic(xmlstream.Event) error {
	f := t.docPr
	t.image = &f
	return nil
}

// openPictureProps copies name and description of pic:cNvPr over the
// drawing defaults. Empty values keep the defaults.
func (t *Transducer) openPictureProps(ev xmlstream.Event) error {
	if t.image == nil {
		return nil
	}
	if v, _ := ev.Attr("name"); v != "" {
		t.image.name = v
	}
	if v, _ := ev.Attr("descr"); v != "" {
		t.image.descr = v
	}
	return nil
}

func (t *Transducer) openBlip(ev xmlstream.Event) error {
	if t.image == nil {
		return nil
	}
	id, _ := ev.Attr("r:embed")
	if id == "" {
		id, _ = ev.Attr("r:link")
	}
	if id == "" {
		return errors.New("image without relationship id")
	}
	target, ok := t.cfg.Links[id]
	if !ok {
		return fmt.Errorf("unknown image relationship %q", id)
	}
	t.image.relID = id
	t.image.file = path.Base(target)
	return nil
}

func (t *Transducer) closeGraphic() error {
	f := t.image
	t.image = nil
	t.docPr = figure{}
	if f == nil || !t.cfg.Options.Images || t.collect || t.note != nil {
		return nil
	}
	if f.file == "" {
		// charts and shapes carry no picture
		t.log.Debug("skipping graphic without image", "name", f.name)
		return nil
	}

	if strings.TrimSpace(f.descr) == "" && t.cfg.Captioner != nil {
		caption, err := t.cfg.Captioner.Caption(f.file)
		if err != nil {
			t.log.Debug("no caption", "image", f.file, "error", err)
		} else {
			f.descr = caption
		}
	}

	ref := referenceName(f.name)
	if ref == "" {
		ref = f.relID
	}
	t.stats.Figures++
	fmt.Fprintf(&t.body, "\n\\startplacefigure[location=here,reference=%s,title={%s}]%% %s\n\\externalfigure[%s]\n\\stopplacefigure\n",
		ref, Escape(strings.Join(strings.Fields(f.descr), " ")), f.relID, f.file)
	return nil
}

// referenceName turns a drawing name into a ConTeXt reference: letters,
// digits and -:. are kept, spaces and underscores become "_".
func referenceName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == ':', r == '.':
			return r
		case unicode.IsSpace(r), r == '_':
			return '_'
		}
		return -1
	}, strings.TrimSpace(name))
}
