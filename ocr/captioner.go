package ocr

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrOCRNotEnabled is returned when OCR is requested but support was not
// compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// MaxCaption is the longest caption, in runes, derived from recognized text.
const MaxCaption = 80

// tesseractLanguages maps base language codes to Tesseract traineddata names.
var tesseractLanguages = map[string]string{
	"de": "deu",
	"en": "eng",
	"fr": "fra",
	"it": "ita",
	"es": "spa",
	"nl": "nld",
}

// TesseractLanguage returns the Tesseract language for a base language
// code, always including English as a fallback for labels.
func TesseractLanguage(base string) string {
	lang, ok := tesseractLanguages[base]
	if !ok || lang == "eng" {
		return "eng"
	}
	return lang + "+eng"
}

// Recognizer is the part of Client a Captioner needs.
type Recognizer interface {
	RecognizeImage(data []byte) (string, error)
}

// Loader returns the encoded bytes of a figure file.
type Loader func(name string) ([]byte, error)

// Captioner derives figure titles from the text found in the picture.
type Captioner struct {
	rec  Recognizer
	load Loader
}

// NewCaptioner returns a Captioner reading figures through load.
func NewCaptioner(rec Recognizer, load Loader) *Captioner {
	return &Captioner{rec: rec, load: load}
}

// Caption returns the first line of text recognized in the named figure,
// shortened to MaxCaption runes. An empty string means nothing legible
// was found.
func (c *Captioner) Caption(name string) (string, error) {
	data, err := c.load(name)
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", name, err)
	}
	text, err := c.rec.RecognizeImage(data)
	if err != nil {
		return "", fmt.Errorf("recognizing %s: %w", name, err)
	}
	return firstLine(text), nil
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > MaxCaption {
			runes := []rune(line)
			line = strings.TrimSpace(string(runes[:MaxCaption])) + "…"
		}
		return line
	}
	return ""
}
