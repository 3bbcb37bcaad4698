package model

import (
	"strings"
	"time"
)

// Metadata contains document-level information from the package properties.
type Metadata struct {
	Title       string
	Subtitle    string
	Author      string
	Subject     string
	Keywords    []string
	Description string
	Language    string // as declared, e.g. "de-DE"
	Creator     string
	Modified    time.Time
	// Custom metadata
	Custom map[string]string
}

// NewMetadata creates empty metadata.
func NewMetadata() Metadata {
	return Metadata{Custom: make(map[string]string)}
}

// KeywordString returns the keywords joined with ", ".
func (m Metadata) KeywordString() string {
	return strings.Join(m.Keywords, ", ")
}

// Values returns the metadata as a flat key/value map. Custom entries are
// included but never override the standard keys.
func (m Metadata) Values() map[string]string {
	v := make(map[string]string, len(m.Custom)+8)
	for k, val := range m.Custom {
		v[k] = val
	}
	v["title"] = m.Title
	v["subtitle"] = m.Subtitle
	v["author"] = m.Author
	v["subject"] = m.Subject
	v["keywords"] = m.KeywordString()
	v["description"] = m.Description
	v["language"] = m.Language
	v["creator"] = m.Creator
	if !m.Modified.IsZero() {
		v["modified"] = m.Modified.Format(time.RFC3339)
	}
	return v
}

// Image is an embedded picture referenced by a figure placement.
type Image struct {
	Name   string // file name inside word/media, used in \externalfigure
	Format string // "png", "jpeg", ... as reported by the decoder; "" if unknown
	Width  int    // pixels, 0 if the format could not be decoded
	Height int
	Data   []byte
}

// Size returns the payload length in bytes.
func (img Image) Size() int {
	return len(img.Data)
}
