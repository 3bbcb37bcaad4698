// Package docx provides access to the parts of a DOCX (Office Open XML)
// package: the main document, note parts, relationships, metadata and
// embedded media.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
)

// Part names used by the converter.
const (
	DocumentPart     = "word/document.xml"
	StylesPart       = "word/styles.xml"
	contentTypesPart = "[Content_Types].xml"
)

var (
	// ErrNotDocx is returned when a file is not a WordprocessingML package.
	ErrNotDocx = errors.New("not a DOCX package")
	// ErrNoPart is returned when a package member does not exist.
	ErrNoPart = errors.New("part not found")
)

// Reader provides access to DOCX package content.
type Reader struct {
	closer io.Closer
	files  map[string]*zip.File
	rels   map[string]relationshipXML
}

// Open opens a DOCX file for reading.
func Open(filename string) (*Reader, error) {
	zc, err := zip.OpenReader(filename)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: %w", ErrNotDocx, err)
		}
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	r, err := newReader(&zc.Reader)
	if err != nil {
		zc.Close()
		return nil, err
	}
	r.closer = zc
	return r, nil
}

// NewReader reads a DOCX package from ra, which has the given size.
func NewReader(ra io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotDocx, err)
	}
	return newReader(zr)
}

// OpenBytes reads a DOCX package held in memory.
func OpenBytes(data []byte) (*Reader, error) {
	return NewReader(bytes.NewReader(data), int64(len(data)))
}

func newReader(zr *zip.Reader) (*Reader, error) {
	r := &Reader{
		files: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		r.files[f.Name] = f
	}

	if err := r.validate(); err != nil {
		return nil, err
	}

	// Relationships are optional: a document without images or links
	// may not have any.
	if err := r.parseRelationships(); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}
	return r, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

// validate checks that required DOCX files exist.
func (r *Reader) validate() error {
	for _, name := range []string{contentTypesPart, DocumentPart} {
		if !r.HasPart(name) {
			return fmt.Errorf("%w: missing required file: %s", ErrNotDocx, name)
		}
	}
	return nil
}

// HasPart reports whether the package contains the named member.
func (r *Reader) HasPart(name string) bool {
	_, ok := r.files[name]
	return ok
}

// OpenPart opens a package member for streaming.
func (r *Reader) OpenPart(name string) (io.ReadCloser, error) {
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPart, name)
	}
	return f.Open()
}

// Part reads the content of a package member.
func (r *Reader) Part(name string) ([]byte, error) {
	rc, err := r.OpenPart(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Parts returns the names of all package members, sorted.
func (r *Reader) Parts() []string {
	names := make([]string, 0, len(r.files))
	for name := range r.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// relationshipsName returns the relationships member of a part:
// word/document.xml has word/_rels/document.xml.rels.
func relationshipsName(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

// parseRelationships parses the document relationships file.
func (r *Reader) parseRelationships() error {
	rels, err := r.relationships(DocumentPart)
	if err != nil {
		return err
	}
	r.rels = rels
	return nil
}

// relationships reads the relationship table of part. A part without a
// relationships member has an empty table.
func (r *Reader) relationships(part string) (map[string]relationshipXML, error) {
	out := make(map[string]relationshipXML)
	data, err := r.Part(relationshipsName(part))
	if errors.Is(err, ErrNoPart) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, err
	}
	for _, rel := range rels.Relationships {
		out[rel.ID] = rel
	}
	return out, nil
}

func targets(rels map[string]relationshipXML) map[string]string {
	links := make(map[string]string, len(rels))
	for id, rel := range rels {
		links[id] = rel.Target
	}
	return links
}

// Links returns the relationship table of the main document: relationship
// id to target. Internal targets are relative to word/ ("media/image1.png"),
// external ones are URLs.
func (r *Reader) Links() map[string]string {
	return targets(r.rels)
}

// PartLinks returns the relationship table of any part, such as
// word/footnotes.xml. Relationship ids are local to their part: rId1 of the
// footnotes usually means something else than rId1 of the main document.
func (r *Reader) PartLinks(part string) (map[string]string, error) {
	if part == DocumentPart {
		return r.Links(), nil
	}
	rels, err := r.relationships(part)
	if err != nil {
		return nil, fmt.Errorf("parsing relationships of %s: %w", part, err)
	}
	return targets(rels), nil
}
