package xmlstream

import (
	"encoding/xml"
	"fmt"
	"io"
)

// namespacePrefixes maps OOXML namespace URIs to their conventional prefixes.
var namespacePrefixes = map[string]string{
	"http://schemas.openxmlformats.org/wordprocessingml/2006/main":           "w",
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships":    "r",
	"http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing": "wp",
	"http://schemas.openxmlformats.org/drawingml/2006/main":                  "a",
	"http://schemas.openxmlformats.org/drawingml/2006/picture":               "pic",
	"http://schemas.openxmlformats.org/markup-compatibility/2006":            "mc",
	"http://schemas.microsoft.com/office/word/2010/wordml":                   "w14",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingShape":      "wps",
	"urn:schemas-microsoft-com:vml":                                          "v",
	"urn:schemas-microsoft-com:office:office":                                "o",
	"http://www.w3.org/XML/1998/namespace":                                   "xml",
}

// Qualify renders an xml.Name as "prefix:local". Known namespace URIs are
// replaced by their conventional prefix; an undeclared prefix (which
// encoding/xml leaves in Space) is kept as is.
func Qualify(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	if p, ok := namespacePrefixes[n.Space]; ok {
		return p + ":" + n.Local
	}
	return n.Space + ":" + n.Local
}

// Decoder reads events from an XML document.
//
// Content inside mc:Fallback is skipped: the mc:Choice branch carries the
// same content and would otherwise be emitted twice. Namespace declarations
// are not reported as attributes.
type Decoder struct {
	dec *xml.Decoder
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	dec := xml.NewDecoder(r)
	// No entity expansion beyond the XML built-ins.
	dec.Entity = map[string]string{}
	return &Decoder{dec: dec}
}

// Next implements Source. Malformed input yields a non-EOF error; the
// stream cannot be resumed after that.
func (d *Decoder) Next() (Event, error) {
	for {
		tok, err := d.dec.Token()
		if err == io.EOF {
			return Event{}, io.EOF
		}
		if err != nil {
			return Event{}, fmt.Errorf("reading XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := Qualify(t.Name)
			if name == "mc:Fallback" {
				if err := d.dec.Skip(); err != nil {
					return Event{}, fmt.Errorf("skipping %s: %w", name, err)
				}
				continue
			}
			return Event{Kind: Open, Name: name, Attrs: attrMap(t.Attr)}, nil

		case xml.EndElement:
			return Event{Kind: Close, Name: Qualify(t.Name)}, nil

		case xml.CharData:
			return Event{Kind: Text, Content: string(t)}, nil
		}
	}
}

func attrMap(attrs []xml.Attr) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		m[Qualify(a.Name)] = a.Value
	}
	return m
}

// Collect reads every remaining event from src.
func Collect(src Source) ([]Event, error) {
	var events []Event
	for {
		ev, err := src.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}
