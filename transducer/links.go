package transducer

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"

	"github.com/tsawler/docx2ctx/xmlstream"
)

// hyperlink is an open w:hyperlink. The paragraph text written before it
// is parked in outer until the link closes.
type hyperlink struct {
	outer string
	dest  string
}

var urlEscaper = strings.NewReplacer(`%`, `\%`, `#`, `\#`)

func (t *Transducer) openHyperlink(ev xmlstream.Event) error {
	var dest string
	if id, _ := ev.Attr("r:id"); id != "" {
		target, ok := t.cfg.Links[id]
		if !ok {
			return fmt.Errorf("unknown hyperlink relationship %q", id)
		}
		u, err := externalURL(target)
		if err != nil {
			return err
		}
		dest = "url(" + u + ")"
	} else if anchor, _ := ev.Attr("w:anchor"); anchor != "" {
		dest = referenceName(anchor)
	}
	if dest == "" {
		return nil
	}
	t.link = &hyperlink{outer: t.text.String(), dest: dest}
	t.text.Reset()
	return nil
}

func (t *Transducer) closeHyperlink() error {
	l := t.link
	if l == nil {
		return nil
	}
	t.link = nil
	inner := t.text.String()
	t.text.Reset()
	t.text.WriteString(l.outer)
	if strings.TrimSpace(inner) == "" {
		t.text.WriteString(inner)
		return nil
	}
	fmt.Fprintf(&t.text, "\\goto{%s}[%s]", inner, l.dest)
	return nil
}

// externalURL normalises a hyperlink target for use inside url(...): the
// host is converted to its ASCII form and TeX comment and parameter
// characters are escaped.
func externalURL(target string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return "", fmt.Errorf("parsing hyperlink target: %w", err)
	}
	if host := u.Hostname(); host != "" && net.ParseIP(host) == nil {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", fmt.Errorf("hyperlink host %q: %w", host, err)
		}
		if port := u.Port(); port != "" {
			ascii = net.JoinHostPort(ascii, port)
		}
		u.Host = ascii
	}
	return urlEscaper.Replace(u.String()), nil
}

// field is an open complex or simple field. Cross-reference fields are
// replaced by a marker the postprocessor turns into \note or \in; their
// cached result text is dropped.
type field struct {
	instr     strings.Builder
	separated bool // past w:fldChar separate: text is the field result
	suppress  bool
	simple    bool // w:fldSimple, closed by its element
}

func (t *Transducer) field() *field {
	if len(t.fields) == 0 {
		return nil
	}
	return t.fields[len(t.fields)-1]
}

func (t *Transducer) suppressed() bool {
	for _, f := range t.fields {
		if f.suppress {
			return true
		}
	}
	return false
}

func (t *Transducer) openFieldChar(ev xmlstream.Event) error {
	typ, _ := ev.Attr("w:fldCharType")
	switch typ {
	case "begin":
		t.fields = append(t.fields, &field{})
	case "separate":
		if f := t.field(); f != nil && !f.separated {
			t.resolveField(f)
		}
	case "end":
		f := t.field()
		if f == nil || f.simple {
			return errors.New("field end without begin")
		}
		if !f.separated {
			t.resolveField(f)
		}
		t.fields = t.fields[:len(t.fields)-1]
	default:
		return fmt.Errorf("unknown field character %q", typ)
	}
	return nil
}

// resolveField ends the instruction part of f and writes the cross
// reference marker, if any.
func (t *Transducer) resolveField(f *field) {
	marker := crossReference(f.instr.String())
	f.separated = true
	if marker == "" {
		return
	}
	t.inline(marker)
	f.suppress = true
}

func (t *Transducer) openSimpleField(ev xmlstream.Event) error {
	f := &field{simple: true}
	instr, _ := ev.Attr("w:instr")
	f.instr.WriteString(instr)
	t.resolveField(f)
	t.fields = append(t.fields, f)
	return nil
}

func (t *Transducer) closeSimpleField() error {
	if f := t.field(); f != nil && f.simple {
		t.fields = t.fields[:len(t.fields)-1]
	}
	return nil
}

// crossReference returns the marker \docxNOTEREF{name} or \docxREF{name}
// for a cross-reference field instruction, "" for anything else. Escaped
// document text never contains a bare backslash, so the postprocessor
// cannot mistake ordinary words for a marker.
func crossReference(instr string) string {
	parts := strings.Fields(instr)
	if len(parts) < 2 || (parts[0] != "NOTEREF" && parts[0] != "REF") {
		return ""
	}
	name := parts[1]
	for _, r := range name {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return ""
		}
	}
	return `\docx` + parts[0] + "{" + name + "}"
}
