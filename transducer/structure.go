package transducer

import (
	"fmt"
	"strings"

	"github.com/tsawler/docx2ctx/style"
	"github.com/tsawler/docx2ctx/xmlstream"
)

func (t *Transducer) closeParagraph() error {
	err := t.emitParagraph()
	t.resumeParagraph()
	return err
}

// emitParagraph writes the finished paragraph. The first matching rule
// wins: note body, whole-bold heading, heading style, list item, table
// cell, plain paragraph.
func (t *Transducer) emitParagraph() error {
	text := t.text.String()
	t.text.Reset()
	p := t.para
	t.para = paragraph{}

	if strings.TrimSpace(text) == "" {
		return nil
	}
	t.stats.Paragraphs++

	if t.note != nil {
		t.note.add(text)
		return nil
	}

	if p.keys[style.Bold].set {
		t.boldHeading(text)
		return nil
	}
	if lvl, ok := t.cfg.Policy.HeadingLevel(p.style); ok {
		t.heading(lvl, text)
		return nil
	}
	if t.cfg.Policy.IsListItem(p.numID) {
		t.listItem(p, text)
		return nil
	}
	if t.cells > 0 {
		fmt.Fprintf(&t.body, "%% %s\n%s", p.style, text)
		return nil
	}
	t.closeLists()
	fmt.Fprintf(&t.body, "\n\\startparagraph %% %s\n%s\n\\stopparagraph\n", p.style, text)
	return nil
}

// level is the level of the innermost open section, Paragraph if none.
func (t *Transducer) level() style.Level {
	if len(t.sections) == 0 {
		return style.Paragraph
	}
	return t.sections[len(t.sections)-1]
}

func (t *Transducer) pushSection(lvl style.Level, title string) {
	t.sections = append(t.sections, lvl)
	t.stats.Sections++
	fmt.Fprintf(&t.body, "\n\\start%s[title={%s}]\n\n", lvl, title)
}

func (t *Transducer) popSection() {
	lvl := t.sections[len(t.sections)-1]
	t.sections = t.sections[:len(t.sections)-1]
	fmt.Fprintf(&t.body, "\n\\stop%s\n", lvl)
}

// boldHeading treats a paragraph whose mark is bold as a heading one level
// below the current one. The current section is closed first; the new
// level never goes past the policy cap unless the document is already
// deeper.
func (t *Transducer) boldHeading(text string) {
	t.closeLists()
	cur := t.level()
	next := cur
	if cur < t.cfg.Policy.BoldHeadingMax() {
		next = cur + 1
	}
	if len(t.sections) > 0 {
		t.popSection()
	}
	t.pushSection(next, unwrap(text, `\important{`))
}

// heading opens a section for a heading-style paragraph, closing every
// open section at the same or a deeper level.
func (t *Transducer) heading(lvl style.Level, text string) {
	t.closeLists()
	for len(t.sections) > 0 && t.level() >= lvl {
		t.popSection()
	}
	t.pushSection(lvl, text)
}

func (t *Transducer) listItem(p paragraph, text string) {
	switch {
	case len(t.lists) == 0 || p.ilvl > t.lists[len(t.lists)-1]:
		t.lists = append(t.lists, p.ilvl)
		t.body.WriteString("\\startitemize[]\n")
	case p.ilvl < t.lists[len(t.lists)-1]:
		for len(t.lists) > 1 && t.lists[len(t.lists)-1] > p.ilvl {
			t.lists = t.lists[:len(t.lists)-1]
			t.body.WriteString("\\stopitemize\n")
		}
	}
	t.stats.ListItems++
	fmt.Fprintf(&t.body, "\\startitem %% %s, %d, %d\n%s\n\\stopitem\n", p.style, p.numID, p.ilvl, text)
}

func (t *Transducer) closeLists() {
	for range t.lists {
		t.body.WriteString("\\stopitemize\n")
	}
	t.lists = t.lists[:0]
}

func (t *Transducer) openTable(xmlstream.Event) error {
	t.closeLists()
	t.stats.Tables++
	t.body.WriteString("\\bTABLE[split=yes]\n")
	return nil
}

func (t *Transducer) closeTable() error {
	t.body.WriteString("\\eTABLE\n")
	return nil
}

func (t *Transducer) openRow(xmlstream.Event) error {
	t.body.WriteString(`\bTR`)
	return nil
}

func (t *Transducer) closeRow() error {
	t.body.WriteString("\\eTR\n")
	return nil
}

func (t *Transducer) openCell(xmlstream.Event) error {
	t.cells++
	t.body.WriteString("\n\\bTD ")
	return nil
}

func (t *Transducer) closeCell() error {
	t.closeLists()
	t.cells--
	t.body.WriteString(`\eTD`)
	return nil
}

// unwrap removes every occurrence of the wrapper open ... } from s and
// keeps the wrapped content. Escaped braces do not count.
func unwrap(s, open string) string {
	var b strings.Builder
	for {
		i := strings.Index(s, open)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i+len(open):]
		end := matchingBrace(s)
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(unwrap(s[:end], open))
		s = s[end+1:]
	}
}

// matchingBrace returns the index of the "}" closing a group whose "{" was
// just consumed, or -1.
func matchingBrace(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) && (s[i+1] == '{' || s[i+1] == '}') {
				i++
			}
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}
