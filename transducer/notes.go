package transducer

import (
	"fmt"
	"strings"

	"github.com/tsawler/docx2ctx/notes"
	"github.com/tsawler/docx2ctx/xmlstream"
)

var referenceKinds = map[string]notes.Kind{
	"w:footnoteReference": notes.Footnote,
	"w:endnoteReference":  notes.Endnote,
	"w:commentReference":  notes.Comment,
}

// noteBody accumulates the paragraphs of one note container.
type noteBody struct {
	kind  notes.Kind
	id    int
	paras []string
}

func (n *noteBody) add(text string) {
	n.paras = append(n.paras, text)
}

func (n *noteBody) text() string {
	return strings.Join(n.paras, `\par `)
}

func (t *Transducer) noteEnabled(kind notes.Kind) bool {
	var on bool
	switch kind {
	case notes.Footnote:
		on = t.cfg.Options.Footnotes
	case notes.Endnote:
		on = t.cfg.Options.Endnotes
	case notes.Comment:
		on = t.cfg.Options.Comments
	}
	return on && t.cfg.Notes.Enabled(kind)
}

func (t *Transducer) openNote(ev xmlstream.Event) error {
	kind, _ := notes.ParseKind(localName(ev.Name))
	if !t.noteEnabled(kind) {
		return nil
	}
	id, err := attrInt(ev, "w:id")
	if err != nil {
		return err
	}
	t.note = &noteBody{kind: kind, id: id}
	return nil
}

func (t *Transducer) closeNote() error {
	n := t.note
	if n == nil {
		return nil
	}
	t.note = nil
	t.cfg.Notes.Register(n.kind, n.id, n.text())
	return nil
}

func (t *Transducer) openNoteReference(ev xmlstream.Event) error {
	kind := referenceKinds[ev.Name]
	if !t.noteEnabled(kind) {
		return nil
	}
	id, err := attrInt(ev, "w:id")
	if err != nil {
		return err
	}
	text, ok := t.cfg.Notes.Lookup(kind, id)
	if !ok {
		t.stats.Unresolved++
		t.log.Warn("unresolved note reference", "kind", kind.String(), "id", id)
	}
	t.stats.NoteRefs++

	if kind == notes.Comment {
		t.inline(fmt.Sprintf("%%\n\\startcomment[reference=%s:%d]%%\n%s\n\\stopcomment%%\n", kind.Tag(), id, text))
		return nil
	}
	t.inline(fmt.Sprintf("\\footnote[%s:%d]{%s}", kind.Tag(), id, text))
	return nil
}
