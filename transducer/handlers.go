package transducer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/docx2ctx/style"
	"github.com/tsawler/docx2ctx/xmlstream"
)

type openFunc func(*Transducer, xmlstream.Event) error
type closeFunc func(*Transducer) error

// Dispatch tables, keyed by qualified element name. Filled once in init and
// read-only afterwards.
var (
	openHandlers  map[string]openFunc
	closeHandlers map[string]closeFunc
)

// styleElements are the run property elements handled by openStyle.
var styleElements = []string{"b", "i", "u", "smallCaps", "strike", "color", "lang", "highlight", "rFonts"}

func init() {
	openHandlers = map[string]openFunc{
		"w:p":           (*Transducer).openParagraph,
		"w:r":           (*Transducer).openRun,
		"w:pPr":         func(t *Transducer, _ xmlstream.Event) error { t.pPr++; return nil },
		"w:rPr":         func(t *Transducer, _ xmlstream.Event) error { t.rPr++; return nil },
		"w:pPrChange":   func(t *Transducer, _ xmlstream.Event) error { t.change++; return nil },
		"w:rPrChange":   func(t *Transducer, _ xmlstream.Event) error { t.change++; return nil },
		"w:pStyle":      (*Transducer).openParagraphStyle,
		"w:numId":       (*Transducer).openNumID,
		"w:ilvl":        (*Transducer).openListLevel,
		"w:vertAlign":   (*Transducer).openVertAlign,
		"w:br":          (*Transducer).openBreak,
		"w:cr":          (*Transducer).openBreak,
		"w:noBreakHyphen": func(t *Transducer, _ xmlstream.Event) error {
			t.inline("-")
			return nil
		},
		"w:softHyphen": func(t *Transducer, _ xmlstream.Event) error {
			t.inline(`\-`)
			return nil
		},

		"w:footnoteReference": (*Transducer).openNoteReference,
		"w:endnoteReference":  (*Transducer).openNoteReference,
		"w:commentReference":  (*Transducer).openNoteReference,
		"w:footnote":          (*Transducer).openNote,
		"w:endnote":           (*Transducer).openNote,
		"w:comment":           (*Transducer).openNote,

		"wp:docPr":  (*Transducer).openDocPr,
		"a:graphic": (*Transducer).openGraphic,
		"a:blip":    (*Transducer).openBlip,
		"pic:cNvPr": (*Transducer).openPictureProps,

		"w:tbl": (*Transducer).openTable,
		"w:tr":  (*Transducer).openRow,
		"w:tc":  (*Transducer).openCell,

		"w:hyperlink": (*Transducer).openHyperlink,
		"w:fldChar":   (*Transducer).openFieldChar,
		"w:fldSimple": (*Transducer).openSimpleField,
	}
	for _, local := range styleElements {
		openHandlers["w:"+local] = (*Transducer).openStyle
	}

	closeHandlers = map[string]closeFunc{
		"w:p":         (*Transducer).closeParagraph,
		"w:r":         (*Transducer).closeRun,
		"w:pPr":       func(t *Transducer) error { t.pPr--; return nil },
		"w:rPr":       func(t *Transducer) error { t.rPr--; return nil },
		"w:pPrChange": func(t *Transducer) error { t.change--; return nil },
		"w:rPrChange": func(t *Transducer) error { t.change--; return nil },

		"w:footnote": (*Transducer).closeNote,
		"w:endnote":  (*Transducer).closeNote,
		"w:comment":  (*Transducer).closeNote,

		"a:graphic": (*Transducer).closeGraphic,

		"w:tbl": (*Transducer).closeTable,
		"w:tr":  (*Transducer).closeRow,
		"w:tc":  (*Transducer).closeCell,

		"w:hyperlink": (*Transducer).closeHyperlink,
		"w:fldSimple": (*Transducer).closeSimpleField,
	}
}

func localName(qualified string) string {
	if i := strings.IndexByte(qualified, ':'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

func attrInt(ev xmlstream.Event, name string) (int, error) {
	v, ok := ev.Attr(name)
	if !ok {
		return 0, fmt.Errorf("missing %s", name)
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", name, v, err)
	}
	return n, nil
}

func (t *Transducer) openParagraph(xmlstream.Event) error {
	if t.inPara {
		t.outer = append(t.outer, pending{para: t.para, run: t.run, text: t.text.String(), link: t.link})
	}
	t.inPara = true
	t.para = paragraph{}
	t.run = [style.NumKeys]slot{}
	t.text.Reset()
	t.link = nil
	return nil
}

// resumeParagraph restores the paragraph a nested one interrupted.
func (t *Transducer) resumeParagraph() {
	n := len(t.outer)
	if n == 0 {
		t.inPara = false
		return
	}
	p := t.outer[n-1]
	t.outer = t.outer[:n-1]
	t.para, t.run, t.link = p.para, p.run, p.link
	t.text.Reset()
	t.text.WriteString(p.text)
}

func (t *Transducer) openRun(xmlstream.Event) error {
	t.run = [style.NumKeys]slot{}
	return nil
}

func (t *Transducer) closeRun() error {
	for k := style.NumKeys - 1; k >= 0; k-- {
		if t.run[k].opened {
			t.text.WriteString(style.Close)
		}
	}
	t.run = [style.NumKeys]slot{}
	return nil
}

// target decides whether a style element applies to the paragraph or the
// current run.
func (t *Transducer) target() target {
	switch {
	case t.change > 0:
		return targetNone
	case t.pPr > 0:
		return targetParagraph
	case t.rPr > 0:
		return targetRun
	}
	return targetNone
}

func (t *Transducer) setStyle(tg target, k style.Key, param, file string) {
	s := slot{set: true, param: param, file: file}
	switch tg {
	case targetParagraph:
		t.para.keys[k] = s
	case targetRun:
		t.run[k] = s
	}
}

func (t *Transducer) openStyle(ev xmlstream.Event) error {
	k, ok := style.ElementKey(localName(ev.Name))
	if !ok || !t.cfg.Options.Allows(k) {
		return nil
	}
	tg := t.target()
	if tg == targetNone {
		return nil
	}
	val, hasVal := ev.Attr("w:val")
	if hasVal && style.IsOff(val) {
		return nil
	}

	var param, file string
	switch k {
	case style.Font:
		raw := fontName(ev)
		if raw == "" {
			return nil
		}
		param = fontMacro(raw)
		if param == "" {
			return fmt.Errorf("font %q has no usable name", raw)
		}
		file = t.lower.String(raw)
	case style.Color, style.Highlight:
		if !hasVal || val == "" {
			return nil
		}
		param = val
	case style.Language:
		if !hasVal {
			return nil
		}
		param = style.BaseLanguage(val)
		if param == "" || param == t.baseLang {
			return nil
		}
	}
	t.setStyle(tg, k, param, file)
	return nil
}

// fontName returns the ASCII font of a w:rFonts element with spaces removed.
func fontName(ev xmlstream.Event) string {
	name, ok := ev.Attr("w:ascii")
	if !ok {
		name, _ = ev.Attr("w:hAnsi")
	}
	return strings.ReplaceAll(name, " ", "")
}

// fontMacro keeps the ASCII letters of a font name; control sequence names
// cannot contain anything else.
func fontMacro(name string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			return r
		}
		return -1
	}, name)
}

func (t *Transducer) openVertAlign(ev xmlstream.Event) error {
	tg := t.target()
	if tg == targetNone {
		return nil
	}
	val, _ := ev.Attr("w:val")
	k, ok := style.VertAlignKey(val)
	if !ok {
		return fmt.Errorf("unknown vertical alignment %q", val)
	}
	t.setStyle(tg, k, "", "")
	return nil
}

// declare adds the preamble definition for a parametrized value the first
// time its markup is written.
func (t *Transducer) declare(k style.Key, v, file string) {
	if !k.Parametrized() {
		return
	}
	id := k.String() + ":" + v
	if t.declared[id] {
		return
	}
	t.declared[id] = true
	switch k {
	case style.Color:
		fmt.Fprintf(&t.decls, "\\definecolor[%s][h=%s]\n", v, v)
	case style.Highlight:
		fmt.Fprintf(&t.decls, "\\definecolor[%s][h=%s]\n", v, style.HighlightHex(v))
		fmt.Fprintf(&t.decls, "\\definehighlight[H%s][background=color,backgroundcolor=%s]\n", v, v)
	case style.Font:
		fmt.Fprintf(&t.decls, "\\definefont[F%s][%s*default]\n", v, file)
	}
}

func (t *Transducer) openParagraphStyle(ev xmlstream.Event) error {
	if t.pPr == 0 || t.change > 0 {
		return nil
	}
	t.para.style, _ = ev.Attr("w:val")
	return nil
}

func (t *Transducer) openNumID(ev xmlstream.Event) error {
	if t.pPr == 0 || t.change > 0 {
		return nil
	}
	n, err := attrInt(ev, "w:val")
	if err != nil {
		return err
	}
	t.para.numID = n
	return nil
}

func (t *Transducer) openListLevel(ev xmlstream.Event) error {
	if t.pPr == 0 || t.change > 0 {
		return nil
	}
	n, err := attrInt(ev, "w:val")
	if err != nil {
		return err
	}
	t.para.ilvl = n
	return nil
}

// characters handles a text event. Only w:t content is document text;
// w:instrText feeds the innermost field instruction.
func (t *Transducer) characters(content string) {
	if len(t.stack) == 0 {
		return
	}
	switch t.stack[len(t.stack)-1] {
	case "w:t":
		if t.suppressed() {
			return
		}
		t.openRunKeys()
		t.text.WriteString(Escape(norm.NFC.String(content)))
	case "w:instrText":
		if f := t.field(); f != nil && !f.separated {
			f.instr.WriteString(content)
		}
	}
}

// openRunKeys writes the open sequence of every set run key not yet opened.
func (t *Transducer) openRunKeys() {
	for k := style.Key(0); k < style.NumKeys; k++ {
		s := &t.run[k]
		if s.set && !s.opened && k.Visual() {
			t.declare(k, s.param, s.file)
			t.text.WriteString(k.OpenSequence(s.param))
			s.opened = true
		}
	}
}

// inline appends markup produced by an element inside a run.
func (t *Transducer) inline(s string) {
	if t.suppressed() {
		return
	}
	t.text.WriteString(s)
}

func (t *Transducer) openBreak(ev xmlstream.Event) error {
	if typ, _ := ev.Attr("w:type"); typ == "page" {
		if t.cells == 0 {
			t.inline(`\page `)
		}
		return nil
	}
	t.inline("\\\\\n")
	return nil
}
