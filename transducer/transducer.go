// Package transducer converts a stream of WordprocessingML events into
// ConTeXt markup in a single pass.
//
// The source format expresses structure implicitly: a heading is a paragraph
// with a heading style, a list is a run of paragraphs carrying numbering
// properties, and a section ends only where the next heading of the same or
// a higher level begins. The Transducer reconstructs that structure from
// open, text and close events without lookahead.
//
// Typical use:
//
//	t := transducer.New(transducer.Config{Options: style.DefaultOptions()})
//	if err := t.Run(xmlstream.NewDecoder(r)); err != nil {
//		return err
//	}
//	out := t.Result()
package transducer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tsawler/docx2ctx/model"
	"github.com/tsawler/docx2ctx/notes"
	"github.com/tsawler/docx2ctx/style"
	"github.com/tsawler/docx2ctx/xmlstream"
)

// ErrUnbalanced is returned when a close event does not match the innermost
// open element.
var ErrUnbalanced = errors.New("unbalanced element stream")

// Captioner produces a caption for an image that carries no description.
// name is the file name of the image inside the media folder.
type Captioner interface {
	Caption(name string) (string, error)
}

// Config holds everything a conversion needs besides the event stream.
//
// The zero Options value disables every optional category; most callers
// want style.DefaultOptions().
type Config struct {
	Policy    *style.Policy     // nil means style.DefaultPolicy()
	Options   style.Options
	Notes     *notes.Registry   // nil means an empty registry
	Links     map[string]string // relationship id -> target
	Metadata  model.Metadata
	Template  bool // output goes into an external template: no header, no wrapper
	Captioner Captioner
	Logger    *slog.Logger
}

// Stats counts what a conversion produced.
type Stats struct {
	Paragraphs int // non-empty paragraphs, including headings and note bodies
	Sections   int
	ListItems  int
	Tables     int
	Figures    int
	NoteRefs   int
	Unresolved int // note references without a registered body
	Failures   int // element handlers that failed and were skipped
}

type target int

const (
	targetNone target = iota
	targetParagraph
	targetRun
)

// slot is the state of one formatting key.
type slot struct {
	set    bool
	param  string
	file   string // font file name, for the declaration
	opened bool   // open sequence already written
}

type paragraph struct {
	style string
	numID int
	ilvl  int
	keys  [style.NumKeys]slot
}

// pending is the inline state of a paragraph interrupted by a nested one,
// as in a text box anchored inside a run.
type pending struct {
	para paragraph
	run  [style.NumKeys]slot
	text string
	link *hyperlink
}

// Transducer is the conversion state machine. It is not safe for concurrent
// use; each document gets its own.
type Transducer struct {
	cfg      Config
	log      *slog.Logger
	lower    cases.Caser
	baseLang string
	collect  bool // note collection: only note bodies matter

	stack  []string
	pPr    int // open w:pPr scopes
	rPr    int // open w:rPr scopes
	change int // open w:pPrChange/w:rPrChange scopes
	cells  int // open w:tc

	decls    strings.Builder
	declared map[string]bool
	body     strings.Builder

	sections []style.Level // open sections, outermost first
	lists    []int         // list level of each open itemize

	para   paragraph
	run    [style.NumKeys]slot
	text   strings.Builder // inline text of the current paragraph
	inPara bool
	outer  []pending // interrupted paragraphs, outermost first

	note   *noteBody
	docPr  figure
	image  *figure
	link   *hyperlink
	fields []*field

	stats    Stats
	finished bool
}

// New returns a Transducer for one document.
func New(cfg Config) *Transducer {
	if cfg.Policy == nil {
		cfg.Policy = style.DefaultPolicy()
	}
	if cfg.Notes == nil {
		cfg.Notes = notes.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	lang := cfg.Options.BaseLanguage
	if lang == "" {
		lang = cfg.Metadata.Language
	}
	return &Transducer{
		cfg:      cfg,
		log:      cfg.Logger,
		lower:    cases.Lower(language.Und),
		baseLang: style.ResolveLanguage(lang),
		declared: make(map[string]bool),
	}
}

// Language returns the base language of the document ("de", "en", ...).
func (t *Transducer) Language() string {
	return t.baseLang
}

// Run feeds every event of src to Handle. It stops at the first stream
// error; handler failures are logged and do not stop the run.
func (t *Transducer) Run(src xmlstream.Source) error {
	for {
		ev, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := t.Handle(ev); err != nil {
			return err
		}
	}
}

// Handle processes one event. The only error it returns is ErrUnbalanced.
func (t *Transducer) Handle(ev xmlstream.Event) error {
	switch ev.Kind {
	case xmlstream.Open:
		t.stack = append(t.stack, ev.Name)
		if h, ok := openHandlers[ev.Name]; ok {
			t.check(ev.Name, h(t, ev))
		}

	case xmlstream.Text:
		t.characters(ev.Content)

	case xmlstream.Close:
		if len(t.stack) == 0 {
			return fmt.Errorf("%w: </%s> with no open element", ErrUnbalanced, ev.Name)
		}
		top := t.stack[len(t.stack)-1]
		if top != ev.Name {
			return fmt.Errorf("%w: </%s> closes <%s>", ErrUnbalanced, ev.Name, top)
		}
		t.stack = t.stack[:len(t.stack)-1]
		if h, ok := closeHandlers[ev.Name]; ok {
			t.check(ev.Name, h(t))
		}
	}
	return nil
}

func (t *Transducer) check(element string, err error) {
	if err == nil {
		return
	}
	t.stats.Failures++
	t.log.Warn("skipping element", "element", element, "error", err)
}

// Finish closes every open list and section. It is called by Result and
// is safe to call more than once.
func (t *Transducer) Finish() {
	if t.finished {
		return
	}
	t.finished = true
	t.closeLists()
	for len(t.sections) > 0 {
		t.popSection()
	}
}

// Body returns the converted document body.
func (t *Transducer) Body() string {
	return t.body.String()
}

// Preamble returns the header block followed by the color, highlight and
// font declarations collected so far. With Config.Template set only the
// declarations are returned.
func (t *Transducer) Preamble() string {
	var b strings.Builder
	if !t.cfg.Template {
		writeHeader(&b, t.cfg.Metadata, t.baseLang)
	}
	b.WriteString(t.decls.String())
	return b.String()
}

// Trailer returns the text that closes the document wrapper, or "" when
// the output goes into a template.
func (t *Transducer) Trailer() string {
	if t.cfg.Template {
		return ""
	}
	return "\n\\stopcomponent\n"
}

// Result finishes the conversion and assembles preamble, body and trailer.
func (t *Transducer) Result() string {
	t.Finish()
	return t.Preamble() + t.Body() + t.Trailer()
}

// Stats returns the counters of the conversion so far.
func (t *Transducer) Stats() Stats {
	return t.stats
}

// CollectNotes runs the transducer over an auxiliary part (footnotes,
// endnotes or comments) and registers every note body in cfg.Notes.
func CollectNotes(src xmlstream.Source, cfg Config) error {
	if cfg.Notes == nil {
		return errors.New("collecting notes: no registry")
	}
	t := New(cfg)
	t.collect = true
	return t.Run(src)
}
