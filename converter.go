package docx2ctx

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"

	"github.com/tsawler/docx2ctx/docx"
	"github.com/tsawler/docx2ctx/model"
	"github.com/tsawler/docx2ctx/notes"
	"github.com/tsawler/docx2ctx/ocr"
	"github.com/tsawler/docx2ctx/postprocess"
	"github.com/tsawler/docx2ctx/style"
	"github.com/tsawler/docx2ctx/transducer"
	"github.com/tsawler/docx2ctx/xmlstream"
)

// Converter provides a fluent interface for converting a DOCX document.
// Each configuration method returns a new Converter instance, making it
// safe to derive several configurations from one base.
type Converter struct {
	filename string
	reader   *docx.Reader // set by FromReader; Open reads lazily

	options ConvertOptions

	// Accumulated error (fail-fast)
	err error
}

// Result is the outcome of a conversion.
type Result struct {
	// Text is the complete output: header, declarations, body and trailer,
	// or the filled template.
	Text string
	// Language is the base language the body was postprocessed for.
	Language string
	Metadata model.Metadata
	// Images are the pictures of word/media; empty when images are disabled.
	Images   []model.Image
	Stats    transducer.Stats
	Warnings []Warning
}

// clone creates a shallow copy of the Converter with a copy of options.
func (c *Converter) clone() *Converter {
	return &Converter{
		filename: c.filename,
		reader:   c.reader,
		options:  c.options.clone(),
		err:      c.err,
	}
}

func (c *Converter) with(f func(*ConvertOptions)) *Converter {
	n := c.clone()
	f(&n.options)
	return n
}

// WithoutImages drops figure placements and image extraction.
func (c *Converter) WithoutImages() *Converter {
	return c.with(func(o *ConvertOptions) { o.style.Images = false })
}

// WithoutColors drops text colors and highlighting.
func (c *Converter) WithoutColors() *Converter {
	return c.with(func(o *ConvertOptions) { o.style.Colors = false })
}

// WithoutFonts drops font switches.
func (c *Converter) WithoutFonts() *Converter {
	return c.with(func(o *ConvertOptions) { o.style.Fonts = false })
}

// WithoutFootnotes drops footnotes.
func (c *Converter) WithoutFootnotes() *Converter {
	return c.with(func(o *ConvertOptions) { o.style.Footnotes = false })
}

// WithoutEndnotes drops endnotes.
func (c *Converter) WithoutEndnotes() *Converter {
	return c.with(func(o *ConvertOptions) { o.style.Endnotes = false })
}

// WithoutComments drops comments.
func (c *Converter) WithoutComments() *Converter {
	return c.with(func(o *ConvertOptions) { o.style.Comments = false })
}

// Raw skips the typographic postprocessing of the body.
func (c *Converter) Raw() *Converter {
	return c.with(func(o *ConvertOptions) { o.style.Raw = true })
}

// Language overrides the document language ("de", "en-GB", ...). By
// default the language from the package properties is used, German if
// there is none.
func (c *Converter) Language(tag string) *Converter {
	return c.with(func(o *ConvertOptions) { o.style.BaseLanguage = tag })
}

// Template puts the converted text into tpl. Placeholders have the form
// %(KEY)s; keys are TEXT, filename, volume and the metadata keys (title,
// author, ...). Unknown keys become empty and "%%" is a literal percent
// sign. With a template the component header is not generated.
func (c *Converter) Template(tpl string) *Converter {
	return c.with(func(o *ConvertOptions) {
		o.template = tpl
		o.hasTemplate = true
	})
}

// Volume sets the value of the "volume" template key (default "0").
func (c *Converter) Volume(v string) *Converter {
	return c.with(func(o *ConvertOptions) { o.volume = v })
}

// Policy replaces the default style policy.
func (c *Converter) Policy(p *style.Policy) *Converter {
	return c.with(func(o *ConvertOptions) { o.policy = p })
}

// Logger sets the logger for the conversion; slog.Default() otherwise.
func (c *Converter) Logger(l *slog.Logger) *Converter {
	return c.with(func(o *ConvertOptions) { o.logger = l })
}

// OCR captions figures without a description with the text recognized in
// them. It needs a binary built with -tags ocr; otherwise a warning is
// recorded and conversion continues without captions.
func (c *Converter) OCR() *Converter {
	return c.with(func(o *ConvertOptions) { o.ocr = true })
}

// Convert runs the conversion.
func (c *Converter) Convert() (*Result, error) {
	if c.err != nil {
		return nil, c.err
	}
	name := filepath.Base(c.filename)

	r := c.reader
	if r == nil {
		if c.filename == "" {
			return nil, errors.New("no filename specified")
		}
		var err error
		r, err = docx.Open(c.filename)
		if err != nil {
			return nil, fmt.Errorf("converting %s: %w", name, err)
		}
		defer r.Close()
	}

	res, err := c.convert(r)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", name, err)
	}
	return res, nil
}

func (c *Converter) convert(r *docx.Reader) (*Result, error) {
	opts := c.options
	log := opts.log().With("file", filepath.Base(c.filename))
	res := &Result{}

	meta, err := r.Metadata()
	if err != nil {
		log.Warn("reading metadata", "error", err)
		res.Warnings = append(res.Warnings, Warning{MissingPart, err.Error()})
	}
	res.Metadata = meta

	policy, err := c.policy(r)
	if err != nil {
		log.Warn("reading styles", "error", err)
		res.Warnings = append(res.Warnings, Warning{MissingPart, err.Error()})
	}

	cfg := transducer.Config{
		Policy:   policy,
		Options:  opts.style,
		Notes:    notes.NewRegistry(),
		Links:    r.Links(),
		Metadata: meta,
		Template: opts.hasTemplate,
		Logger:   log,
	}

	if err := collectNotes(r, cfg, log); err != nil {
		return nil, err
	}

	var failures []string
	if opts.ocr && opts.style.Images {
		client, err := newOCRClient(documentLanguage(opts.style, meta))
		if err != nil {
			log.Warn("OCR unavailable", "error", err)
			res.Warnings = append(res.Warnings, Warning{OCRFailure, err.Error()})
		} else {
			defer client.Close()
			cfg.Captioner = &recordingCaptioner{
				inner:    ocr.NewCaptioner(client, imageLoader(r)),
				failures: &failures,
			}
		}
	}

	t := transducer.New(cfg)
	if err := runPart(r, docx.DocumentPart, t); err != nil {
		return nil, err
	}
	t.Finish()

	body := t.Body()
	if !opts.style.Raw {
		body = postprocess.Process(body, t.Language())
	}
	res.Text = t.Preamble() + body + t.Trailer()
	res.Language = t.Language()
	res.Stats = t.Stats()

	if opts.hasTemplate {
		values := meta.Values()
		values["TEXT"] = res.Text
		values["filename"] = filepath.Base(c.filename)
		values["volume"] = opts.volume
		res.Text = fillTemplate(opts.template, values)
	}

	if opts.style.Images {
		images, err := r.Images()
		if err != nil {
			return nil, fmt.Errorf("extracting images: %w", err)
		}
		res.Images = images
	}

	if n := res.Stats.Unresolved; n > 0 {
		res.Warnings = append(res.Warnings, Warning{UnresolvedNote, fmt.Sprintf("%d note references without body", n)})
	}
	if n := res.Stats.Failures; n > 0 {
		res.Warnings = append(res.Warnings, Warning{SkippedElement, fmt.Sprintf("%d elements skipped", n)})
	}
	for _, f := range failures {
		res.Warnings = append(res.Warnings, Warning{OCRFailure, f})
	}
	return res, nil
}

// policy returns the configured policy extended by the heading styles the
// document defines itself. Explicit policy entries win.
func (c *Converter) policy(r *docx.Reader) (*style.Policy, error) {
	p := c.options.policy
	if p == nil {
		p = style.DefaultPolicy()
	}
	headings, err := r.HeadingStyles()
	if err != nil {
		return p, err
	}
	extra := make(map[string]style.Level)
	for id, lvl := range headings {
		if _, ok := p.HeadingLevel(id); !ok {
			extra[id] = lvl
		}
	}
	if len(extra) == 0 {
		return p, nil
	}
	return p.WithHeadings(extra), nil
}

func noteOption(o style.Options, kind notes.Kind) bool {
	switch kind {
	case notes.Footnote:
		return o.Footnotes
	case notes.Endnote:
		return o.Endnotes
	case notes.Comment:
		return o.Comments
	}
	return false
}

// collectNotes fills cfg.Notes from the note parts of the enabled kinds,
// in part order. Missing parts contribute nothing. Each part resolves
// hyperlinks and images through its own relationship table.
func collectNotes(r *docx.Reader, cfg transducer.Config, log *slog.Logger) error {
	for _, kind := range notes.Kinds {
		if !noteOption(cfg.Options, kind) {
			continue
		}
		part := kind.PartName()
		rc, err := r.OpenPart(part)
		if errors.Is(err, docx.ErrNoPart) {
			log.Debug("no note part", "part", part)
			continue
		}
		if err != nil {
			return fmt.Errorf("opening %s: %w", part, err)
		}
		partCfg := cfg
		partCfg.Links, err = r.PartLinks(part)
		if err != nil {
			rc.Close()
			return err
		}
		err = transducer.CollectNotes(xmlstream.NewDecoder(rc), partCfg)
		rc.Close()
		if err != nil {
			return fmt.Errorf("parsing %s: %w", part, err)
		}
		log.Debug("collected notes", "kind", kind.String(), "count", cfg.Notes.Len(kind))
	}
	return nil
}

func runPart(r *docx.Reader, part string, t *transducer.Transducer) error {
	rc, err := r.OpenPart(part)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := t.Run(xmlstream.NewDecoder(rc)); err != nil {
		return fmt.Errorf("parsing %s: %w", part, err)
	}
	return nil
}

// documentLanguage is the base language a conversion runs in: the explicit
// option, else the declared document language, else the default.
func documentLanguage(o style.Options, meta model.Metadata) string {
	if o.BaseLanguage != "" {
		return style.ResolveLanguage(o.BaseLanguage)
	}
	return style.ResolveLanguage(meta.Language)
}

func newOCRClient(lang string) (*ocr.Client, error) {
	client, err := ocr.New()
	if err != nil {
		return nil, err
	}
	if err := client.SetLanguage(ocr.TesseractLanguage(lang)); err != nil {
		client.Close()
		return nil, err
	}
	if err := client.SetSparse(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func imageLoader(r *docx.Reader) ocr.Loader {
	return func(name string) ([]byte, error) {
		img, err := r.ImageData(name)
		if err != nil {
			return nil, err
		}
		return img.Data, nil
	}
}

// recordingCaptioner remembers failed captions so they can be reported as
// warnings.
type recordingCaptioner struct {
	inner    transducer.Captioner
	failures *[]string
}

func (rc *recordingCaptioner) Caption(name string) (string, error) {
	caption, err := rc.inner.Caption(name)
	if err != nil {
		*rc.failures = append(*rc.failures, err.Error())
	}
	return caption, err
}

var placeholder = regexp.MustCompile(`%(%|\(([^)\n]*)\)s)`)

// fillTemplate substitutes %(KEY)s placeholders and %% escapes.
func fillTemplate(tpl string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tpl, func(m string) string {
		if m == "%%" {
			return "%"
		}
		return values[m[2:len(m)-2]]
	})
}
