// Command docx2ctx converts Word documents into ConTeXt components.
//
// Each input "Name.docx" is written as "name.tex" next to it (lower-cased,
// spaces replaced by underscores, UTF-8 with byte order mark). Embedded
// pictures go into the image directory.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	"github.com/tsawler/docx2ctx"
	"github.com/tsawler/docx2ctx/internal/logging"
	"github.com/tsawler/docx2ctx/style"
)

// noTemplate is the template name meaning "standalone component".
const noTemplate = "empty"

// byteOrderMark starts every written .tex file.
const byteOrderMark = "\ufeff"

// CLI is the command line of docx2ctx.
type CLI struct {
	Template    string `help:"TeX template file or name in the template directory (without .tex)." default:"empty"`
	Templatedir string `help:"Directory for templates." default:"./tpl" type:"path"`
	Images      bool   `help:"Extract embedded images." default:"true" negatable:""`
	Imagedir    string `help:"Directory for extracted images." default:"./img" type:"path"`
	Fonts       bool   `help:"Include font switches." default:"true" negatable:""`
	Colors      bool   `help:"Include color settings." default:"true" negatable:""`
	Footnotes   bool   `help:"Include footnotes." default:"true" negatable:""`
	Endnotes    bool   `help:"Include endnotes." default:"true" negatable:""`
	Comments    bool   `help:"Include comments." default:"true" negatable:""`
	Raw         bool   `help:"Don't try to enhance markup."`
	Language    string `help:"Document language, overriding the document properties (e.g. de, en-GB)."`
	Volume      string `help:"Value of the volume template key." default:"0"`
	Policy      string `help:"YAML file with heading style mappings." type:"existingfile"`
	OCR         bool   `name:"ocr" help:"Caption undescribed figures with recognized text (needs a build with -tags ocr)."`
	LogLevel    string `help:"Log level." default:"info" enum:"debug,info,warn,error"`
	LogFormat   string `help:"Log format." default:"text" enum:"text,json"`

	Docs []string `arg:"" name:"docs" help:"Documents or directories of documents to convert." type:"path"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("docx2ctx"),
		kong.Description("Convert DOCX documents to ConTeXt."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	ctx.FatalIfErrorf(cli.Run(os.Stderr))
}

// Run converts every document named on the command line. Failing documents
// are logged and skipped; the returned error reports how many failed.
func (c *CLI) Run(logOut io.Writer) error {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return err
	}
	log := logging.Init(logOut, level, format)

	base, err := c.converterOptions(log)
	if err != nil {
		return err
	}

	var failed int
	for _, path := range c.documents(log) {
		if err := c.convert(base, path, log); err != nil {
			log.Error("conversion failed", "file", path, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed", failed)
	}
	return nil
}

// converterOptions applies the command line switches to a converter
// template; each document starts from a copy of it.
func (c *CLI) converterOptions(log *slog.Logger) (func(string) *docx2ctx.Converter, error) {
	tpl, err := c.loadTemplate(log)
	if err != nil {
		return nil, err
	}
	var policy *style.Policy
	if c.Policy != "" {
		if policy, err = style.LoadPolicy(c.Policy); err != nil {
			return nil, err
		}
	}
	if c.Images {
		if err := os.MkdirAll(c.Imagedir, 0o755); err != nil {
			return nil, fmt.Errorf("creating image directory: %w", err)
		}
	}

	return func(path string) *docx2ctx.Converter {
		conv := docx2ctx.Open(path).Logger(log).Volume(c.Volume)
		if !c.Images {
			conv = conv.WithoutImages()
		}
		if !c.Fonts {
			conv = conv.WithoutFonts()
		}
		if !c.Colors {
			conv = conv.WithoutColors()
		}
		if !c.Footnotes {
			conv = conv.WithoutFootnotes()
		}
		if !c.Endnotes {
			conv = conv.WithoutEndnotes()
		}
		if !c.Comments {
			conv = conv.WithoutComments()
		}
		if c.Raw {
			conv = conv.Raw()
		}
		if c.Language != "" {
			conv = conv.Language(c.Language)
		}
		if policy != nil {
			conv = conv.Policy(policy)
		}
		if c.OCR {
			conv = conv.OCR()
		}
		if tpl != nil {
			conv = conv.Template(*tpl)
		}
		return conv
	}, nil
}

// loadTemplate resolves --template: an existing file, or NAME.tex in the
// template directory. An unknown template is a warning and conversion
// continues without one.
func (c *CLI) loadTemplate(log *slog.Logger) (*string, error) {
	if c.Template == "" || c.Template == noTemplate {
		return nil, nil
	}
	path := c.Template
	if !isFile(path) {
		path = filepath.Join(c.Templatedir, c.Template+".tex")
		if !isFile(path) {
			log.Warn("template is not a file, continuing without template", "template", c.Template)
			return nil, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	log.Info("loading template", "path", path)
	tpl := strings.TrimPrefix(string(data), byteOrderMark)
	return &tpl, nil
}

// documents expands the arguments: directories contribute the files they
// contain directly, hidden entries are skipped.
func (c *CLI) documents(log *slog.Logger) []string {
	var docs []string
	for _, arg := range c.Docs {
		if strings.HasPrefix(filepath.Base(arg), ".") {
			log.Warn("ignoring hidden file", "path", arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			log.Warn("not a file or directory", "path", arg)
			continue
		}
		if !info.IsDir() {
			docs = append(docs, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			log.Warn("reading directory", "path", arg, "error", err)
			continue
		}
		for _, e := range entries {
			if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
				docs = append(docs, filepath.Join(arg, e.Name()))
			}
		}
	}
	return docs
}

func (c *CLI) convert(open func(string) *docx2ctx.Converter, path string, log *slog.Logger) error {
	log.Info("processing", "file", path)
	res, err := open(path).Convert()
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		log.Warn(w.Kind.String(), "file", path, "detail", w.Message)
	}

	for _, img := range res.Images {
		target := filepath.Join(c.Imagedir, img.Name)
		if err := os.WriteFile(target, img.Data, 0o644); err != nil {
			return fmt.Errorf("writing image: %w", err)
		}
		log.Info("wrote image", "path", target, "size", humanize.Bytes(uint64(img.Size())),
			"format", img.Format, "width", img.Width, "height", img.Height)
	}

	target := outputName(path)
	if err := os.WriteFile(target, []byte(byteOrderMark+res.Text), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	log.Info("wrote component", "path", target, "size", humanize.Bytes(uint64(len(res.Text))),
		"sections", res.Stats.Sections, "figures", res.Stats.Figures)
	return nil
}

// outputName derives the .tex path from the document path. The file name
// is lower-cased, spaces become underscores and .docx becomes .tex; the
// directory is kept.
func outputName(path string) string {
	dir, file := filepath.Split(path)
	name := strings.ReplaceAll(strings.ToLower(file), " ", "_")
	if strings.HasSuffix(name, ".docx") {
		name = strings.TrimSuffix(name, ".docx")
	}
	return dir + name + ".tex"
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
