package transducer

import (
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/tsawler/docx2ctx/model"
	"github.com/tsawler/docx2ctx/notes"
	"github.com/tsawler/docx2ctx/style"
	"github.com/tsawler/docx2ctx/xmlstream"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig() Config {
	return Config{Options: style.DefaultOptions(), Logger: quiet}
}

// convert runs body XML through a fresh transducer and returns the body
// output after Finish.
func convert(t *testing.T, cfg Config, body string) (string, *Transducer) {
	t.Helper()
	tr := New(cfg)
	src := xmlstream.NewDecoder(strings.NewReader("<w:document><w:body>" + body + "</w:body></w:document>"))
	if err := tr.Run(src); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	tr.Finish()
	return tr.Body(), tr
}

// para builds a paragraph with an optional style and one plain run.
func para(styleID, text string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	if styleID != "" {
		b.WriteString(`<w:pPr><w:pStyle w:val="` + styleID + `"/></w:pPr>`)
	}
	b.WriteString(`<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`)
	return b.String()
}

// boldPara builds a whole-bold paragraph.
func boldPara(text string) string {
	return `<w:p><w:pPr><w:rPr><w:b/></w:rPr></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t>` + text + `</w:t></w:r></w:p>`
}

func listPara(numID, ilvl, text string) string {
	return `<w:p><w:pPr><w:pStyle w:val="ListParagraph"/><w:numPr><w:ilvl w:val="` + ilvl +
		`"/><w:numId w:val="` + numID + `"/></w:numPr></w:pPr><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

// run builds a paragraph with one run carrying the given run properties.
func run(rPr, text string) string {
	return `<w:p><w:r><w:rPr>` + rPr + `</w:rPr><w:t>` + text + `</w:t></w:r></w:p>`
}

func TestEmptyParagraphProducesNothing(t *testing.T) {
	out, tr := convert(t, testConfig(), `<w:p><w:r><w:t xml:space="preserve">   </w:t></w:r></w:p><w:p/>`+
		`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr></w:p>`)
	if out != "" {
		t.Errorf("body = %q, want empty", out)
	}
	if tr.Stats().Paragraphs != 0 {
		t.Errorf("Paragraphs = %d", tr.Stats().Paragraphs)
	}
}

var (
	startRe = regexp.MustCompile(`\\start(chapter|section|subsection|subsubsection|subsubsubsection)\[`)
	stopRe  = regexp.MustCompile(`\\stop(chapter|section|subsection|subsubsection|subsubsubsection)\n`)
)

func countLevels(re *regexp.Regexp, s string) map[string]int {
	counts := map[string]int{}
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		counts[m[1]]++
	}
	return counts
}

func TestSectionsBalanced(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"descending", para("Heading1", "A") + para("Heading2", "B") + para("Heading3", "C")},
		{"siblings", para("Heading2", "A") + para("Heading2", "B") + para("Heading2", "C")},
		{"back to top", para("Heading1", "A") + para("Heading3", "B") + para("Heading1", "C") + para("Heading2", "D")},
		{"skipped level", para("Heading3", "A") + para("Heading1", "B") + para("Heading5", "C") + para("Heading4", "D")},
		{"mixed with bold", boldPara("A") + para("Heading3", "B") + boldPara("C") + boldPara("D") + para("Heading1", "E")},
		{"german ids", para("Titel", "A") + para("berschrift2", "B") + para("Untertitel", "C")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, tr := convert(t, testConfig(), tt.body+para("", "tail"))
			starts := countLevels(startRe, out)
			stops := countLevels(stopRe, out)
			total := 0
			for lvl, n := range starts {
				if stops[lvl] != n {
					t.Errorf("%s: %d opened, %d closed\n%s", lvl, n, stops[lvl], out)
				}
				total += n
			}
			if len(stops) > len(starts) {
				t.Errorf("stops without starts: %v vs %v", stops, starts)
			}
			if total != tr.Stats().Sections {
				t.Errorf("Stats().Sections = %d, counted %d", tr.Stats().Sections, total)
			}
		})
	}
}

func TestWholeBoldParagraph(t *testing.T) {
	out, _ := convert(t, testConfig(), boldPara("Chapter One"))
	if !strings.Contains(out, `\startchapter[title={Chapter One}]`) {
		t.Errorf("missing chapter:\n%s", out)
	}
	if strings.Contains(out, `\important`) {
		t.Errorf("title keeps bold wrapper:\n%s", out)
	}
	if !strings.HasSuffix(out, "\\stopchapter\n") {
		t.Errorf("chapter not closed:\n%s", out)
	}
}

func TestWholeBoldDepthCap(t *testing.T) {
	out, _ := convert(t, testConfig(), boldPara("A")+boldPara("B")+boldPara("C"))
	want := "\n\\startchapter[title={A}]\n\n" +
		"\n\\stopchapter\n" +
		"\n\\startsection[title={B}]\n\n" +
		"\n\\stopsection\n" +
		"\n\\startsection[title={C}]\n\n" +
		"\n\\stopsection\n"
	if out != want {
		t.Errorf("body = %q\nwant   %q", out, want)
	}

	cfg := testConfig()
	cfg.Policy = style.DefaultPolicy().WithBoldHeadingMax(style.Subsection)
	out, _ = convert(t, cfg, boldPara("A")+boldPara("B")+boldPara("C")+boldPara("D"))
	if !strings.Contains(out, `\startsubsection[title={C}]`) || !strings.Contains(out, `\startsubsection[title={D}]`) {
		t.Errorf("cap subsection not honored:\n%s", out)
	}
}

func TestWholeBoldBeatsHeadingStyle(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="Heading3"/><w:rPr><w:b/></w:rPr></w:pPr><w:r><w:t>Bold</w:t></w:r></w:p>`
	out, _ := convert(t, testConfig(), body)
	if !strings.Contains(out, `\startchapter[title={Bold}]`) {
		t.Errorf("whole-bold should take priority:\n%s", out)
	}
}

func TestBoldRunInsideTitle(t *testing.T) {
	body := `<w:p><w:pPr><w:rPr><w:b/></w:rPr></w:pPr>` +
		`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">A </w:t></w:r>` +
		`<w:r><w:rPr><w:b/><w:i/></w:rPr><w:t>B</w:t></w:r></w:p>`
	out, _ := convert(t, testConfig(), body)
	if !strings.Contains(out, `\startchapter[title={A \emph{B}}]`) {
		t.Errorf("unexpected title:\n%s", out)
	}
}

func TestListItems(t *testing.T) {
	out, tr := convert(t, testConfig(), listPara("2", "0", "one")+listPara("2", "0", "two")+para("", "after"))
	if n := strings.Count(out, `\startitemize[]`); n != 1 {
		t.Errorf("%d list openings, want 1:\n%s", n, out)
	}
	if n := strings.Count(out, `\stopitemize`); n != 1 {
		t.Errorf("%d list closings, want 1:\n%s", n, out)
	}
	if n := strings.Count(out, `\startitem `); n != 2 {
		t.Errorf("%d items, want 2", n)
	}
	if !strings.Contains(out, "\\startitem % ListParagraph, 2, 0\none\n\\stopitem\n") {
		t.Errorf("unexpected item form:\n%s", out)
	}
	if strings.Index(out, `\stopitemize`) > strings.Index(out, `\startparagraph`) {
		t.Error("list should close before the following paragraph")
	}
	if tr.Stats().ListItems != 2 {
		t.Errorf("ListItems = %d", tr.Stats().ListItems)
	}
}

func TestListSentinel(t *testing.T) {
	out, _ := convert(t, testConfig(), listPara("1", "0", "outline"))
	if strings.Contains(out, `\startitem`) {
		t.Errorf("numId 1 should not be a list item:\n%s", out)
	}

	cfg := testConfig()
	cfg.Policy = style.DefaultPolicy().WithListSentinel(0)
	out, _ = convert(t, cfg, listPara("1", "0", "item"))
	if !strings.Contains(out, `\startitem`) {
		t.Errorf("numId 1 should be a list item with sentinel 0:\n%s", out)
	}
}

func TestNestedLists(t *testing.T) {
	out, _ := convert(t, testConfig(),
		listPara("3", "0", "a")+listPara("3", "1", "b")+listPara("3", "1", "c")+listPara("3", "0", "d"))
	if n := strings.Count(out, `\startitemize[]`); n != 2 {
		t.Errorf("%d list openings, want 2:\n%s", n, out)
	}
	if n := strings.Count(out, `\stopitemize`); n != 2 {
		t.Errorf("%d list closings, want 2:\n%s", n, out)
	}
	inner := strings.Index(out, "c\n\\stopitem\n\\stopitemize\n")
	if inner < 0 || inner > strings.Index(out, "\nd\n") {
		t.Errorf("inner list should close before d:\n%s", out)
	}
}

func TestFootnoteReferences(t *testing.T) {
	reg := notes.NewRegistry()
	reg.Register(notes.Footnote, 3, "Third")
	cfg := testConfig()
	cfg.Notes = reg

	body := `<w:p><w:r><w:t>Text</w:t></w:r>` +
		`<w:r><w:footnoteReference w:id="3"/></w:r>` +
		`<w:r><w:footnoteReference w:id="99"/></w:r></w:p>`
	out, tr := convert(t, cfg, body)
	if !strings.Contains(out, `Text\footnote[f:3]{Third}\footnote[f:99]{??}`) {
		t.Errorf("unexpected footnotes:\n%s", out)
	}
	if tr.Stats().Unresolved != 1 || tr.Stats().NoteRefs != 2 {
		t.Errorf("Stats() = %+v", tr.Stats())
	}

	cfg.Options.Footnotes = false
	out, _ = convert(t, cfg, body)
	if strings.Contains(out, `\footnote`) {
		t.Errorf("footnotes disabled but emitted:\n%s", out)
	}
}

func TestEndnoteAndCommentReferences(t *testing.T) {
	reg := notes.NewRegistry()
	reg.Register(notes.Endnote, 2, "Later")
	reg.Register(notes.Comment, 0, "Check this")
	cfg := testConfig()
	cfg.Notes = reg

	out, _ := convert(t, cfg, `<w:p><w:r><w:t>X</w:t><w:endnoteReference w:id="2"/></w:r>`+
		`<w:r><w:commentReference w:id="0"/></w:r></w:p>`)
	if !strings.Contains(out, `\footnote[e:2]{Later}`) {
		t.Errorf("missing endnote:\n%s", out)
	}
	if !strings.Contains(out, "%\n\\startcomment[reference=c:0]%\nCheck this\n\\stopcomment%\n") {
		t.Errorf("missing comment:\n%s", out)
	}
}

func TestCollectNotes(t *testing.T) {
	part := `<w:footnotes>` +
		`<w:footnote w:type="separator" w:id="-1"><w:p><w:r><w:separator/></w:r></w:p></w:footnote>` +
		`<w:footnote w:id="1"><w:p><w:r><w:rPr><w:rStyle w:val="FootnoteReference"/></w:rPr><w:footnoteRef/></w:r>` +
		`<w:r><w:t xml:space="preserve"> First</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:rPr><w:b/></w:rPr></w:pPr><w:r><w:rPr><w:i/></w:rPr><w:t>Second</w:t></w:r></w:p></w:footnote>` +
		`</w:footnotes>`

	reg := notes.NewRegistry()
	cfg := testConfig()
	cfg.Notes = reg
	if err := CollectNotes(xmlstream.NewDecoder(strings.NewReader(part)), cfg); err != nil {
		t.Fatalf("CollectNotes() error = %v", err)
	}
	text, ok := reg.Lookup(notes.Footnote, 1)
	if !ok {
		t.Fatal("footnote 1 not registered")
	}
	if text != ` First\par \emph{Second}` {
		t.Errorf("footnote 1 = %q", text)
	}

	disabled := notes.NewRegistry()
	cfg.Notes = disabled
	cfg.Options.Footnotes = false
	if err := CollectNotes(xmlstream.NewDecoder(strings.NewReader(part)), cfg); err != nil {
		t.Fatalf("CollectNotes() error = %v", err)
	}
	if disabled.Len(notes.Footnote) != 0 {
		t.Error("disabled footnotes were registered")
	}

	if err := CollectNotes(xmlstream.NewDecoder(strings.NewReader(part)), Config{}); err == nil {
		t.Error("expected error without registry")
	}
}

const drawing = `<w:p><w:r><w:drawing><wp:inline>` +
	`<wp:docPr id="1" name="Picture 1" descr="%s"/>` +
	`<a:graphic><a:graphicData><pic:pic><pic:nvPicPr><pic:cNvPr id="0" name="image1.png" descr=""/></pic:nvPicPr>` +
	`<pic:blipFill><a:blip r:embed="rId7"/></pic:blipFill></pic:pic></a:graphicData></a:graphic>` +
	`</wp:inline></w:drawing></w:r></w:p>`

func drawingWith(descr string) string {
	return strings.Replace(drawing, "%s", descr, 1)
}

func TestFigures(t *testing.T) {
	cfg := testConfig()
	cfg.Links = map[string]string{"rId7": "media/image1.png"}

	out, tr := convert(t, cfg, drawingWith("A cat"))
	want := "\n\\startplacefigure[location=here,reference=image1.png,title={A cat}]% rId7\n" +
		"\\externalfigure[image1.png]\n\\stopplacefigure\n"
	if out != want {
		t.Errorf("body = %q\nwant   %q", out, want)
	}
	if tr.Stats().Figures != 1 {
		t.Errorf("Figures = %d", tr.Stats().Figures)
	}

	cfg.Options.Images = false
	out, _ = convert(t, cfg, drawingWith("A cat"))
	if strings.Contains(out, "placefigure") || strings.Contains(out, "externalfigure") {
		t.Errorf("images disabled but emitted:\n%s", out)
	}
}

type fakeCaptioner struct {
	calls []string
}

func (f *fakeCaptioner) Caption(name string) (string, error) {
	f.calls = append(f.calls, name)
	return "  Scanned\n text ", nil
}

func TestFigureCaptioner(t *testing.T) {
	c := &fakeCaptioner{}
	cfg := testConfig()
	cfg.Links = map[string]string{"rId7": "media/image1.png"}
	cfg.Captioner = c

	out, _ := convert(t, cfg, drawingWith(""))
	if !strings.Contains(out, "title={Scanned text}") {
		t.Errorf("caption not used:\n%s", out)
	}
	if len(c.calls) != 1 || c.calls[0] != "image1.png" {
		t.Errorf("Caption calls = %v", c.calls)
	}

	c.calls = nil
	convert(t, cfg, drawingWith("Described"))
	if len(c.calls) != 0 {
		t.Error("described figures should not be captioned")
	}
}

func TestFigureUnknownRelationship(t *testing.T) {
	out, tr := convert(t, testConfig(), drawingWith("x"))
	if strings.Contains(out, "placefigure") {
		t.Errorf("figure without target emitted:\n%s", out)
	}
	if tr.Stats().Failures != 1 {
		t.Errorf("Failures = %d", tr.Stats().Failures)
	}
}

func TestIntroHelloWorld(t *testing.T) {
	body := para("Heading1", "Intro") +
		`<w:p><w:r><w:t xml:space="preserve">Hello </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>world</w:t></w:r></w:p>`
	out, _ := convert(t, testConfig(), body)
	want := "\n\\startchapter[title={Intro}]\n\n" +
		"\n\\startparagraph % \nHello \\important{world}\n\\stopparagraph\n" +
		"\n\\stopchapter\n"
	if out != want {
		t.Errorf("body = %q\nwant   %q", out, want)
	}
}

func TestRunFormatting(t *testing.T) {
	tests := []struct {
		name string
		rPr  string
		want string
	}{
		{"bold", `<w:b/>`, `\important{x}`},
		{"bold off", `<w:b w:val="0"/>`, "\nx\n"},
		{"italic", `<w:i/>`, `\emph{x}`},
		{"nested", `<w:i/><w:b/>`, `\important{\emph{x}}`},
		{"underline", `<w:u w:val="single"/>`, `\underbar{x}`},
		{"underline none", `<w:u w:val="none"/>`, "\nx\n"},
		{"small caps", `<w:smallCaps/>`, `\scaps{x}`},
		{"strike", `<w:strike/>`, `\overstrike{x}`},
		{"superscript", `<w:vertAlign w:val="superscript"/>`, `\high{x}`},
		{"subscript", `<w:vertAlign w:val="subscript"/>`, `\low{x}`},
		{"baseline", `<w:vertAlign w:val="baseline"/>`, "\nx\n"},
		{"color", `<w:color w:val="FF0000"/>`, `\color[FF0000]{x}`},
		{"color auto", `<w:color w:val="auto"/>`, "\nx\n"},
		{"highlight", `<w:highlight w:val="yellow"/>`, `\Hyellow{x}`},
		{"font", `<w:rFonts w:ascii="Times New Roman" w:hAnsi="Times New Roman"/>`, `{\FTimesNewRoman{}x}`},
		{"theme font", `<w:rFonts w:asciiTheme="minorHAnsi"/>`, "\nx\n"},
		{"foreign language", `<w:lang w:val="en-US"/>`, `{\language[en]x}`},
		{"base language", `<w:lang w:val="de-AT"/>`, "\nx\n"},
		{"east asian only", `<w:lang w:eastAsia="ja-JP"/>`, "\nx\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := convert(t, testConfig(), run(tt.rPr, "x"))
			if !strings.Contains(out, tt.want) {
				t.Errorf("body = %q, want it to contain %q", out, tt.want)
			}
		})
	}
}

func TestTrackedChangesIgnored(t *testing.T) {
	out, _ := convert(t, testConfig(), run(`<w:i/><w:rPrChange w:id="1"><w:rPr><w:b/></w:rPr></w:rPrChange>`, "x"))
	if strings.Contains(out, `\important`) {
		t.Errorf("old formatting from w:rPrChange applied:\n%s", out)
	}
	if !strings.Contains(out, `\emph{x}`) {
		t.Errorf("current formatting lost:\n%s", out)
	}
}

func TestDeclarations(t *testing.T) {
	body := run(`<w:color w:val="FF0000"/>`, "a") + run(`<w:color w:val="FF0000"/>`, "b") +
		run(`<w:highlight w:val="yellow"/>`, "c") +
		run(`<w:rFonts w:ascii="Times New Roman"/>`, "d")
	_, tr := convert(t, testConfig(), body)
	pre := tr.Preamble()
	for _, want := range []string{
		"\\definecolor[FF0000][h=FF0000]\n",
		"\\definecolor[yellow][h=FFFF00]\n",
		"\\definehighlight[Hyellow][background=color,backgroundcolor=yellow]\n",
		"\\definefont[FTimesNewRoman][timesnewroman*default]\n",
	} {
		if n := strings.Count(pre, want); n != 1 {
			t.Errorf("%q declared %d times", want, n)
		}
	}

	cfg := testConfig()
	cfg.Options.Colors = false
	cfg.Options.Fonts = false
	out, tr := convert(t, cfg, body)
	if strings.Contains(out, `\color`) || strings.Contains(out, `\Hyellow`) || strings.Contains(out, `\FTimes`) {
		t.Errorf("disabled categories emitted:\n%s", out)
	}
	if strings.Contains(tr.Preamble(), `\definecolor`) || strings.Contains(tr.Preamble(), `\definefont`) {
		t.Errorf("disabled categories declared:\n%s", tr.Preamble())
	}
}

func TestDeclarationsOnlyForWrittenMarkup(t *testing.T) {
	body := `<w:p><w:pPr><w:rPr><w:color w:val="00FF00"/><w:highlight w:val="cyan"/>` +
		`<w:rFonts w:ascii="Arial"/></w:rPr></w:pPr><w:r><w:t>mark only</w:t></w:r></w:p>` +
		`<w:p><w:r><w:rPr><w:color w:val="0000FF"/></w:rPr></w:r></w:p>`
	out, tr := convert(t, testConfig(), body)
	if pre := tr.Preamble(); strings.Contains(pre, `\definecolor`) || strings.Contains(pre, `\definefont`) {
		t.Errorf("declarations without markup:\n%s", pre)
	}
	if !strings.Contains(out, "\nmark only\n") {
		t.Errorf("paragraph text missing:\n%s", out)
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"50% & more", `50\% \& more`},
		{"a{b}c", `a\{b\}c`},
		{"$5 #1", `\$5 \#1`},
		{`C:\dir`, `C:\textbackslash{}dir`},
		{"~ ^", `\lettertilde{} \letterhat{}`},
	}
	for _, tt := range tests {
		if got := Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextNormalized(t *testing.T) {
	// "e" followed by a combining acute accent
	out, _ := convert(t, testConfig(), para("", "Caf\u0065\u0301 50%"))
	if !strings.Contains(out, "Caf\u00e9 50\\%") {
		t.Errorf("text not normalized and escaped: %q", out)
	}
}

func TestOnlyTextElementsAccepted(t *testing.T) {
	body := `<w:p><w:r><w:t>kept</w:t><w:delText>deleted</w:delText></w:r></w:p>`
	out, _ := convert(t, testConfig(), body)
	if strings.Contains(out, "deleted") {
		t.Errorf("w:delText leaked:\n%s", out)
	}
}

func TestTables(t *testing.T) {
	body := `<w:tbl><w:tr><w:tc>` + para("", "A") + `</w:tc><w:tc>` + para("Cell", "B") + `</w:tc></w:tr></w:tbl>`
	out, tr := convert(t, testConfig(), body)
	want := "\\bTABLE[split=yes]\n\\bTR\n\\bTD % \nA\\eTD\n\\bTD % Cell\nB\\eTD\\eTR\n\\eTABLE\n"
	if out != want {
		t.Errorf("body = %q\nwant   %q", out, want)
	}
	if tr.Stats().Tables != 1 {
		t.Errorf("Tables = %d", tr.Stats().Tables)
	}
}

func TestBreaks(t *testing.T) {
	out, _ := convert(t, testConfig(), `<w:p><w:r><w:t>a</w:t><w:br/><w:t>b</w:t><w:br w:type="page"/><w:tab/><w:t>c</w:t></w:r></w:p>`)
	if !strings.Contains(out, "a\\\\\nb\\page c") {
		t.Errorf("unexpected breaks: %q", out)
	}
}

func TestHyperlinks(t *testing.T) {
	cfg := testConfig()
	cfg.Links = map[string]string{"rId9": "http://bücher.example/a%20b#top"}

	body := `<w:p><w:r><w:t xml:space="preserve">See </w:t></w:r>` +
		`<w:hyperlink r:id="rId9"><w:r><w:rPr><w:i/></w:rPr><w:t>shop</w:t></w:r></w:hyperlink>` +
		`<w:r><w:t xml:space="preserve"> and </w:t></w:r>` +
		`<w:hyperlink w:anchor="_Toc12"><w:r><w:t>there</w:t></w:r></w:hyperlink></w:p>`
	out, _ := convert(t, cfg, body)
	want := `See \goto{\emph{shop}}[url(http://xn--bcher-kva.example/a\%20b\#top)] and \goto{there}[_Toc12]`
	if !strings.Contains(out, want) {
		t.Errorf("body = %q\nwant it to contain %q", out, want)
	}
}

func TestExternalURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://example.com/x", "https://example.com/x"},
		{"http://münchen.de:8080/", "http://xn--mnchen-3ya.de:8080/"},
		{"mailto:a@example.com", "mailto:a@example.com"},
		{"http://127.0.0.1/", "http://127.0.0.1/"},
	}
	for _, tt := range tests {
		got, err := externalURL(tt.in)
		if err != nil {
			t.Errorf("externalURL(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("externalURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCrossReferenceFields(t *testing.T) {
	body := `<w:p><w:r><w:t xml:space="preserve">see </w:t></w:r>` +
		`<w:r><w:fldChar w:fldCharType="begin"/></w:r>` +
		`<w:r><w:instrText xml:space="preserve"> NOTEREF _Ref123 \h </w:instrText></w:r>` +
		`<w:r><w:fldChar w:fldCharType="separate"/></w:r>` +
		`<w:r><w:t>3</w:t></w:r>` +
		`<w:r><w:fldChar w:fldCharType="end"/></w:r>` +
		`<w:r><w:t xml:space="preserve"> and </w:t></w:r>` +
		`<w:fldSimple w:instr=" REF _Ref9 \h "><w:r><w:t>Table 1</w:t></w:r></w:fldSimple>` +
		`<w:r><w:fldChar w:fldCharType="begin"/></w:r>` +
		`<w:r><w:instrText>PAGE</w:instrText></w:r>` +
		`<w:r><w:fldChar w:fldCharType="separate"/></w:r>` +
		`<w:r><w:t>7</w:t></w:r>` +
		`<w:r><w:fldChar w:fldCharType="end"/></w:r></w:p>`
	out, _ := convert(t, testConfig(), body)
	if !strings.Contains(out, `see \docxNOTEREF{_Ref123} and \docxREF{_Ref9}7`) {
		t.Errorf("unexpected field output: %q", out)
	}
	if strings.Contains(out, "Table 1") || strings.Contains(out, "PAGE") {
		t.Errorf("field result or instruction leaked: %q", out)
	}
}

func TestCrossReference(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{` NOTEREF _Ref123 \h `, `\docxNOTEREF{_Ref123}`},
		{`REF _Ref9 \r \h`, `\docxREF{_Ref9}`},
		{`PAGEREF _Toc1 \h`, ""},
		{`REF`, ""},
		{`REF "quoted"`, ""},
	}
	for _, tt := range tests {
		if got := crossReference(tt.in); got != tt.want {
			t.Errorf("crossReference(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextBoxKeepsOuterParagraph(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="Normal"/></w:pPr>` +
		`<w:r><w:rPr><w:i/></w:rPr><w:t>Before</w:t>` +
		`<w:pict><v:shape><v:textbox><w:txbxContent>` +
		`<w:p><w:pPr><w:pStyle w:val="Box"/></w:pPr><w:r><w:t>Inside</w:t></w:r></w:p>` +
		`</w:txbxContent></v:textbox></v:shape></w:pict>` +
		`<w:t xml:space="preserve"> after</w:t></w:r></w:p>`
	out, tr := convert(t, testConfig(), body)
	want := "\n\\startparagraph % Box\nInside\n\\stopparagraph\n" +
		"\n\\startparagraph % Normal\n\\emph{Before after}\n\\stopparagraph\n"
	if out != want {
		t.Errorf("body = %q\nwant   %q", out, want)
	}
	if tr.Stats().Paragraphs != 2 {
		t.Errorf("Paragraphs = %d, want 2", tr.Stats().Paragraphs)
	}
}

func TestHandlerFailureDoesNotAbort(t *testing.T) {
	body := `<w:p><w:pPr><w:numPr><w:numId w:val="x"/></w:numPr></w:pPr><w:r><w:t>still here</w:t></w:r></w:p>`
	out, tr := convert(t, testConfig(), body)
	if !strings.Contains(out, "\\startparagraph % \nstill here") {
		t.Errorf("paragraph lost:\n%s", out)
	}
	if tr.Stats().Failures != 1 {
		t.Errorf("Failures = %d", tr.Stats().Failures)
	}
}

func TestUnbalanced(t *testing.T) {
	tr := New(testConfig())
	if err := tr.Handle(xmlstream.CloseElement("w:p")); !errors.Is(err, ErrUnbalanced) {
		t.Errorf("close on empty stack: err = %v", err)
	}

	tr = New(testConfig())
	src := xmlstream.NewSliceSource(xmlstream.OpenElement("w:p"), xmlstream.CloseElement("w:r"))
	if err := tr.Run(src); !errors.Is(err, ErrUnbalanced) {
		t.Errorf("mismatched close: err = %v", err)
	}
}

func TestResultHeader(t *testing.T) {
	md := model.NewMetadata()
	md.Title = "My Doc"
	md.Author = "Jane Roe"
	md.Keywords = []string{"a", "b"}
	md.Language = "en-US"
	cfg := testConfig()
	cfg.Metadata = md

	tr := New(cfg)
	if err := tr.Run(xmlstream.NewSliceSource(
		xmlstream.OpenElement("w:p"), xmlstream.OpenElement("w:r"), xmlstream.OpenElement("w:t"),
		xmlstream.CharData("Body"),
		xmlstream.CloseElement("w:t"), xmlstream.CloseElement("w:r"), xmlstream.CloseElement("w:p"),
	)); err != nil {
		t.Fatal(err)
	}
	out := tr.Result()
	for _, want := range []string{
		"\\startcomponent c_My_Doc\n\\product prd_\n\\project prj_\n",
		"\ttitle={My Doc},\n",
		"\tkeywords={a, b},\n",
		"\tauthor={Jane Roe},\n",
		"\\mainlanguage[en]\n",
		"\\definehighlight[important][style=bold]\n",
		"\\startparagraph % \nBody\n\\stopparagraph\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("result missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "\n\\stopcomponent\n") {
		t.Errorf("result not wrapped:\n%s", out)
	}
	if tr.Language() != "en" {
		t.Errorf("Language() = %q", tr.Language())
	}
}

func TestResultTemplate(t *testing.T) {
	cfg := testConfig()
	cfg.Template = true
	tr := New(cfg)
	out := tr.Result()
	if out != "" {
		t.Errorf("empty templated result = %q", out)
	}

	tr = New(testConfig())
	if tr.Language() != style.DefaultLanguage {
		t.Errorf("default language = %q", tr.Language())
	}
	if !strings.Contains(tr.Result(), "\\mainlanguage[de]") {
		t.Error("default main language should be de")
	}
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`\important{A}`, "A"},
		{`\important{a \emph{b}} c`, `a \emph{b} c`},
		{`\important{x\}y}`, `x\}y`},
		{`\important{\important{deep}}`, "deep"},
		{`\important{open`, "open"},
		{`none`, "none"},
	}
	for _, tt := range tests {
		if got := unwrap(tt.in, `\important{`); got != tt.want {
			t.Errorf("unwrap(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
