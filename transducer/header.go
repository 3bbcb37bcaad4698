package transducer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tsawler/docx2ctx/model"
)

// highlightMacros define the highlights used by the bold, italic and small
// caps wrappers.
const highlightMacros = `\definehighlight[emph][style=italic]
\definehighlight[important][style=bold]
\definehighlight[scaps][style=\sc]
`

func writeHeader(b *strings.Builder, md model.Metadata, lang string) {
	fmt.Fprintf(b, "\\startcomponent c_%s\n\\product prd_\n\\project prj_\n\n", componentName(md.Title))

	description := md.Description
	if description == "" {
		description = md.Subject
	}
	b.WriteString("\\setupinteraction[\n\tstate=start,\n")
	for _, f := range [...][2]string{
		{"title", md.Title},
		{"subtitle", md.Subtitle},
		{"keywords", md.KeywordString()},
		{"author", md.Author},
		{"description", description},
	} {
		fmt.Fprintf(b, "\t%s={%s},\n", f[0], Escape(f[1]))
	}
	b.WriteString("\t]\n")
	fmt.Fprintf(b, "\\mainlanguage[%s]\n\n", lang)
	b.WriteString(highlightMacros)
}

// componentName derives the component name from the document title.
func componentName(title string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-':
			return r
		case unicode.IsSpace(r), r == '_':
			return '_'
		}
		return -1
	}, strings.TrimSpace(title))
}
