// Package postprocess applies typographic cleanups to converted ConTeXt
// text: dashes and ellipses, thin spaces in abbreviations, cross-reference
// fields, redundant markup, language-specific quotation marks and number
// formatting.
//
// Process is idempotent for German and English: running it on its own
// output changes nothing.
package postprocess

import (
	"regexp"
	"strings"

	"github.com/tsawler/docx2ctx/style"
)

// step is one rewrite of the whole text.
type step func(string) string

// rule is a regular expression rewrite. Fixed rules are repeated until the
// text stops changing, for patterns whose matches can overlap.
type rule struct {
	re    *regexp.Regexp
	repl  string
	fixed bool
}

func (r rule) apply(s string) string {
	for {
		out := r.re.ReplaceAllString(s, r.repl)
		if !r.fixed || out == s {
			return out
		}
		s = out
	}
}

func re(pattern, repl string) step {
	return rule{re: regexp.MustCompile(pattern), repl: repl}.apply
}

func fixed(pattern, repl string) step {
	return rule{re: regexp.MustCompile(pattern), repl: repl, fixed: true}.apply
}

var literals = strings.NewReplacer(
	"...", "…",
	"---", "—",
	"--", "–",
	"'s", "’s",
)

// spanTags are the parameterless wrappers that can be merged and dropped
// when empty.
var spanTags = []string{"emph", "important", "underbar", "scaps", "overstrike", "high", "low"}

var (
	mergeRules []rule
	emptySpans = regexp.MustCompile(`\\(?:` + strings.Join(spanTags, "|") + `)\{\}|\\color\[[^\]\n]*\]\{\}|\\H[A-Za-z]+\{\}`)
)

func init() {
	for _, tag := range spanTags {
		mergeRules = append(mergeRules, rule{
			re:   regexp.MustCompile(`\\` + tag + `\{([^{}]*)\}([ \t]*)\\` + tag + `\{`),
			repl: `\` + tag + `{${1}${2}`,
		})
	}
}

// tidySpans merges adjacent identical spans and removes empty ones until
// neither changes the text.
func tidySpans(s string) string {
	for {
		out := s
		for _, r := range mergeRules {
			out = r.apply(out)
		}
		out = emptySpans.ReplaceAllString(out, "")
		if out == s {
			return out
		}
		s = out
	}
}

var common = []step{
	literals.Replace,
	re(`\bz\.[ \t]*B\.`, `z.\,B.`),
	re(`\bd\.[ \t]*h\.`, `d.\,h.`),
	re(`\bu\.[ \t]*a\.`, `u.\,a.`),

	re(`\\docxNOTEREF\{([A-Za-z0-9_]+)\}`, `\note[${1}]`),
	re(`\\docxREF\{([A-Za-z0-9_]+)\}`, `\in[${1}]`),

	tidySpans,
	re(`(\\footnote\[[^\]\n]*\]\{)\s+`, `${1}`),
	re(`(?m)^\[`, `\relax[`),
}

var quotes = map[string][]step{
	"de": {
		re(`„(.*?)“`, `\quotation{${1}}`),
		re(`»(.*?)«`, `\quotation{${1}}`),
		re(`‚(.*?)‘`, `\quote{${1}}`),
	},
	"en": {
		re(`“(.*?)”`, `\quotation{${1}}`),
		re(`‘(.*?)’([^\p{L}]|$)`, `\quote{${1}}${2}`),
	},
	"fr": {
		re(`«[ \x{a0}\x{202f}]*(.*?)[ \x{a0}\x{202f}]*»`, `\quotation{${1}}`),
		re(`“(.*?)”`, `\quote{${1}}`),
	},
}

var locale = map[string][]step{
	"de": {
		fixed(`(\d)\.(\d{3})(\D|$)`, `${1}\,${2}${3}`),
		fixed(`(\d+)-(\d+)`, `${1}–${2}`),
		fixed(`\b(\d+)\s*x\s*(\d+)\b`, `${1}\,\times\,${2}`),
		re(`\b(St|Dr|Prof)\.\s*([\p{L}\p{N}_]+)`, `${1}.\,${2}`),
		re(`\b([vn])\.\s*(Chr\.)`, `${1}.\,${2}`),
	},
	"en": {
		fixed(`(^|\W)BC(\W|$)`, `${1}\scaps{bc}${2}`),
		fixed(`(^|\W)AD(\W|$)`, `${1}\scaps{ad}${2}`),
	},
}

var collapse = re(`[ \t]+`, " ")

// protected matches regions no rule may touch: link targets, figure file
// names and reference labels. Characters from the placeholder range that
// are already in the text are protected as well, so every such rune in the
// rewritten text is a placeholder.
var protected = regexp.MustCompile(`\[url\([^)\n]*\)\]|\\externalfigure\[[^\]\n]*\]|reference=[^,\]\n]*|[\x{F0000}-\x{10FFFF}]`)

// Placeholders stand in for protected regions, one rune each, from the
// start of Supplementary Private Use Area-A to the end of Unicode.
const (
	placeholderBase = 0xF0000
	maxPlaceholders = 0x10FFFF - placeholderBase + 1
)

// Process rewrites text for the language tag lang ("de", "en-US", ...).
// An empty tag means German.
func Process(text, lang string) string {
	lang = style.ResolveLanguage(lang)

	var saved []string
	text = protected.ReplaceAllStringFunc(text, func(m string) string {
		if len(saved) == maxPlaceholders {
			return m
		}
		saved = append(saved, m)
		return string(rune(placeholderBase + len(saved) - 1))
	})

	for _, s := range pipeline(lang) {
		text = s(text)
	}

	if len(saved) == 0 {
		return text
	}
	return restore(text, saved)
}

func restore(text string, saved []string) string {
	var b strings.Builder
	for _, r := range text {
		if i := int(r) - placeholderBase; i >= 0 && i < len(saved) {
			b.WriteString(saved[i])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// pipeline returns the rewrite steps for a base language, in order.
func pipeline(lang string) []step {
	var steps []step
	for _, group := range [][]step{common, quotes[lang], locale[lang], {collapse}} {
		steps = append(steps, group...)
	}
	return steps
}
