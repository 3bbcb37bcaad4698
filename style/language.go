package style

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is assumed when a document declares no language.
const DefaultLanguage = "de"

// BaseLanguage reduces a language tag to its base language subtag:
// "de-DE" becomes "de", "en_US" becomes "en". Tags that do not parse fall
// back to the part before the first separator, lower-cased. An empty tag
// yields "".
func BaseLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if t, err := language.Parse(strings.ReplaceAll(tag, "_", "-")); err == nil {
		if base, conf := t.Base(); conf != language.No {
			return base.String()
		}
	}
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// ResolveLanguage returns the base language of tag, or DefaultLanguage when
// tag is empty.
func ResolveLanguage(tag string) string {
	if base := BaseLanguage(tag); base != "" {
		return base
	}
	return DefaultLanguage
}
