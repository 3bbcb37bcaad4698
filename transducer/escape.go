package transducer

import "strings"

// escaper protects the TeX special characters. The {} after the letter
// macros keeps a following space from being swallowed.
var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`~`, `\lettertilde{}`,
	`^`, `\letterhat{}`,
)

// Escape makes document text safe for ConTeXt.
func Escape(s string) string {
	return escaper.Replace(s)
}
