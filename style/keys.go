package style

import (
	"fmt"
	"strings"
)

// Key identifies an inline formatting property of a run or paragraph.
type Key int

const (
	Bold Key = iota
	Italic
	Underline
	SmallCaps
	Strike
	Color
	Language
	Highlight
	Superscript
	Subscript
	Font
	// Baseline records an explicit w:vertAlign="baseline". It is bookkeeping
	// only and never produces markup.
	Baseline

	// NumKeys is the number of keys; state arrays are sized by it.
	NumKeys
)

// Wrapper describes how a key opens in ConTeXt. Every wrapper is closed by a
// single "}".
type Wrapper struct {
	Open  string // opening sequence, with one %s when Param is set
	Param bool   // the key carries a string parameter (color, font, ...)
}

var wrappers = [NumKeys]Wrapper{
	Bold:        {Open: `\important{`},
	Italic:      {Open: `\emph{`},
	Underline:   {Open: `\underbar{`},
	SmallCaps:   {Open: `\scaps{`},
	Strike:      {Open: `\overstrike{`},
	Color:       {Open: `\color[%s]{`, Param: true},
	Language:    {Open: `{\language[%s]`, Param: true},
	Highlight:   {Open: `\H%s{`, Param: true},
	Superscript: {Open: `\high{`},
	Subscript:   {Open: `\low{`},
	Font:        {Open: `{\F%s{}`, Param: true},
}

var keyNames = [NumKeys]string{
	Bold:        "bold",
	Italic:      "italic",
	Underline:   "underline",
	SmallCaps:   "smallcaps",
	Strike:      "strike",
	Color:       "color",
	Language:    "language",
	Highlight:   "highlight",
	Superscript: "superscript",
	Subscript:   "subscript",
	Font:        "font",
	Baseline:    "baseline",
}

// elementKeys maps WordprocessingML run property elements (local names) to
// keys. w:vertAlign is absent on purpose: its value selects the key.
var elementKeys = map[string]Key{
	"b":         Bold,
	"i":         Italic,
	"u":         Underline,
	"smallCaps": SmallCaps,
	"strike":    Strike,
	"color":     Color,
	"lang":      Language,
	"highlight": Highlight,
	"rFonts":    Font,
}

// Close is the closing sequence shared by all wrappers.
const Close = "}"

// String returns the lower-case name of the key.
func (k Key) String() string {
	if k < 0 || k >= NumKeys {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// Visual reports whether the key produces markup.
func (k Key) Visual() bool {
	return k >= 0 && k < NumKeys && k != Baseline
}

// Parametrized reports whether the key carries a string parameter.
func (k Key) Parametrized() bool {
	return k.Visual() && wrappers[k].Param
}

// Wrapper returns the wrapper definition of the key.
func (k Key) Wrapper() Wrapper {
	if !k.Visual() {
		return Wrapper{}
	}
	return wrappers[k]
}

// OpenSequence renders the opening markup of k, substituting param for
// parametrized keys. Non-visual keys render as "".
func (k Key) OpenSequence(param string) string {
	w := k.Wrapper()
	if w.Open == "" {
		return ""
	}
	if w.Param {
		return fmt.Sprintf(w.Open, param)
	}
	return w.Open
}

// ElementKey returns the key for a run property element's local name.
func ElementKey(local string) (Key, bool) {
	k, ok := elementKeys[local]
	return k, ok
}

// VertAlignKey maps a w:vertAlign value to its key.
func VertAlignKey(val string) (Key, bool) {
	switch val {
	case "superscript":
		return Superscript, true
	case "subscript":
		return Subscript, true
	case "baseline":
		return Baseline, true
	}
	return 0, false
}

// IsOff reports whether an OOXML toggle value switches a property off.
func IsOff(val string) bool {
	switch strings.ToLower(val) {
	case "false", "0", "off", "auto", "none":
		return true
	}
	return false
}

// highlightColors maps the named w:highlight values to hex colors.
var highlightColors = map[string]string{
	"black":       "000000",
	"blue":        "0000FF",
	"cyan":        "00FFFF",
	"darkBlue":    "00008B",
	"darkCyan":    "008B8B",
	"darkGray":    "A9A9A9",
	"darkGreen":   "006400",
	"darkMagenta": "800080",
	"darkRed":     "8B0000",
	"darkYellow":  "808000",
	"green":       "00FF00",
	"lightGray":   "D3D3D3",
	"magenta":     "FF00FF",
	"red":         "FF0000",
	"white":       "FFFFFF",
	"yellow":      "FFFF00",
}

// HighlightHex returns the hex value of a named highlight color. Unknown names
// are returned unchanged, which covers highlights already given in hex.
func HighlightHex(name string) string {
	if hex, ok := highlightColors[name]; ok {
		return hex
	}
	return name
}
