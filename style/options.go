package style

// Options holds the per-conversion switches for optional output categories.
type Options struct {
	Images    bool // emit figure placements and hand out image bytes
	Colors    bool // w:color and w:highlight
	Fonts     bool // w:rFonts
	Footnotes bool
	Endnotes  bool
	Comments  bool
	Raw       bool // skip text postprocessing

	// BaseLanguage is the document's main language ("de", "en-US", ...).
	// Language switches to it are not emitted.
	BaseLanguage string
}

// DefaultOptions returns options with every category enabled.
func DefaultOptions() Options {
	return Options{
		Images:    true,
		Colors:    true,
		Fonts:     true,
		Footnotes: true,
		Endnotes:  true,
		Comments:  true,
		Raw:       false,
	}
}

// Allows reports whether a formatting key is enabled by these options.
func (o Options) Allows(k Key) bool {
	switch k {
	case Color, Highlight:
		return o.Colors
	case Font:
		return o.Fonts
	}
	return k >= 0 && k < NumKeys
}
