package style

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level is a nesting depth in the ConTeXt section hierarchy. Paragraph (0) is
// body text outside any heading.
type Level int

const (
	Paragraph Level = iota
	Chapter
	Section
	Subsection
	Subsubsection
	Subsubsubsection
)

// MaxLevel is the deepest section level the output uses.
const MaxLevel = Subsubsubsection

var levelNames = [...]string{
	Paragraph:        "paragraph",
	Chapter:          "chapter",
	Section:          "section",
	Subsection:       "subsection",
	Subsubsection:    "subsubsection",
	Subsubsubsection: "subsubsubsection",
}

// String returns the ConTeXt name of the level, as used in \startX/\stopX.
func (l Level) String() string {
	if l < Paragraph || l > MaxLevel {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel converts a ConTeXt section name into a Level.
func ParseLevel(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown section level %q", name)
}

// UnmarshalYAML lets policy files name levels ("chapter") instead of numbers.
func (l *Level) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseLevel(name)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// defaultHeadings maps paragraph style ids (lower-cased) to section levels.
// German Word writes "Überschrift 1" with the style id "berschrift1".
var defaultHeadings = map[string]Level{
	"titel":       Chapter,
	"untertitel":  Section,
	"berschrift1": Chapter,
	"berschrift2": Section,
	"berschrift3": Subsection,
	"berschrift4": Subsubsection,
	"berschrift5": Subsubsubsection,
	"title":       Chapter,
	"subtitle":    Section,
	"heading1":    Chapter,
	"heading2":    Section,
	"heading3":    Subsection,
	"heading4":    Subsubsection,
	"heading5":    Subsubsubsection,
}

// Policy decides which paragraphs become section headings.
type Policy struct {
	headings       map[string]Level
	boldHeadingMax Level
	listSentinel   int
}

// DefaultListSentinel is the highest numbering id that does not mark a list
// item. Word reserves the lowest ids for outline numbering of headings.
const DefaultListSentinel = 1

var defaultPolicy = &Policy{
	headings:       defaultHeadings,
	boldHeadingMax: Section,
	listSentinel:   DefaultListSentinel,
}

// DefaultPolicy returns the built-in policy. The returned value is shared and
// read-only; use WithHeadings to derive a modified copy.
func DefaultPolicy() *Policy {
	return defaultPolicy
}

// HeadingLevel returns the section level for a paragraph style id.
// Matching ignores case.
func (p *Policy) HeadingLevel(styleID string) (Level, bool) {
	if styleID == "" {
		return 0, false
	}
	l, ok := p.headings[strings.ToLower(styleID)]
	return l, ok
}

// BoldHeadingMax is the deepest level a whole-bold paragraph can open.
func (p *Policy) BoldHeadingMax() Level {
	return p.boldHeadingMax
}

// WithHeadings returns a copy of p with additional or overriding heading
// styles. p itself is left untouched.
func (p *Policy) WithHeadings(headings map[string]Level) *Policy {
	np := &Policy{
		headings:       make(map[string]Level, len(p.headings)+len(headings)),
		boldHeadingMax: p.boldHeadingMax,
		listSentinel:   p.listSentinel,
	}
	for k, v := range p.headings {
		np.headings[k] = v
	}
	for k, v := range headings {
		np.headings[strings.ToLower(k)] = v
	}
	return np
}

// WithBoldHeadingMax returns a copy of p with a different cap for whole-bold
// paragraphs.
func (p *Policy) WithBoldHeadingMax(l Level) *Policy {
	np := p.WithHeadings(nil)
	if l < Chapter {
		l = Chapter
	}
	if l > MaxLevel {
		l = MaxLevel
	}
	np.boldHeadingMax = l
	return np
}

// ListSentinel returns the numbering id at or below which a paragraph is not
// treated as a list item.
func (p *Policy) ListSentinel() int {
	return p.listSentinel
}

// IsListItem reports whether a paragraph numbering id marks a list item.
func (p *Policy) IsListItem(numID int) bool {
	return numID > p.listSentinel
}

// WithListSentinel returns a copy of p with a different list sentinel.
// Negative values are treated as 0.
func (p *Policy) WithListSentinel(n int) *Policy {
	np := p.WithHeadings(nil)
	if n < 0 {
		n = 0
	}
	np.listSentinel = n
	return np
}

// policyFile is the YAML form of a policy.
type policyFile struct {
	// Replace drops the built-in heading styles instead of extending them.
	Replace        bool             `yaml:"replace"`
	Headings       map[string]Level `yaml:"headings"`
	BoldHeadingMax *Level           `yaml:"bold_heading_max"`
	ListSentinel   *int             `yaml:"list_sentinel"`
}

// ParsePolicy builds a policy from YAML:
//
//	headings:
//	  Heading1: chapter
//	  Kapitel: chapter
//	bold_heading_max: section
//	list_sentinel: 0
func ParsePolicy(data []byte) (*Policy, error) {
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing style policy: %w", err)
	}

	base := DefaultPolicy()
	if pf.Replace {
		base = &Policy{headings: map[string]Level{}, boldHeadingMax: Section, listSentinel: DefaultListSentinel}
	}
	p := base.WithHeadings(pf.Headings)
	if pf.BoldHeadingMax != nil {
		p = p.WithBoldHeadingMax(*pf.BoldHeadingMax)
	}
	if pf.ListSentinel != nil {
		p = p.WithListSentinel(*pf.ListSentinel)
	}
	return p, nil
}

// LoadPolicy reads a YAML policy file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePolicy(data)
}
