// Package notes stores the out-of-line text bodies of a document: footnotes,
// endnotes and comments, keyed by their native numeric ids.
package notes

import "fmt"

// Kind is the category of a note.
type Kind int

const (
	Footnote Kind = iota
	Endnote
	Comment
)

// Kinds lists every note kind in part order.
var Kinds = []Kind{Footnote, Endnote, Comment}

// Unresolved is substituted for references whose body is unknown.
const Unresolved = "??"

// String returns the element name of the kind ("footnote", ...).
func (k Kind) String() string {
	switch k {
	case Footnote:
		return "footnote"
	case Endnote:
		return "endnote"
	case Comment:
		return "comment"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Tag is the one-letter prefix used in note references ("f:3").
func (k Kind) Tag() string {
	switch k {
	case Footnote:
		return "f"
	case Endnote:
		return "e"
	case Comment:
		return "c"
	}
	return "?"
}

// PartName returns the archive member holding notes of this kind.
func (k Kind) PartName() string {
	return "word/" + k.String() + "s.xml"
}

// ParseKind maps an element local name ("footnote", "endnote", "comment")
// to its kind.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "footnote":
		return Footnote, true
	case "endnote":
		return Endnote, true
	case "comment":
		return Comment, true
	}
	return 0, false
}

type key struct {
	kind Kind
	id   int
}

// Registry holds note bodies for one document conversion. Registration
// happens in a pre-pass; the main pass only reads.
type Registry struct {
	enabled    [3]bool
	bodies     map[key]string
	unresolved int
}

// NewRegistry returns a registry accepting the given kinds. With no kinds
// every kind is accepted.
func NewRegistry(kinds ...Kind) *Registry {
	r := &Registry{bodies: make(map[key]string)}
	if len(kinds) == 0 {
		kinds = Kinds
	}
	for _, k := range kinds {
		if k >= Footnote && k <= Comment {
			r.enabled[k] = true
		}
	}
	return r
}

// Enabled reports whether the kind is processed at all.
func (r *Registry) Enabled(kind Kind) bool {
	return kind >= Footnote && kind <= Comment && r.enabled[kind]
}

// Register stores or overwrites the body of a note. Disabled kinds are
// ignored.
func (r *Registry) Register(kind Kind, id int, text string) {
	if !r.Enabled(kind) {
		return
	}
	r.bodies[key{kind, id}] = text
}

// Lookup returns the body of a note. When the note is unknown it returns
// Unresolved and false and counts the miss. Disabled kinds return "" and
// false without counting.
func (r *Registry) Lookup(kind Kind, id int) (string, bool) {
	if !r.Enabled(kind) {
		return "", false
	}
	text, ok := r.bodies[key{kind, id}]
	if !ok {
		r.unresolved++
		return Unresolved, false
	}
	return text, true
}

// Len returns the number of registered notes of a kind.
func (r *Registry) Len(kind Kind) int {
	n := 0
	for k := range r.bodies {
		if k.kind == kind {
			n++
		}
	}
	return n
}

// Misses returns how many lookups found no body.
func (r *Registry) Misses() int {
	return r.unresolved
}
