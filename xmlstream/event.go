// Package xmlstream turns WordprocessingML parts into a flat stream of
// structural events: element opens with attributes, character data, and
// element closes, in document order.
//
// Element and attribute names are qualified with the conventional OOXML
// prefix of their namespace ("w:p", "a:blip", "r:embed") no matter which
// prefix the document itself declared.
package xmlstream

import (
	"fmt"
	"io"
)

// Kind discriminates the three event variants.
type Kind int

const (
	Open Kind = iota
	Text
	Close
)

func (k Kind) String() string {
	switch k {
	case Open:
		return "open"
	case Text:
		return "text"
	case Close:
		return "close"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is one structural event. Name is set for Open and Close, Attrs only
// for Open, Content only for Text.
type Event struct {
	Kind    Kind
	Name    string
	Attrs   map[string]string
	Content string
}

// Attr returns the value of a qualified attribute.
func (e Event) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

func (e Event) String() string {
	switch e.Kind {
	case Open:
		return fmt.Sprintf("<%s %v>", e.Name, e.Attrs)
	case Text:
		return fmt.Sprintf("%q", e.Content)
	case Close:
		return fmt.Sprintf("</%s>", e.Name)
	}
	return e.Kind.String()
}

// OpenElement builds an Open event. attrs are name/value pairs.
func OpenElement(name string, attrs ...string) Event {
	ev := Event{Kind: Open, Name: name}
	if len(attrs) > 0 {
		ev.Attrs = make(map[string]string, len(attrs)/2)
		for i := 0; i+1 < len(attrs); i += 2 {
			ev.Attrs[attrs[i]] = attrs[i+1]
		}
	}
	return ev
}

// CharData builds a Text event.
func CharData(content string) Event {
	return Event{Kind: Text, Content: content}
}

// CloseElement builds a Close event.
func CloseElement(name string) Event {
	return Event{Kind: Close, Name: name}
}

// Source yields events one at a time. Next returns io.EOF after the last
// event.
type Source interface {
	Next() (Event, error)
}

// SliceSource replays a fixed list of events.
type SliceSource struct {
	events []Event
	pos    int
}

// NewSliceSource returns a Source over events.
func NewSliceSource(events ...Event) *SliceSource {
	return &SliceSource{events: events}
}

// Next implements Source.
func (s *SliceSource) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}
