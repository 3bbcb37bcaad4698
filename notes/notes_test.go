package notes

import "testing"

func TestRegisterLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(Footnote, 3, "Third footnote.")
	r.Register(Comment, 0, "A remark")

	text, ok := r.Lookup(Footnote, 3)
	if !ok || text != "Third footnote." {
		t.Errorf("Lookup(footnote, 3) = %q, %v", text, ok)
	}

	text, ok = r.Lookup(Footnote, 99)
	if ok || text != Unresolved {
		t.Errorf("Lookup(footnote, 99) = %q, %v; want placeholder", text, ok)
	}
	if r.Misses() != 1 {
		t.Errorf("Misses() = %d, want 1", r.Misses())
	}

	// Same id, different kind.
	if _, ok := r.Lookup(Endnote, 3); ok {
		t.Error("endnote 3 should not resolve to footnote 3")
	}
}

func TestRegisterOverwrites(t *testing.T) {
	r := NewRegistry()
	r.Register(Endnote, 1, "old")
	r.Register(Endnote, 1, "new")
	if text, _ := r.Lookup(Endnote, 1); text != "new" {
		t.Errorf("got %q, want new", text)
	}
	if r.Len(Endnote) != 1 {
		t.Errorf("Len(endnote) = %d", r.Len(Endnote))
	}
}

func TestDisabledKind(t *testing.T) {
	r := NewRegistry(Footnote, Endnote)
	if r.Enabled(Comment) {
		t.Fatal("comments should be disabled")
	}
	r.Register(Comment, 1, "ignored")
	if r.Len(Comment) != 0 {
		t.Error("disabled kind must not be registered")
	}
	text, ok := r.Lookup(Comment, 1)
	if ok || text != "" {
		t.Errorf("Lookup on disabled kind = %q, %v", text, ok)
	}
	if r.Misses() != 0 {
		t.Error("disabled lookups must not count as misses")
	}
}

func TestKindNames(t *testing.T) {
	tests := []struct {
		kind Kind
		name string
		tag  string
		part string
	}{
		{Footnote, "footnote", "f", "word/footnotes.xml"},
		{Endnote, "endnote", "e", "word/endnotes.xml"},
		{Comment, "comment", "c", "word/comments.xml"},
	}
	for _, tt := range tests {
		if tt.kind.String() != tt.name || tt.kind.Tag() != tt.tag || tt.kind.PartName() != tt.part {
			t.Errorf("%v: got %s %s %s", tt.kind, tt.kind.String(), tt.kind.Tag(), tt.kind.PartName())
		}
		k, ok := ParseKind(tt.name)
		if !ok || k != tt.kind {
			t.Errorf("ParseKind(%q) = %v, %v", tt.name, k, ok)
		}
	}
	if _, ok := ParseKind("annotation"); ok {
		t.Error("unexpected kind")
	}
}
