package ocr

import (
	"errors"
	"strings"
	"testing"
)

type fakeRecognizer struct {
	text string
	err  error
	got  []byte
}

func (f *fakeRecognizer) RecognizeImage(data []byte) (string, error) {
	f.got = data
	return f.text, f.err
}

func TestCaption(t *testing.T) {
	long := strings.Repeat("ab ", 40)
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", ""},
		{"first line", "\n  Abb.  1:\tUmsatz \nzweite Zeile", "Abb. 1: Umsatz"},
		{"truncated", long, strings.TrimSpace(long[:MaxCaption]) + "…"},
		{"umlauts counted as runes", strings.Repeat("ä", MaxCaption), strings.Repeat("ä", MaxCaption)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecognizer{text: tt.text}
			c := NewCaptioner(rec, func(name string) ([]byte, error) { return []byte(name), nil })
			got, err := c.Caption("image1.png")
			if err != nil {
				t.Fatalf("Caption failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Caption = %q, want %q", got, tt.want)
			}
			if string(rec.got) != "image1.png" {
				t.Errorf("recognizer got %q", rec.got)
			}
		})
	}
}

func TestCaptionErrors(t *testing.T) {
	errLoad := errors.New("no such member")
	c := NewCaptioner(&fakeRecognizer{}, func(string) ([]byte, error) { return nil, errLoad })
	if _, err := c.Caption("x.png"); !errors.Is(err, errLoad) {
		t.Errorf("load error = %v", err)
	}

	errOCR := errors.New("engine failed")
	c = NewCaptioner(&fakeRecognizer{err: errOCR}, func(string) ([]byte, error) { return nil, nil })
	if _, err := c.Caption("x.png"); !errors.Is(err, errOCR) {
		t.Errorf("recognize error = %v", err)
	}
}

func TestTesseractLanguage(t *testing.T) {
	tests := map[string]string{
		"de": "deu+eng",
		"en": "eng",
		"fr": "fra+eng",
		"xx": "eng",
		"":   "eng",
	}
	for in, want := range tests {
		if got := TesseractLanguage(in); got != want {
			t.Errorf("TesseractLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
