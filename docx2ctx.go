// Package docx2ctx converts Word (DOCX) documents into ConTeXt source.
//
// Basic usage:
//
//	res, err := docx2ctx.Open("report.docx").Convert()
//	if err != nil {
//	    // handle error
//	}
//	if len(res.Warnings) > 0 {
//	    log.Println("Warnings:", docx2ctx.FormatWarnings(res.Warnings))
//	}
//	os.WriteFile("report.tex", []byte(res.Text), 0o644)
//
// With options:
//
//	res, err := docx2ctx.Open("report.docx").
//	    WithoutComments().
//	    WithoutFonts().
//	    Template(tpl).
//	    Convert()
//
// The lower-level packages are available for finer control: docx reads the
// package, transducer converts one event stream and postprocess applies the
// typographic cleanups.
package docx2ctx

import (
	"fmt"
	"strings"

	"github.com/tsawler/docx2ctx/docx"
)

// Open prepares the conversion of a DOCX file. The file is read when a
// terminal operation such as Convert is called.
//
// Example:
//
//	res, err := docx2ctx.Open("document.docx").Convert()
func Open(filename string) *Converter {
	return &Converter{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader prepares the conversion of an already opened package. name is
// used for the "filename" template key and in error messages. The caller is
// responsible for closing the reader.
//
// Example:
//
//	r, err := docx.OpenBytes(data)
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	res, err := docx2ctx.FromReader("upload.docx", r).Convert()
func FromReader(name string, r *docx.Reader) *Converter {
	return &Converter{
		filename: name,
		reader:   r,
		options:  defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	res := docx2ctx.Must(docx2ctx.Open("document.docx").Convert())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// WarningKind classifies a non-fatal conversion problem.
type WarningKind int

const (
	// UnresolvedNote is a note reference without a registered body.
	UnresolvedNote WarningKind = iota
	// SkippedElement is an element whose handler failed.
	SkippedElement
	// MissingPart is an optional package member that could not be read.
	MissingPart
	// OCRFailure is a figure that could not be captioned.
	OCRFailure
)

func (k WarningKind) String() string {
	switch k {
	case UnresolvedNote:
		return "unresolved note"
	case SkippedElement:
		return "skipped element"
	case MissingPart:
		return "missing part"
	case OCRFailure:
		return "ocr failure"
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

// Warning is a non-fatal issue found during conversion. The output is still
// usable; the warning points at what may need manual attention.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return w.Kind.String() + ": " + w.Message
}

// FormatWarnings joins warnings into a single human-readable string.
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}
