package docx2ctx

import (
	"log/slog"

	"github.com/tsawler/docx2ctx/style"
)

// ConvertOptions holds configuration for one conversion.
type ConvertOptions struct {
	style style.Options

	policy *style.Policy // nil means style.DefaultPolicy()

	template    string
	hasTemplate bool
	volume      string

	ocr    bool
	logger *slog.Logger
}

// defaultOptions returns the default conversion options: every category
// enabled, postprocessing on, no template.
func defaultOptions() ConvertOptions {
	return ConvertOptions{
		style:  style.DefaultOptions(),
		volume: "0",
	}
}

// clone creates a copy of ConvertOptions. Policies are immutable and
// shared.
func (o ConvertOptions) clone() ConvertOptions {
	return o
}

func (o ConvertOptions) log() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}
