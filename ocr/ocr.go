//go:build ocr

// Package ocr recognizes text in embedded figures so that pictures without
// a description still get a caption.
//
// This build wraps the Tesseract OCR engine via gosseract. It requires
// Tesseract and the language data for the document language, e.g. on
// Ubuntu/Debian:
//
//	apt-get install tesseract-ocr tesseract-ocr-deu
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps Tesseract for OCR operations.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// RecognizeImage performs OCR on encoded image data (PNG, TIFF, JPEG, ...)
// and returns the text with surrounding whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// SetLanguage sets the Tesseract language(s), "+" separated ("deu+eng").
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// SetSparse switches to sparse text segmentation, which suits figures with
// scattered labels better than the page-oriented default.
func (c *Client) SetSparse() error {
	return c.client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT)
}
