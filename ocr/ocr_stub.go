//go:build !ocr

// Package ocr recognizes text in embedded figures so that pictures without
// a description still get a caption.
//
// This is the stub used when the "ocr" build tag is not set. New returns
// ErrOCRNotEnabled; rebuild with
//
//	go build -tags ocr
//
// to link against Tesseract.
package ocr

// Client is a stub OCR client that returns errors for all operations.
type Client struct{}

// New returns ErrOCRNotEnabled.
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op. It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// RecognizeImage returns ErrOCRNotEnabled.
func (c *Client) RecognizeImage([]byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// SetLanguage returns ErrOCRNotEnabled.
func (c *Client) SetLanguage(string) error {
	return ErrOCRNotEnabled
}

// SetSparse returns ErrOCRNotEnabled.
func (c *Client) SetSparse() error {
	return ErrOCRNotEnabled
}
