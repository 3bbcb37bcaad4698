//go:build !ocr

package docx2ctx

import "testing"

func TestConvertOCRNotEnabled(t *testing.T) {
	path := writeTestDOCX(t, "ocr.docx", paragraph("", "x"), nil)

	res, err := Open(path).Logger(quiet).OCR().Convert()
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Kind != OCRFailure {
		t.Errorf("Warnings = %v", res.Warnings)
	}

	res, err = Open(path).Logger(quiet).OCR().WithoutImages().Convert()
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("OCR requested without images: %v", res.Warnings)
	}
}
