//go:build !ocr

package ocr

import (
	"context"
	"image"
)

// Enabled reports whether tesseract support is compiled in.
const Enabled = false

// Tesseract is a stub recognizer used when the "ocr" build tag is not set.
type Tesseract struct{}

// NewTesseract returns ErrOCRNotEnabled.
// To enable OCR, rebuild with: go build -tags ocr
func NewTesseract(ctx context.Context, langs []string, assets AssetPaths) (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// TesseractFactory returns ErrOCRNotEnabled.
func TesseractFactory(ctx context.Context, langs []string, assets AssetPaths) (Recognizer, error) {
	return nil, ErrOCRNotEnabled
}

// Recognize returns ErrOCRNotEnabled.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	return "", ErrOCRNotEnabled
}

// Close is a no-op for the stub. It is safe to call on a nil value.
func (t *Tesseract) Close() error {
	return nil
}
