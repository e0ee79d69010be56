// Package ocr owns the OCR engine lifecycle: a lazily created, shared
// recognizer with a configured language set and a single fallback language.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

var (
	// ErrEngineUnavailable is returned when no recognizer could be created.
	ErrEngineUnavailable = errors.New("OCR engine unavailable")
	// ErrLanguageInitFailed marks a failed attempt to load a language set.
	ErrLanguageInitFailed = errors.New("OCR language initialization failed")
	// ErrOCRNotEnabled is returned when tesseract support was not compiled in.
	// Rebuild with -tags ocr to enable it.
	ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")
)

// Recognizer turns a page image into text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// AssetPaths overrides where the engine looks for its data files.
type AssetPaths struct {
	// TessdataPrefix is the directory holding *.traineddata files.
	// Empty means the engine default (TESSDATA_PREFIX).
	TessdataPrefix string
}

// Config is the recognized-options structure for engine initialization.
type Config struct {
	// PrimaryLanguages is loaded first, in order.
	PrimaryLanguages []string
	// FallbackLanguage is loaded alone if the primary set fails.
	FallbackLanguage string
	// AssetPaths is the optional override set.
	AssetPaths AssetPaths
}

// DefaultConfig returns Traditional Chinese plus English with an English fallback.
func DefaultConfig() Config {
	return Config{
		PrimaryLanguages: []string{"chi_tra", "eng"},
		FallbackLanguage: "eng",
	}
}

// Validate checks that at least one language can be attempted.
func (c Config) Validate() error {
	if strings.TrimSpace(c.FallbackLanguage) == "" {
		return errors.New("ocr: fallback language is required")
	}
	for i, lang := range c.PrimaryLanguages {
		if strings.TrimSpace(lang) == "" {
			return fmt.Errorf("ocr: primary language %d is empty", i)
		}
	}
	return nil
}

// LanguageSpec joins languages the way tesseract expects them ("chi_tra+eng").
func LanguageSpec(langs []string) string {
	return strings.Join(langs, "+")
}

// Factory creates a recognizer loaded with the given languages. It must fail
// if any of the languages cannot be loaded.
type Factory func(ctx context.Context, langs []string, assets AssetPaths) (Recognizer, error)
