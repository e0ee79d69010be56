package extract

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEngineUnavailable is returned when the PDF engine or the OCR engine
	// could not be loaded.
	ErrEngineUnavailable = errors.New("engine unavailable")
	// ErrDocumentOpenFailed is returned when the input cannot be parsed as a PDF.
	ErrDocumentOpenFailed = errors.New("document open failed")
	// ErrPageProcessingFailed is returned when reading, rendering or
	// recognizing a page fails.
	ErrPageProcessingFailed = errors.New("page processing failed")
	// ErrUnknownMode is returned for an unrecognized mode token.
	ErrUnknownMode = errors.New("unknown extraction mode")
)

// Kind classifies an extraction failure.
type Kind int

const (
	KindNone Kind = iota
	KindEngineUnavailable
	KindDocumentOpenFailed
	KindPageProcessingFailed
	KindCanceled
	KindInvalidInput
	KindUnknown
)

var kindNames = map[Kind]string{
	KindNone:                 "none",
	KindEngineUnavailable:    "engine_unavailable",
	KindDocumentOpenFailed:   "document_open_failed",
	KindPageProcessingFailed: "page_processing_failed",
	KindCanceled:             "canceled",
	KindInvalidInput:         "invalid_input",
	KindUnknown:              "unknown",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindOf returns the Kind of an error returned by Extract.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrEngineUnavailable):
		return KindEngineUnavailable
	case errors.Is(err, ErrDocumentOpenFailed):
		return KindDocumentOpenFailed
	case errors.Is(err, ErrPageProcessingFailed):
		return KindPageProcessingFailed
	case errors.Is(err, ErrUnknownMode):
		return KindInvalidInput
	default:
		return KindUnknown
	}
}

func pageError(page int, op string, err error) error {
	return fmt.Errorf("%w: page %d: %s: %w", ErrPageProcessingFailed, page, op, err)
}
