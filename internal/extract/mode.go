package extract

import (
	"fmt"
	"strings"
)

// Mode selects the extraction strategy.
type Mode string

const (
	// ModeText reads only the embedded text layer.
	ModeText Mode = "text"
	// ModeOCR rasterizes every page and runs OCR on it.
	ModeOCR Mode = "ocr"
	// ModeAuto reads the text layer and falls back to OCR when it is negligible.
	ModeAuto Mode = "auto"
)

// Modes lists the accepted mode tokens.
var Modes = []Mode{ModeAuto, ModeText, ModeOCR}

// ParseMode converts a mode token. An empty token means ModeAuto.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModeAuto, nil
	}
	if !m.Valid() {
		return "", fmt.Errorf("%w %q (want auto, text or ocr)", ErrUnknownMode, s)
	}
	return m, nil
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeText, ModeOCR, ModeAuto:
		return true
	}
	return false
}

func (m Mode) String() string { return string(m) }
