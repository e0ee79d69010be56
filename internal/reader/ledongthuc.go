package reader

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ledongthucText reads page text with the pure-Go ledongthuc/pdf parser.
type ledongthucText struct {
	r     *pdf.Reader
	fonts map[string]*pdf.Font
}

func newLedongthucText(data []byte) (*ledongthucText, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF text layer: %w", err)
	}
	return &ledongthucText{r: r, fonts: make(map[string]*pdf.Font)}, nil
}

// PageText returns the plain text of a 1-based page. The parser panics on
// some malformed content streams; those surface as errors.
func (t *ledongthucText) PageText(page int) (text string, err error) {
	if err := checkPage(page, t.r.NumPage()); err != nil {
		return "", err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read text of page %d: %v", page, r)
		}
	}()

	p := t.r.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	for _, name := range p.Fonts() {
		if _, ok := t.fonts[name]; !ok {
			f := p.Font(name)
			t.fonts[name] = &f
		}
	}
	text, err = p.GetPlainText(t.fonts)
	if err != nil {
		return "", fmt.Errorf("read text of page %d: %w", page, err)
	}
	return text, nil
}
