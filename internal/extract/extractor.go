// Package extract converts PDF bytes into plain text, choosing between the
// embedded text layer and OCR.
//
// In auto mode the text layer is read first. When it holds fewer than a
// threshold of characters the document is treated as scanned and every page
// is rendered and recognized instead. Pages are always processed in order,
// one at a time, and any failure aborts the whole document.
package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/akashicode/pdf2text/internal/ocr"
	"github.com/akashicode/pdf2text/internal/reader"
)

const (
	// DefaultAutoThreshold is the minimum trimmed text-layer length, in
	// characters, for auto mode to skip OCR.
	DefaultAutoThreshold = 20
	// DefaultRenderScale is the rasterization multiplier applied to a
	// page's natural size before OCR.
	DefaultRenderScale = 2.0

	// NoticeScanned is emitted when auto mode switches to OCR.
	NoticeScanned = "auto mode: document looks scanned, switching to OCR"
)

// Observer receives per-invocation events. Both fields are optional.
type Observer struct {
	Progress ProgressFunc
	Notice   func(msg string)
}

// Extractor runs extractions. It is safe for concurrent use as long as the
// Opener is; each call owns its Document.
type Extractor struct {
	docs      reader.Opener
	ocr       *ocr.Provider
	logger    *zap.Logger
	threshold int
	scale     float64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithAutoThreshold sets the auto-mode text length below which OCR runs.
func WithAutoThreshold(n int) Option {
	return func(e *Extractor) {
		if n >= 0 {
			e.threshold = n
		}
	}
}

// WithRenderScale sets the rasterization scale factor used for OCR.
func WithRenderScale(scale float64) Option {
	return func(e *Extractor) {
		if scale > 0 {
			e.scale = scale
		}
	}
}

// New creates an Extractor. The provider may be shared by many Extractors;
// a nil provider makes every OCR pass fail with ErrEngineUnavailable.
func New(docs reader.Opener, provider *ocr.Provider, opts ...Option) *Extractor {
	e := &Extractor{
		docs:      docs,
		ocr:       provider,
		logger:    zap.NewNop(),
		threshold: DefaultAutoThreshold,
		scale:     DefaultRenderScale,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract converts data using mode and reports progress through onProgress.
func (e *Extractor) Extract(ctx context.Context, data []byte, mode Mode, onProgress ProgressFunc) (string, error) {
	return e.Run(ctx, data, mode, Observer{Progress: onProgress})
}

// Run is Extract with an Observer that also receives advisory notices.
// Progress always ends at 100, on failure as well as on success.
func (e *Extractor) Run(ctx context.Context, data []byte, mode Mode, obs Observer) (string, error) {
	rep := newReporter(obs.Progress)
	defer rep.finish()

	if !mode.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownMode, mode)
	}
	if e.docs == nil {
		return "", fmt.Errorf("%w: no PDF engine loaded", ErrEngineUnavailable)
	}

	doc, err := e.docs.Open(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDocumentOpenFailed, err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			e.logger.Warn("close document", zap.Error(err))
		}
	}()

	log := e.logger.With(zap.Stringer("mode", mode), zap.Int("pages", doc.PageCount()))
	log.Debug("document opened")

	var text string
	switch mode {
	case ModeText:
		text, err = e.textPass(ctx, log, doc, rep.report)
	case ModeOCR:
		text, err = e.ocrPass(ctx, log, doc, rep.report)
	default:
		text, err = e.auto(ctx, log, doc, rep, obs.Notice)
	}
	if err != nil {
		log.Debug("extraction failed", zap.Error(err))
		return "", err
	}
	return text, nil
}

func (e *Extractor) auto(ctx context.Context, log *zap.Logger, doc reader.Document, rep *reporter, notice func(string)) (string, error) {
	text, err := e.textPass(ctx, log, doc, scaled(rep.report, 0, 0.6))
	if err != nil {
		return "", err
	}

	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n >= e.threshold {
		rep.report(100)
		return text, nil
	}

	log.Info(NoticeScanned, zap.Int("text_chars", n), zap.Int("threshold", e.threshold))
	if notice != nil {
		notice(NoticeScanned)
	}

	ocrText, err := e.ocrPass(ctx, log, doc, scaled(rep.report, 60, 0.4))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(ocrText) != "" {
		return ocrText, nil
	}
	return text, nil
}

// textPass joins every page's text layer, each followed by a blank line.
func (e *Extractor) textPass(ctx context.Context, log *zap.Logger, doc reader.Document, progress ProgressFunc) (string, error) {
	total := doc.PageCount()
	var sb strings.Builder
	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("text pass stopped before page %d: %w", page, err)
		}
		s, err := doc.PageText(page)
		if err != nil {
			return "", pageError(page, "read text", err)
		}
		sb.WriteString(s)
		sb.WriteString("\n\n")
		log.Debug("page text read", zap.Int("page", page), zap.Int("chars", utf8.RuneCountInString(s)))
		progress(pagePercent(page, total))
	}
	return sb.String(), nil
}

// ocrPass renders and recognizes every page and returns the trimmed result.
func (e *Extractor) ocrPass(ctx context.Context, log *zap.Logger, doc reader.Document, progress ProgressFunc) (string, error) {
	rec, err := e.ocr.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}

	total := doc.PageCount()
	var sb strings.Builder
	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("OCR pass stopped before page %d: %w", page, err)
		}
		s, err := e.recognizePage(ctx, doc, rec, page)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
		sb.WriteString("\n")
		log.Debug("page recognized", zap.Int("page", page), zap.Int("chars", utf8.RuneCountInString(s)))
		progress(pagePercent(page, total))
	}
	return strings.TrimSpace(sb.String()), nil
}

func (e *Extractor) recognizePage(ctx context.Context, doc reader.Document, rec ocr.Recognizer, page int) (string, error) {
	vp, err := doc.Viewport(page, e.scale)
	if err != nil {
		return "", pageError(page, "viewport", err)
	}
	buf, err := doc.Render(page, vp)
	if err != nil {
		return "", pageError(page, "render", err)
	}
	defer buf.Release()

	text, err := rec.Recognize(ctx, buf.Image())
	if err != nil {
		return "", pageError(page, "recognize", err)
	}
	return text, nil
}
