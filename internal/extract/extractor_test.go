package extract

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashicode/pdf2text/internal/ocr"
	"github.com/akashicode/pdf2text/internal/reader"
)

// fakeDoc serves fixed page texts and blank rasters.
type fakeDoc struct {
	texts     []string
	textErr   map[int]error
	renderErr map[int]error

	mu        sync.Mutex
	textCalls int
	renders   []*reader.PixelBuffer
	viewports []reader.Viewport
	closed    bool
}

func (d *fakeDoc) PageCount() int { return len(d.texts) }

func (d *fakeDoc) PageText(page int) (string, error) {
	d.mu.Lock()
	d.textCalls++
	d.mu.Unlock()
	if err := d.textErr[page]; err != nil {
		return "", err
	}
	return d.texts[page-1], nil
}

func (d *fakeDoc) Viewport(page int, scale float64) (reader.Viewport, error) {
	return reader.Viewport{Width: 100.7 * scale, Height: 50.2 * scale, Scale: scale}, nil
}

func (d *fakeDoc) Render(page int, vp reader.Viewport) (*reader.PixelBuffer, error) {
	if err := d.renderErr[page]; err != nil {
		return nil, err
	}
	w, h := vp.Size()
	buf := reader.NewPixelBuffer(image.NewRGBA(image.Rect(0, 0, w, h)))
	d.mu.Lock()
	d.renders = append(d.renders, buf)
	d.viewports = append(d.viewports, vp)
	d.mu.Unlock()
	return buf, nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

type fakeOpener struct {
	doc   *fakeDoc
	err   error
	opens int
}

func (o *fakeOpener) Open(data []byte) (reader.Document, error) {
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

// fakeRecognizer returns pages[i] for the i-th call.
type fakeRecognizer struct {
	mu     sync.Mutex
	pages  []string
	err    error
	calls  int
	sizes  []image.Point
	nilImg bool
}

func (r *fakeRecognizer) Recognize(_ context.Context, img image.Image) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if img == nil {
		r.nilImg = true
	} else {
		r.sizes = append(r.sizes, img.Bounds().Size())
	}
	i := r.calls
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	if i < len(r.pages) {
		return r.pages[i], nil
	}
	return "", nil
}

type harness struct {
	opener   *fakeOpener
	rec      *fakeRecognizer
	inits    int
	provider *ocr.Provider
	ex       *Extractor
	progress []float64
	notices  []string
}

func newHarness(texts []string, ocrPages []string, opts ...Option) *harness {
	h := &harness{
		opener: &fakeOpener{doc: &fakeDoc{texts: texts}},
		rec:    &fakeRecognizer{pages: ocrPages},
	}
	h.provider = ocr.NewProvider(func(context.Context, []string, ocr.AssetPaths) (ocr.Recognizer, error) {
		h.inits++
		return h.rec, nil
	}, ocr.DefaultConfig())
	h.ex = New(h.opener, h.provider, opts...)
	return h
}

func (h *harness) run(t *testing.T, mode Mode) (string, error) {
	t.Helper()
	h.progress = nil
	h.notices = nil
	return h.ex.Run(context.Background(), []byte("%PDF-fake"), mode, Observer{
		Progress: func(p float64) { h.progress = append(h.progress, p) },
		Notice:   func(msg string) { h.notices = append(h.notices, msg) },
	})
}

func assertMonotonicTo100(t *testing.T, seq []float64) {
	t.Helper()
	require.NotEmpty(t, seq)
	for i := 1; i < len(seq); i++ {
		assert.GreaterOrEqual(t, seq[i], seq[i-1], "progress went backwards at %d: %v", i, seq)
	}
	for _, p := range seq {
		assert.True(t, p >= 0 && p <= 100, "progress out of range: %v", p)
	}
	assert.Equal(t, 100.0, seq[len(seq)-1])
}

func TestExtract_TextMode(t *testing.T) {
	h := newHarness([]string{"Hello World"}, nil)

	text, err := h.run(t, ModeText)
	require.NoError(t, err)
	assert.Equal(t, "Hello World\n\n", text)
	assert.Equal(t, []float64{100}, h.progress)
	assert.Zero(t, h.rec.calls)
	assert.Zero(t, h.inits)
	assert.True(t, h.opener.doc.closed)
}

func TestExtract_TextModeJoinsPages(t *testing.T) {
	h := newHarness([]string{"one", "two", "three"}, nil)

	text, err := h.run(t, ModeText)
	require.NoError(t, err)
	assert.Equal(t, "one\n\ntwo\n\nthree\n\n", text)
	assert.Equal(t, []float64{33, 67, 100}, h.progress)
}

func TestExtract_TextModeEmptyIsNotAnError(t *testing.T) {
	h := newHarness([]string{"", ""}, nil)

	text, err := h.run(t, ModeText)
	require.NoError(t, err)
	assert.Equal(t, "\n\n\n\n", text)
	assertMonotonicTo100(t, h.progress)
}

func TestExtract_OCRMode(t *testing.T) {
	h := newHarness([]string{"", ""}, []string{"  first page ", "second page\n"})

	text, err := h.run(t, ModeOCR)
	require.NoError(t, err)
	assert.Equal(t, "first page \nsecond page", text)
	assert.Equal(t, []float64{50, 100}, h.progress)
	assert.Equal(t, 2, h.rec.calls)
	assert.Zero(t, h.opener.doc.textCalls)
	assert.Empty(t, h.notices)
}

func TestExtract_OCRModeRendersAtScaleAndReleases(t *testing.T) {
	h := newHarness([]string{"", "", ""}, []string{"a", "b", "c"}, WithRenderScale(3))

	_, err := h.run(t, ModeOCR)
	require.NoError(t, err)

	doc := h.opener.doc
	require.Len(t, doc.renders, 3)
	for i, buf := range doc.renders {
		assert.True(t, buf.Released(), "page %d buffer not released", i+1)
		assert.Equal(t, 3.0, doc.viewports[i].Scale)
	}
	assert.False(t, h.rec.nilImg)
	for _, size := range h.rec.sizes {
		assert.Equal(t, image.Pt(302, 150), size)
	}
}

func TestExtract_AutoSkipsOCRForRealTextLayer(t *testing.T) {
	body := "This page has a real text layer."
	h := newHarness([]string{body}, []string{"should never be used"})

	text, err := h.run(t, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, body+"\n\n", text)
	assert.Zero(t, h.rec.calls)
	assert.Zero(t, h.inits)
	assert.Empty(t, h.notices)
	assert.Equal(t, []float64{60, 100}, h.progress)
}

func TestExtract_AutoScannedDocument(t *testing.T) {
	h := newHarness([]string{""}, []string{"Recognized from the scan"})

	text, err := h.run(t, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, "Recognized from the scan", text)
	assert.Equal(t, []float64{60, 100}, h.progress)
	assert.Equal(t, []string{NoticeScanned}, h.notices)
	assert.Equal(t, 1, h.rec.calls)
	assert.Equal(t, 1, h.opener.opens)
}

func TestExtract_AutoProgressSubRanges(t *testing.T) {
	h := newHarness([]string{"", "", "", ""}, []string{"a", "b", "c", "d"})

	_, err := h.run(t, ModeAuto)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{15, 30, 45, 60, 70, 80, 90, 100}, h.progress, 1e-9)
}

func TestExtract_AutoShortTextBlankOCR(t *testing.T) {
	h := newHarness([]string{"p. 1", "p. 2"}, []string{"  ", "\n"})

	text, err := h.run(t, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, "p. 1\n\np. 2\n\n", text)
	assert.Equal(t, 2, h.rec.calls)
	assertMonotonicTo100(t, h.progress)
}

func TestExtract_AutoThresholdBoundary(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantOCR bool
	}{
		{name: "19 chars", text: "  1234567890123456789  ", wantOCR: true},
		{name: "20 chars", text: "12345678901234567890", wantOCR: false},
		{name: "20 runes multibyte", text: "繁體中文繁體中文繁體中文繁體中文繁體中文", wantOCR: false},
		{name: "whitespace only", text: " \n\t ", wantOCR: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness([]string{tt.text}, []string{"ocr"})
			text, err := h.run(t, ModeAuto)
			require.NoError(t, err)
			if tt.wantOCR {
				assert.Equal(t, "ocr", text)
				assert.Equal(t, 1, h.rec.calls)
			} else {
				assert.Equal(t, tt.text+"\n\n", text)
				assert.Zero(t, h.rec.calls)
			}
		})
	}
}

func TestExtract_CustomThreshold(t *testing.T) {
	h := newHarness([]string{"short"}, []string{"ocr"}, WithAutoThreshold(3))

	text, err := h.run(t, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, "short\n\n", text)
	assert.Zero(t, h.rec.calls)
}

func TestExtract_DocumentOpenFailed(t *testing.T) {
	h := newHarness([]string{"x"}, nil)
	h.opener.err = errors.New("no PDF header")

	for _, mode := range Modes {
		t.Run(mode.String(), func(t *testing.T) {
			text, err := h.run(t, mode)
			require.Error(t, err)
			assert.Empty(t, text)
			assert.ErrorIs(t, err, ErrDocumentOpenFailed)
			assert.Equal(t, KindDocumentOpenFailed, KindOf(err))
			assert.Contains(t, err.Error(), "no PDF header")
			assert.Equal(t, []float64{100}, h.progress)
			assert.Zero(t, h.opener.doc.textCalls)
			assert.Zero(t, h.rec.calls)
		})
	}
}

func TestExtract_EngineUnavailable(t *testing.T) {
	t.Run("no PDF engine", func(t *testing.T) {
		var progress []float64
		_, err := New(nil, nil).Extract(context.Background(), []byte("x"), ModeText, func(p float64) {
			progress = append(progress, p)
		})
		assert.ErrorIs(t, err, ErrEngineUnavailable)
		assert.Equal(t, KindEngineUnavailable, KindOf(err))
		assert.Equal(t, []float64{100}, progress)
	})

	t.Run("no OCR provider", func(t *testing.T) {
		opener := &fakeOpener{doc: &fakeDoc{texts: []string{""}}}
		_, err := New(opener, nil).Extract(context.Background(), []byte("x"), ModeOCR, nil)
		assert.ErrorIs(t, err, ErrEngineUnavailable)
		assert.ErrorIs(t, err, ocr.ErrEngineUnavailable)
		assert.True(t, opener.doc.closed)
	})

	t.Run("OCR languages fail", func(t *testing.T) {
		opener := &fakeOpener{doc: &fakeDoc{texts: []string{""}}}
		provider := ocr.NewProvider(func(context.Context, []string, ocr.AssetPaths) (ocr.Recognizer, error) {
			return nil, errors.New("missing traineddata")
		}, ocr.DefaultConfig())

		var progress []float64
		_, err := New(opener, provider).Extract(context.Background(), []byte("x"), ModeAuto, func(p float64) {
			progress = append(progress, p)
		})
		assert.Equal(t, KindEngineUnavailable, KindOf(err))
		assert.ErrorIs(t, err, ocr.ErrLanguageInitFailed)
		assertMonotonicTo100(t, progress)
	})
}

func TestExtract_LanguageFallbackIsSilent(t *testing.T) {
	opener := &fakeOpener{doc: &fakeDoc{texts: []string{""}}}
	rec := &fakeRecognizer{pages: []string{"fallback text"}}
	provider := ocr.NewProvider(func(_ context.Context, langs []string, _ ocr.AssetPaths) (ocr.Recognizer, error) {
		if len(langs) > 1 {
			return nil, errors.New("chi_tra.traineddata not found")
		}
		return rec, nil
	}, ocr.DefaultConfig())

	text, err := New(opener, provider).Extract(context.Background(), []byte("x"), ModeAuto, nil)
	require.NoError(t, err)
	assert.Equal(t, "fallback text", text)
	assert.Equal(t, []string{"eng"}, provider.Languages())
}

func TestExtract_PageProcessingFailed(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		mode  Mode
		setup func(h *harness)
	}{
		{
			name:  "text read",
			mode:  ModeText,
			setup: func(h *harness) { h.opener.doc.textErr = map[int]error{2: boom} },
		},
		{
			name:  "render",
			mode:  ModeOCR,
			setup: func(h *harness) { h.opener.doc.renderErr = map[int]error{2: boom} },
		},
		{
			name:  "recognize",
			mode:  ModeAuto,
			setup: func(h *harness) { h.rec.err = boom },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness([]string{"", "", ""}, []string{"a", "b", "c"})
			tt.setup(h)

			text, err := h.run(t, tt.mode)
			require.Error(t, err)
			assert.Empty(t, text)
			assert.ErrorIs(t, err, ErrPageProcessingFailed)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, KindPageProcessingFailed, KindOf(err))
			assert.Contains(t, err.Error(), "page ")
			assertMonotonicTo100(t, h.progress)
			assert.True(t, h.opener.doc.closed)
			for _, buf := range h.opener.doc.renders {
				assert.True(t, buf.Released())
			}
		})
	}
}

func TestExtract_Canceled(t *testing.T) {
	h := newHarness([]string{"a", "b"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var progress []float64
	_, err := h.ex.Extract(ctx, []byte("x"), ModeText, func(p float64) { progress = append(progress, p) })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, KindCanceled, KindOf(err))
	assert.Equal(t, []float64{100}, progress)
}

func TestExtract_UnknownMode(t *testing.T) {
	h := newHarness([]string{"a"}, nil)
	_, err := h.run(t, Mode("fast"))
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, KindInvalidInput, KindOf(err))
	assert.Zero(t, h.opener.opens)
	assert.Equal(t, []float64{100}, h.progress)
}

func TestExtract_Idempotent(t *testing.T) {
	h := newHarness([]string{"x"}, []string{"same"})

	first, err := h.run(t, ModeAuto)
	require.NoError(t, err)
	h.rec.calls = 0
	second, err := h.run(t, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtract_OCREngineCreatedOnce(t *testing.T) {
	h := newHarness([]string{""}, nil)

	for i := 0; i < 4; i++ {
		_, err := h.run(t, ModeOCR)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, h.inits)
	assert.Equal(t, 4, h.rec.calls)
}

func TestExtract_EmptyDocument(t *testing.T) {
	h := newHarness(nil, nil)

	text, err := h.run(t, ModeAuto)
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Equal(t, []float64{100}, h.progress)
}
