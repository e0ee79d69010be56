//go:build ocr

// Tesseract support. Requires Tesseract and its language data to be installed.
// On macOS:
//
//	brew install tesseract tesseract-lang
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr tesseract-ocr-chi-tra

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Enabled reports whether tesseract support is compiled in.
const Enabled = true

// Tesseract is a Recognizer backed by a single gosseract client. Calls to
// Recognize are serialized because the client is not safe for concurrent use.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
	langs  []string
}

// NewTesseract creates a client for langs and forces the language data to
// load, so a missing traineddata file fails here rather than on the first page.
func NewTesseract(ctx context.Context, langs []string, assets AssetPaths) (*Tesseract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client := gosseract.NewClient()
	if assets.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(assets.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(langs...); err != nil {
		client.Close()
		return nil, fmt.Errorf("set languages: %w", err)
	}

	t := &Tesseract{client: client, langs: langs}
	if err := t.warmUp(); err != nil {
		client.Close()
		return nil, fmt.Errorf("load languages %s: %w", LanguageSpec(langs), err)
	}
	return t, nil
}

// TesseractFactory is a Factory for NewTesseract.
func TesseractFactory(ctx context.Context, langs []string, assets AssetPaths) (Recognizer, error) {
	t, err := NewTesseract(ctx, langs, assets)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Recognize performs OCR on a page image.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("recognize: nil image")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode page image: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recognizeBytes(buf.Bytes())
}

// Close releases the native client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

func (t *Tesseract) recognizeBytes(data []byte) (string, error) {
	if t.client == nil {
		return "", fmt.Errorf("recognize: client closed")
	}
	if err := t.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// warmUp runs one recognition on a blank image; gosseract initializes the
// engine (and loads language data) lazily on the first Text call.
func (t *Tesseract) warmUp() error {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	_, err := t.recognizeBytes(buf.Bytes())
	return err
}
