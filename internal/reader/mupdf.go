package reader

import (
	"errors"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// pointsPerInch is the PDF user-space unit density at scale 1.
const pointsPerInch = 72.0

// mupdfDocument is a Document backed by go-fitz. Text can be overridden by a
// different backend while rendering always goes through MuPDF.
type mupdfDocument struct {
	doc   *fitz.Document
	pages int
	text  func(page int) (string, error)
	// sizes holds exact page sizes from pdfcpu; nil when pdfcpu could not
	// read the file, in which case MuPDF's whole-point bounds are used.
	sizes []PageSize
}

func openMuPDF(data []byte) (*mupdfDocument, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	d := &mupdfDocument{doc: doc, pages: doc.NumPage()}
	if sizes, err := PageSizes(data); err == nil && len(sizes) == d.pages {
		d.sizes = sizes
	}
	return d, nil
}

func (d *mupdfDocument) PageCount() int { return d.pages }

func (d *mupdfDocument) PageText(page int) (string, error) {
	if err := checkPage(page, d.pages); err != nil {
		return "", err
	}
	if d.text != nil {
		return d.text(page)
	}
	text, err := d.doc.Text(page - 1)
	if err != nil {
		return "", fmt.Errorf("read text of page %d: %w", page, err)
	}
	return text, nil
}

func (d *mupdfDocument) Viewport(page int, scale float64) (Viewport, error) {
	if err := checkPage(page, d.pages); err != nil {
		return Viewport{}, err
	}
	if scale <= 0 {
		return Viewport{}, fmt.Errorf("invalid scale %v", scale)
	}
	size, err := d.pageSize(page)
	if err != nil {
		return Viewport{}, err
	}
	return Viewport{
		Width:  size.Width * scale,
		Height: size.Height * scale,
		Scale:  scale,
	}, nil
}

func (d *mupdfDocument) pageSize(page int) (PageSize, error) {
	if d.sizes != nil {
		return d.sizes[page-1], nil
	}
	bounds, err := d.doc.Bound(page - 1)
	if err != nil {
		return PageSize{}, fmt.Errorf("bound page %d: %w", page, err)
	}
	return PageSize{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())}, nil
}

func (d *mupdfDocument) Render(page int, vp Viewport) (*PixelBuffer, error) {
	if err := checkPage(page, d.pages); err != nil {
		return nil, err
	}
	w, h := vp.Size()
	if w <= 0 || h <= 0 || vp.Scale <= 0 {
		return nil, fmt.Errorf("render page %d: empty viewport %vx%v", page, vp.Width, vp.Height)
	}
	img, err := d.doc.ImageDPI(page-1, pointsPerInch*vp.Scale)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	// MuPDF rounds the pixmap outward; keep the floor of the viewport.
	target := image.Rect(0, 0, w, h).Add(img.Bounds().Min).Intersect(img.Bounds())
	if target != img.Bounds() {
		sub, ok := img.SubImage(target).(*image.RGBA)
		if !ok {
			return nil, errors.New("unexpected sub-image type")
		}
		img = sub
	}
	return NewPixelBuffer(img), nil
}

func (d *mupdfDocument) Close() error {
	return d.doc.Close()
}
