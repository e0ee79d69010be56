package reader

import "image"

// PixelBuffer is a rendered page. It is owned by the rendering step until
// Release is called; after that Image returns nil.
type PixelBuffer struct {
	img *image.RGBA
}

// NewPixelBuffer wraps a rendered image.
func NewPixelBuffer(img *image.RGBA) *PixelBuffer {
	return &PixelBuffer{img: img}
}

// Image returns the pixels, or nil once the buffer has been released.
func (b *PixelBuffer) Image() image.Image {
	if b == nil || b.img == nil {
		return nil
	}
	return b.img
}

// Width returns the raster width in pixels.
func (b *PixelBuffer) Width() int {
	if b == nil || b.img == nil {
		return 0
	}
	return b.img.Bounds().Dx()
}

// Height returns the raster height in pixels.
func (b *PixelBuffer) Height() int {
	if b == nil || b.img == nil {
		return 0
	}
	return b.img.Bounds().Dy()
}

// Released reports whether Release has been called.
func (b *PixelBuffer) Released() bool {
	return b == nil || b.img == nil
}

// Release drops the pixel slice and zeroes the bounds so large page rasters
// are reclaimable as soon as recognition is done. Safe to call repeatedly.
func (b *PixelBuffer) Release() {
	if b == nil || b.img == nil {
		return
	}
	b.img.Pix = nil
	b.img.Stride = 0
	b.img.Rect = image.Rectangle{}
	b.img = nil
}
