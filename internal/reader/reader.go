package reader

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when a file format is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrEmptyDocument is returned when an empty byte buffer is opened.
var ErrEmptyDocument = errors.New("document is empty")

// ErrPageOutOfRange is returned when a page index is outside 1..PageCount.
var ErrPageOutOfRange = errors.New("page out of range")

// TextBackend selects the library used to read a page's text layer.
type TextBackend string

const (
	// BackendMuPDF reads the text layer with MuPDF (go-fitz).
	BackendMuPDF TextBackend = "mupdf"
	// BackendLedongthuc reads the text layer with the pure-Go ledongthuc/pdf parser.
	BackendLedongthuc TextBackend = "ledongthuc"
)

// ParseTextBackend converts a configuration token into a TextBackend.
// An empty token selects BackendMuPDF.
func ParseTextBackend(s string) (TextBackend, error) {
	switch TextBackend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendMuPDF:
		return BackendMuPDF, nil
	case BackendLedongthuc:
		return BackendLedongthuc, nil
	default:
		return "", fmt.Errorf("unknown text backend %q", s)
	}
}

// Viewport is the device-space size of a page rendered at Scale.
type Viewport struct {
	Width  float64
	Height float64
	Scale  float64
}

// Size returns the pixel dimensions of a raster for this viewport.
func (v Viewport) Size() (width, height int) {
	return int(math.Floor(v.Width)), int(math.Floor(v.Height))
}

// Document is an opened PDF. Pages are 1-based.
type Document interface {
	// PageCount returns the number of pages in the document.
	PageCount() int
	// PageText returns the embedded text layer of a page, or "" if there is none.
	PageText(page int) (string, error)
	// Viewport returns the page size at the given scale factor.
	Viewport(page int, scale float64) (Viewport, error)
	// Render rasterizes a page. The caller must Release the returned buffer.
	Render(page int, vp Viewport) (*PixelBuffer, error)
	// Close releases the parser state.
	Close() error
}

// Opener parses raw PDF bytes into a Document.
type Opener interface {
	Open(data []byte) (Document, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(data []byte) (Document, error)

// Open calls f(data).
func (f OpenerFunc) Open(data []byte) (Document, error) { return f(data) }

// NewOpener returns an Opener that rasterizes with MuPDF and reads the text
// layer with the selected backend.
func NewOpener(backend TextBackend) Opener {
	return OpenerFunc(func(data []byte) (Document, error) {
		doc, err := openMuPDF(data)
		if err != nil {
			return nil, err
		}
		if backend == BackendLedongthuc {
			text, err := newLedongthucText(data)
			if err != nil {
				doc.Close()
				return nil, err
			}
			doc.text = text.PageText
		}
		return doc, nil
	})
}

func checkPage(page, count int) error {
	if page < 1 || page > count {
		return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, count)
	}
	return nil
}

// File is a PDF loaded from disk.
type File struct {
	// Path is the source file path
	Path string
	// Name is the base filename
	Name string
	// Data is the raw file content
	Data []byte
}

// IsPDF reports whether name carries a .pdf extension.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// LoadFile reads a single PDF from the given path.
func LoadFile(path string) (File, error) {
	if !IsPDF(path) {
		return File{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read file %q: %w", path, err)
	}
	return File{
		Path: path,
		Name: filepath.Base(path),
		Data: data,
	}, nil
}
