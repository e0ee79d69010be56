package reader

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Info is a structural summary of a PDF.
type Info struct {
	// Pages is the page count from the page tree
	Pages int
	// Version is the PDF header version, e.g. "1.7"
	Version string
	// Encrypted is true when the file has an Encrypt dictionary
	Encrypted bool
	// Size is the byte length of the input
	Size int
}

// Inspect reads and validates the document structure using pdfcpu in relaxed
// mode, without touching page content.
func Inspect(data []byte) (Info, error) {
	ctx, err := readStructure(data)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Pages:     ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
		Size:      len(data),
	}
	if ctx.HeaderVersion != nil {
		info.Version = ctx.HeaderVersion.String()
	}
	return info, nil
}

// PageSize is the visible size of a page in PDF points.
type PageSize struct {
	Width  float64
	Height float64
}

// PageSizes returns the crop box size of every page, in page order, with
// width and height swapped for pages rotated by 90 or 270 degrees. Sizes
// keep their fractional part.
func PageSizes(data []byte) ([]PageSize, error) {
	ctx, err := readStructure(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}
	pbs, err := ctx.PageBoundaries(nil)
	if err != nil {
		return nil, fmt.Errorf("read page boundaries: %w", err)
	}

	sizes := make([]PageSize, len(pbs))
	for i, pb := range pbs {
		box := pb.CropBox()
		if box == nil {
			return nil, fmt.Errorf("page %d has no media box", i+1)
		}
		sizes[i] = pageSize(box.Dimensions(), pb.Rot)
	}
	return sizes, nil
}

func pageSize(d types.Dim, rot int) PageSize {
	if rot%180 != 0 {
		d.Width, d.Height = d.Height, d.Width
	}
	return PageSize{Width: d.Width, Height: d.Height}
}

func readStructure(data []byte) (*model.Context, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("read PDF structure: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("validate PDF structure: %w", err)
	}
	return ctx, nil
}
