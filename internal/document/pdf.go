package document

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// OpenPDF reads the page tree of the PDF at path. Only page count and
// page extents are retained; the file is not kept open.
func OpenPDF(path string) (Pages, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", path, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("count pages %s: %w", path, err)
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("page dimensions %s: %w", path, err)
	}
	if len(dims) != ctx.PageCount {
		return nil, fmt.Errorf("pdf %s: %d page dimensions for %d pages", path, len(dims), ctx.PageCount)
	}

	pages := make(Pages, len(dims))
	for i, d := range dims {
		pages[i] = Page{Index: i, Width: d.Width, Height: d.Height}
	}
	return pages, nil
}
