// Package document exposes a fixed-layout book as an ordered list of pages.
package document

// Page is a handle to one page of a document.
type Page struct {
	Index  int     `json:"index"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document is an immutable sequence of pages. Indices are stable for the
// lifetime of the value.
type Document interface {
	PageCount() int
	Page(index int) (Page, bool)
	IndexOf(p Page) int
}

// Static is a document whose pages all share one extent.
type Static struct {
	Count         int
	Width, Height float64
}

func (s Static) PageCount() int { return s.Count }

func (s Static) Page(index int) (Page, bool) {
	if index < 0 || index >= s.Count {
		return Page{}, false
	}
	return Page{Index: index, Width: s.Width, Height: s.Height}, true
}

func (s Static) IndexOf(p Page) int {
	if got, ok := s.Page(p.Index); ok && got == p {
		return p.Index
	}
	return -1
}

// Pages is a document backed by a slice of page extents.
type Pages []Page

func (ps Pages) PageCount() int { return len(ps) }

func (ps Pages) Page(index int) (Page, bool) {
	if index < 0 || index >= len(ps) {
		return Page{}, false
	}
	return ps[index], true
}

func (ps Pages) IndexOf(p Page) int {
	if got, ok := ps.Page(p.Index); ok && got == p {
		return p.Index
	}
	return -1
}

// AspectRatio returns width/height of the first page, or 0 for an empty
// or degenerate document.
func AspectRatio(d Document) float64 {
	p, ok := d.Page(0)
	if !ok || p.Height == 0 {
		return 0
	}
	return p.Width / p.Height
}
