// Package pairing decides which document pages share a spread.
//
// Every function here is pure: a Resolver is an immutable value and the
// same inputs always produce the same PagePair.
package pairing

import "mushaf/internal/domain"

// Resolver groups the pages of a document with a fixed page count.
type Resolver struct {
	PageCount int
	Alignment domain.Alignment
}

// New returns a resolver for a document with pageCount pages.
func New(pageCount int, alignment domain.Alignment) Resolver {
	if alignment == "" {
		alignment = domain.AlignmentCover
	}
	return Resolver{PageCount: pageCount, Alignment: alignment}
}

// Valid reports whether index names a document page.
func (r Resolver) Valid(index int) bool {
	return index >= 0 && index < r.PageCount
}

// PairStart returns the lowest index of the two-up pair containing index.
func (r Resolver) PairStart(index int) int {
	if r.Alignment == domain.AlignmentEven {
		if index%2 == 0 {
			return index
		}
		return index - 1
	}
	if index == 0 || index%2 == 1 {
		return index
	}
	return index - 1
}

// PairFor returns the pages displayed with index. It reports false when
// index is outside the document.
func (r Resolver) PairFor(index int, o domain.Orientation, d domain.Direction) (domain.PagePair, bool) {
	if !r.Valid(index) {
		return domain.PagePair{}, false
	}
	if d == "" {
		d = domain.DirectionRTL
	}
	if o != domain.OrientationPaired {
		return domain.PagePair{
			Orientation: domain.OrientationSingle,
			Direction:   d,
			Center:      domain.Real(index),
		}, true
	}

	start := r.PairStart(index)
	pair := domain.PagePair{
		Orientation: domain.OrientationPaired,
		Direction:   d,
		Start:       domain.Real(start),
		End:         domain.Blank(),
	}
	// the cover stands alone under cover alignment
	if r.Alignment == domain.AlignmentCover && start == 0 {
		return pair, true
	}
	if end := start + 1; r.Valid(end) {
		pair.End = domain.Real(end)
	}
	return pair, true
}

// Next returns the pair following p in reading order.
func (r Resolver) Next(p domain.PagePair) (domain.PagePair, bool) {
	last := p.Last()
	if last < 0 {
		return domain.PagePair{}, false
	}
	return r.PairFor(last+1, p.Orientation, p.Direction)
}

// Previous returns the pair preceding p in reading order.
func (r Resolver) Previous(p domain.PagePair) (domain.PagePair, bool) {
	first := p.First()
	if first < 0 {
		return domain.PagePair{}, false
	}
	return r.PairFor(first-1, p.Orientation, p.Direction)
}

// Adjacent returns the pair revealed by turning the page on the given
// physical side. A right-to-left book advances when its left side is
// turned.
func (r Resolver) Adjacent(p domain.PagePair, side domain.Side) (domain.PagePair, bool) {
	forward := side == domain.SideLeft
	if p.Direction == domain.DirectionLTR {
		forward = !forward
	}
	if forward {
		return r.Next(p)
	}
	return r.Previous(p)
}

// Before answers the page-turn data source's "before" query.
func (r Resolver) Before(p domain.PagePair) (domain.PagePair, bool) {
	return r.Adjacent(p, domain.SideLeft)
}

// After answers the page-turn data source's "after" query.
func (r Resolver) After(p domain.PagePair) (domain.PagePair, bool) {
	return r.Adjacent(p, domain.SideRight)
}

// Pairs lists every pair of the document in reading order.
func (r Resolver) Pairs(o domain.Orientation, d domain.Direction) []domain.PagePair {
	var out []domain.PagePair
	p, ok := r.PairFor(0, o, d)
	for ok {
		out = append(out, p)
		p, ok = r.Next(p)
	}
	return out
}
