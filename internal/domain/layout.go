package domain

import "fmt"

// Orientation selects how many document pages are shown at once.
type Orientation string

const (
	OrientationSingle Orientation = "single"
	OrientationPaired Orientation = "paired"
)

// ParseOrientation accepts the config/tool spellings of an orientation.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "single", "portrait", "":
		return OrientationSingle, nil
	case "paired", "two-up", "landscape":
		return OrientationPaired, nil
	default:
		return "", fmt.Errorf("unknown orientation %q", s)
	}
}

// Direction is the reading direction of the book.
type Direction string

const (
	DirectionRTL Direction = "rtl"
	DirectionLTR Direction = "ltr"
)

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "rtl", "":
		return DirectionRTL, nil
	case "ltr":
		return DirectionLTR, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Alignment decides where two-up pairs begin.
//
// AlignmentCover keeps page 0 alone on its spread and pairs (1,2), (3,4), ...
// AlignmentEven pairs (0,1), (2,3), ...
type Alignment string

const (
	AlignmentCover Alignment = "cover"
	AlignmentEven  Alignment = "even"
)

func ParseAlignment(s string) (Alignment, error) {
	switch s {
	case "cover", "":
		return AlignmentCover, nil
	case "even":
		return AlignmentEven, nil
	default:
		return "", fmt.Errorf("unknown alignment %q", s)
	}
}

// Side is a physical side of the screen.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

func ParseSide(s string) (Side, error) {
	switch s {
	case "left":
		return SideLeft, nil
	case "right":
		return SideRight, nil
	default:
		return "", fmt.Errorf("unknown side %q", s)
	}
}

// SlotKind tags a PageSlot.
type SlotKind uint8

const (
	SlotNone SlotKind = iota
	SlotReal
	SlotBlank
)

var slotKindNames = [...]string{SlotNone: "none", SlotReal: "page", SlotBlank: "blank"}

func (k SlotKind) MarshalText() ([]byte, error) {
	if int(k) >= len(slotKindNames) {
		return nil, fmt.Errorf("invalid slot kind %d", k)
	}
	return []byte(slotKindNames[k]), nil
}

func (k *SlotKind) UnmarshalText(b []byte) error {
	for i, name := range slotKindNames {
		if name == string(b) {
			*k = SlotKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown slot kind %q", b)
}

// PageSlot is one position of a spread: a real page, a blank placeholder,
// or nothing at all (the zero value).
type PageSlot struct {
	Kind  SlotKind `json:"kind"`
	Index int      `json:"index"`
}

// Real returns a slot holding document page i.
func Real(i int) PageSlot { return PageSlot{Kind: SlotReal, Index: i} }

// Blank returns a placeholder slot.
func Blank() PageSlot { return PageSlot{Kind: SlotBlank, Index: -1} }

// IsReal reports whether the slot holds a document page.
func (s PageSlot) IsReal() bool { return s.Kind == SlotReal }

// IsBlank reports whether the slot is a placeholder.
func (s PageSlot) IsBlank() bool { return s.Kind == SlotBlank }

// PageIndex returns the page index and whether the slot is real.
func (s PageSlot) PageIndex() (int, bool) {
	if s.Kind != SlotReal {
		return -1, false
	}
	return s.Index, true
}

func (s PageSlot) String() string {
	switch s.Kind {
	case SlotReal:
		return fmt.Sprintf("page(%d)", s.Index)
	case SlotBlank:
		return "blank"
	default:
		return "none"
	}
}

// PagePair is the group of pages shown together. In single orientation
// only Center is set; in paired orientation Start and End are set and
// Center is the zero slot.
type PagePair struct {
	Orientation Orientation `json:"orientation"`
	Direction   Direction   `json:"direction"`
	Start       PageSlot    `json:"start"`
	End         PageSlot    `json:"end"`
	Center      PageSlot    `json:"center"`
}

// Left returns the slot shown on the left half of a spread.
func (p PagePair) Left() PageSlot {
	if p.Orientation == OrientationSingle {
		return p.Center
	}
	if p.Direction == DirectionLTR {
		return p.Start
	}
	return p.End
}

// Right returns the slot shown on the right half of a spread.
func (p PagePair) Right() PageSlot {
	if p.Orientation == OrientationSingle {
		return p.Center
	}
	if p.Direction == DirectionLTR {
		return p.End
	}
	return p.Start
}

// Slots returns the occupied slots in reading order.
func (p PagePair) Slots() []PageSlot {
	if p.Orientation == OrientationSingle {
		return []PageSlot{p.Center}
	}
	return []PageSlot{p.Start, p.End}
}

// Pages returns the real page indices of the pair in ascending order.
func (p PagePair) Pages() []int {
	var out []int
	for _, s := range p.Slots() {
		if i, ok := s.PageIndex(); ok {
			out = append(out, i)
		}
	}
	return out
}

// First returns the lowest real page index, or -1 for an empty pair.
func (p PagePair) First() int {
	pages := p.Pages()
	if len(pages) == 0 {
		return -1
	}
	return pages[0]
}

// Last returns the highest real page index, or -1 for an empty pair.
func (p PagePair) Last() int {
	pages := p.Pages()
	if len(pages) == 0 {
		return -1
	}
	return pages[len(pages)-1]
}

// Contains reports whether page i is shown by the pair.
func (p PagePair) Contains(i int) bool {
	for _, pg := range p.Pages() {
		if pg == i {
			return true
		}
	}
	return false
}
