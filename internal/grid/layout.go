// Package grid implements collision resolution and vertical compaction for
// rectangular widgets placed on a column grid.
//
// Every exported operation is copy-on-write: the Layout passed in is never
// modified and the returned Layout shares no memory with it.
package grid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/gridtile/internal/geometry"
)

// Placement is one widget's position and size in grid cells.
type Placement struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
	W  int    `json:"w"`
	H  int    `json:"h"`
}

func (p Placement) String() string {
	return fmt.Sprintf("%s(%d,%d %dx%d)", p.ID, p.X, p.Y, p.W, p.H)
}

// Right is the first column to the right of the placement.
func (p Placement) Right() int { return p.X + p.W }

// Bottom is the first row below the placement.
func (p Placement) Bottom() int { return p.Y + p.H }

// Collides reports whether two placements' rectangles intersect. A placement
// never collides with itself.
func Collides(a, b Placement) bool {
	if a.ID == b.ID {
		return false
	}
	if a.Right() <= b.X || b.Right() <= a.X {
		return false
	}
	if a.Bottom() <= b.Y || b.Bottom() <= a.Y {
		return false
	}
	return true
}

// Layout is a collection of placements keyed by ID. Order is only used as a
// tie-break during resolution.
type Layout []Placement

// Clone returns an independent copy.
func (l Layout) Clone() Layout {
	if l == nil {
		return nil
	}
	out := make(Layout, len(l))
	copy(out, l)
	return out
}

// Index returns the position of id in l, or -1.
func (l Layout) Index(id string) int {
	for i, p := range l {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the placement with the given id.
func (l Layout) Find(id string) (Placement, bool) {
	if i := l.Index(id); i >= 0 {
		return l[i], true
	}
	return Placement{}, false
}

// IDs returns the widget ids in layout order.
func (l Layout) IDs() []string {
	ids := make([]string, len(l))
	for i, p := range l {
		ids[i] = p.ID
	}
	return ids
}

// Bottom returns the number of rows the layout occupies.
func (l Layout) Bottom() int {
	bottom := 0
	for _, p := range l {
		if b := p.Bottom(); b > bottom {
			bottom = b
		}
	}
	return bottom
}

// Without returns a copy of l with the placement id removed.
func (l Layout) Without(id string) Layout {
	out := make(Layout, 0, len(l))
	for _, p := range l {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// Equal reports whether both layouts hold the same placements in the same order.
func (l Layout) Equal(other Layout) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

func (l Layout) String() string {
	parts := make([]string, len(l))
	for i, p := range l {
		parts[i] = p.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// sortedIndices returns indices of l ordered by (y asc, x asc), falling back
// to layout order for equal positions.
func sortedIndices(l Layout) []int {
	idx := make([]int, len(l))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		pa, pb := l[idx[a]], l[idx[b]]
		if pa.Y != pb.Y {
			return pa.Y < pb.Y
		}
		return pa.X < pb.X
	})
	return idx
}

// SortByPosition returns a copy of l ordered by (y asc, x asc).
func SortByPosition(l Layout) Layout {
	out := make(Layout, 0, len(l))
	for _, i := range sortedIndices(l) {
		out = append(out, l[i])
	}
	return out
}

// validate checks the structural well-formedness the engine relies on.
func validate(op string, l Layout, cfg geometry.GridConfig) error {
	if err := cfg.Validate(); err != nil {
		return &ArgumentError{Op: op, Field: "config", Err: err}
	}
	seen := make(map[string]struct{}, len(l))
	for _, p := range l {
		if p.ID == "" {
			return InvalidArgument(op, "layout", "placement with empty id")
		}
		if _, dup := seen[p.ID]; dup {
			return InvalidArgument(op, "layout", "duplicate id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.W < 1 || p.H < 1 {
			return InvalidArgument(op, "layout", "%s: size must be at least 1x1", p)
		}
	}
	return nil
}
