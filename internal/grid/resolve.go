package grid

import (
	"github.com/1broseidon/gridtile/internal/geometry"
)

// Resolve corrects a layout after the placement changedID was tentatively
// moved or resized by the caller.
//
// The changed placement is clamped into the column range, then pushed down
// past everything it overlaps (other placements never move sideways and are
// never evicted), and finally every placement falls upward as far as it can.
// The returned Layout has the same ids in the same order as the input.
//
// Every placement other than changedID must already be in bounds and free of
// overlaps; arbitrary layouts go through Settle.
func Resolve(layout Layout, changedID string, cfg geometry.GridConfig) (Layout, error) {
	const op = "resolve"

	if err := validate(op, layout, cfg); err != nil {
		return nil, err
	}
	if len(layout) == 0 {
		return layout.Clone(), nil
	}

	out := layout.Clone()
	changed := out.Index(changedID)
	if changed < 0 {
		return nil, InvalidArgument(op, "changedID", "widget %q not in layout", changedID)
	}
	if err := checkOthers(op, out, changed, cfg.Columns); err != nil {
		return nil, err
	}

	if out[changed].Y < 0 {
		out[changed].Y = 0
	}
	// Clamping before the push-down keeps the clamp from sliding the widget
	// back into something it was already pushed past.
	clampX(&out[changed], cfg.Columns)
	pushDown(out, changed)
	clampX(&out[changed], cfg.Columns)
	compact(out)

	return out, nil
}

// Compact lets every placement fall upward without first moving any of them.
// It is used after a placement is removed from a settled layout.
func Compact(layout Layout, cfg geometry.GridConfig) (Layout, error) {
	const op = "compact"

	if err := validate(op, layout, cfg); err != nil {
		return nil, err
	}
	out := layout.Clone()
	for _, p := range out {
		if p.X < 0 || p.Y < 0 {
			return nil, InvalidArgument(op, "layout", "%s: negative coordinates", p)
		}
	}
	compact(out)
	return out, nil
}

// Settle turns an arbitrary layout (overlapping, out of bounds, or with
// negative coordinates) into a settled one. Placements are committed one at a
// time in (y, x) order; each is clamped and pushed below the ones already
// committed before the whole layout is compacted.
func Settle(layout Layout, cfg geometry.GridConfig) (Layout, error) {
	const op = "settle"

	if err := validate(op, layout, cfg); err != nil {
		return nil, err
	}
	out := layout.Clone()
	for i := range out {
		if out[i].Y < 0 {
			out[i].Y = 0
		}
		clampX(&out[i], cfg.Columns)
	}

	placed := make([]int, 0, len(out))
	for _, i := range sortedIndices(out) {
		for {
			moved := false
			for _, j := range placed {
				if Collides(out[i], out[j]) {
					out[i].Y = out[j].Bottom()
					moved = true
				}
			}
			if !moved {
				break
			}
		}
		placed = append(placed, i)
	}

	compact(out)
	return out, nil
}

// checkOthers rejects a layout whose unchanged placements could not have come
// from a settled layout: negative coordinates, a right edge past the last
// column (unless the placement is wider than the grid and pinned at x=0), or
// two of them overlapping. Such input goes through Settle instead.
func checkOthers(op string, l Layout, changed, columns int) error {
	for i, p := range l {
		if i == changed {
			continue
		}
		if p.X < 0 || p.Y < 0 {
			return InvalidArgument(op, "layout", "%s: negative coordinates; use Settle for unsettled input", p)
		}
		if p.Right() > columns && !(p.W > columns && p.X == 0) {
			return InvalidArgument(op, "layout", "%s: right edge %d exceeds %d columns; use Settle for unsettled input", p, p.Right(), columns)
		}
		for j := i + 1; j < len(l); j++ {
			if j != changed && Collides(p, l[j]) {
				return InvalidArgument(op, "layout", "%s overlaps %s; use Settle for unsettled input", p, l[j])
			}
		}
	}
	return nil
}

// pushDown moves l[changed] straight down until no other placement
// intersects it. Only l[changed] moves; y never decreases, so the loop ends
// after at most len(l) passes.
func pushDown(l Layout, changed int) {
	order := sortedIndices(l)
	for {
		collided := false
		for _, i := range order {
			if i == changed {
				continue
			}
			if Collides(l[changed], l[i]) {
				if b := l[i].Bottom(); b > l[changed].Y {
					l[changed].Y = b
				}
				collided = true
			}
		}
		if !collided {
			return
		}
	}
}

// clampX keeps a placement inside [0, columns). A placement wider than the
// grid is pinned to column 0 and left overflowing.
func clampX(p *Placement, columns int) {
	limit := columns - p.W
	if p.X > limit {
		p.X = limit
	}
	if p.X < 0 {
		p.X = 0
	}
}

// compact pulls every placement up one row at a time, in (y, x) order, until
// it would collide or reaches row 0.
func compact(l Layout) {
	for _, i := range sortedIndices(l) {
		for l[i].Y > 0 {
			candidate := l[i]
			candidate.Y--
			if collidesAny(l, candidate) {
				break
			}
			l[i].Y = candidate.Y
		}
	}
}

func collidesAny(l Layout, p Placement) bool {
	for _, other := range l {
		if Collides(p, other) {
			return true
		}
	}
	return false
}
