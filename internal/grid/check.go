package grid

import (
	"fmt"

	"github.com/1broseidon/gridtile/internal/geometry"
)

// Violation describes one broken settled-layout invariant.
type Violation struct {
	Rule   string // "bounds", "overlap" or "gravity"
	ID     string
	Other  string // second widget for overlaps
	Detail string
}

func (v Violation) String() string {
	if v.Other != "" {
		return fmt.Sprintf("%s: %s/%s: %s", v.Rule, v.ID, v.Other, v.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", v.Rule, v.ID, v.Detail)
}

// SettledError is returned by CheckSettled when a layout is not settled.
type SettledError struct {
	Violations []Violation
}

func (e *SettledError) Error() string {
	if len(e.Violations) == 1 {
		return "layout not settled: " + e.Violations[0].String()
	}
	return fmt.Sprintf("layout not settled: %s (and %d more)", e.Violations[0], len(e.Violations)-1)
}

// CheckSettled verifies that a layout is in bounds, overlap free and fully
// compacted. Widgets wider than the grid are accepted at x = 0.
func CheckSettled(layout Layout, cfg geometry.GridConfig) error {
	if err := validate("check", layout, cfg); err != nil {
		return err
	}

	var violations []Violation
	for i, p := range layout {
		switch {
		case p.X < 0 || p.Y < 0:
			violations = append(violations, Violation{Rule: "bounds", ID: p.ID, Detail: "negative coordinate"})
		case p.W > cfg.Columns && p.X != 0:
			violations = append(violations, Violation{Rule: "bounds", ID: p.ID, Detail: "overflowing widget not at x=0"})
		case p.W <= cfg.Columns && p.Right() > cfg.Columns:
			violations = append(violations, Violation{Rule: "bounds", ID: p.ID, Detail: fmt.Sprintf("right edge %d exceeds %d columns", p.Right(), cfg.Columns)})
		}

		for _, q := range layout[i+1:] {
			if Collides(p, q) {
				violations = append(violations, Violation{Rule: "overlap", ID: p.ID, Other: q.ID, Detail: "rectangles intersect"})
			}
		}

		if p.Y > 0 {
			up := p
			up.Y--
			if !collidesAny(layout, up) {
				violations = append(violations, Violation{Rule: "gravity", ID: p.ID, Detail: fmt.Sprintf("can still rise from row %d", p.Y)})
			}
		}
	}

	if len(violations) > 0 {
		return &SettledError{Violations: violations}
	}
	return nil
}
