// Package board holds named widget boards: the committed layout plus the
// grid it is laid out on, and the Surface that serialises edits to it.
package board

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/grid"
)

// ErrNotFound is returned by a Store for a board it does not hold.
var ErrNotFound = errors.New("board not found")

// Board is the persisted form of one layout.
type Board struct {
	Name             string              `json:"name" bson:"_id"`
	Grid             geometry.GridConfig `json:"grid" bson:"grid"`
	ContainerWidthPx int                 `json:"container_width_px" bson:"container_width_px"`
	Widgets          grid.Layout         `json:"widgets" bson:"widgets"`
	UpdatedAt        time.Time           `json:"updated_at" bson:"updated_at"`
}

// Store persists boards by name.
type Store interface {
	Load(ctx context.Context, name string) (*Board, error)
	Save(ctx context.Context, b *Board) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Clone returns a deep copy.
func (b Board) Clone() Board {
	b.Widgets = b.Widgets.Clone()
	return b
}

// Rows returns the number of grid rows the widgets occupy.
func (b Board) Rows() int { return b.Widgets.Bottom() }

// HeightPx returns the pixel height needed to render the board.
func (b Board) HeightPx() int { return geometry.ContainerHeightPx(b.Rows(), b.Grid) }

// WidgetRect returns the pixel rectangle of a placement on this board.
func (b Board) WidgetRect(p grid.Placement) geometry.Rect {
	return geometry.CellRect(p.X, p.Y, p.W, p.H, b.Grid, b.ContainerWidthPx)
}

// Validate checks the board name, grid and widget list. It does not require
// the widgets to be settled.
func (b *Board) Validate() error {
	if b == nil {
		return fmt.Errorf("board is nil")
	}
	if err := ValidateName(b.Name); err != nil {
		return err
	}
	if err := b.Grid.Validate(); err != nil {
		return fmt.Errorf("board %q: grid: %w", b.Name, err)
	}
	if b.ContainerWidthPx <= 0 {
		return fmt.Errorf("board %q: container_width_px must be > 0", b.Name)
	}
	if _, err := grid.Settle(b.Widgets, b.Grid); err != nil {
		return fmt.Errorf("board %q: %w", b.Name, err)
	}
	return nil
}

// ValidateName rejects names that are empty or that could escape a storage
// directory.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("board name is required")
	}
	if strings.Contains(name, string(os.PathSeparator)) || name != filepath.Base(name) {
		return fmt.Errorf("invalid board name %q", name)
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return fmt.Errorf("invalid board name %q", name)
	}
	return nil
}

// New returns an empty board.
func New(name string, cfg geometry.GridConfig, containerWidthPx int) *Board {
	return &Board{
		Name:             name,
		Grid:             cfg,
		ContainerWidthPx: containerWidthPx,
		Widgets:          grid.Layout{},
	}
}
