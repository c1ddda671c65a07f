package geometry

import (
	"testing"
)

func TestCellWidthPx(t *testing.T) {
	cfg := GridConfig{Columns: 4, RowHeightPx: 30, GapPx: 10}

	tests := []struct {
		name      string
		cfg       GridConfig
		container int
		want      int
	}{
		// (430 - 3*10) / 4 = 100
		{"exact fit", cfg, 430, 100},
		// (433 - 30) / 4 = 100.75 -> 100
		{"floors fractional width", cfg, 433, 100},
		{"no gap", GridConfig{Columns: 3, RowHeightPx: 10}, 300, 100},
		{"zero container", cfg, 0, MinCellWidthPx},
		{"negative container", cfg, -50, MinCellWidthPx},
		{"gaps eat everything", cfg, 30, MinCellWidthPx},
		{"zero columns", GridConfig{Columns: 0, RowHeightPx: 10}, 300, MinCellWidthPx},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CellWidthPx(tt.cfg, tt.container)
			if got != tt.want {
				t.Errorf("CellWidthPx(%+v, %d) = %d, want %d", tt.cfg, tt.container, got, tt.want)
			}
		})
	}
}

func TestGridToPixel(t *testing.T) {
	cfg := GridConfig{Columns: 4, RowHeightPx: 30, GapPx: 10}

	if got := GridToPixelX(2, cfg, 430); got != 220 {
		t.Fatalf("GridToPixelX(2) = %d, want 220", got)
	}
	if got := GridToPixelY(3, cfg); got != 120 {
		t.Fatalf("GridToPixelY(3) = %d, want 120", got)
	}
	if got := GridToPixelX(0, cfg, 430); got != 0 {
		t.Fatalf("GridToPixelX(0) = %d, want 0", got)
	}
}

func TestPixelToGrid_RoundsToNearestCell(t *testing.T) {
	tests := []struct {
		px    int
		pitch int
		want  int
	}{
		{0, 110, 0},
		{54, 110, 0},
		{55, 110, 1}, // half rounds away from zero
		{164, 110, 1},
		{166, 110, 2},
		{-80, 110, 0}, // never negative
		{500, 0, 0},   // degenerate pitch
	}

	for _, tt := range tests {
		got := PixelToGrid(tt.px, tt.pitch)
		if got != tt.want {
			t.Errorf("PixelToGrid(%d, %d) = %d, want %d", tt.px, tt.pitch, got, tt.want)
		}
	}
}

func TestPixelSizeToGridUnits_FloorOfOne(t *testing.T) {
	if got := PixelSizeToGridUnits(10, 110); got != 1 {
		t.Fatalf("expected minimum of 1, got %d", got)
	}
	if got := PixelSizeToGridUnits(-300, 110); got != 1 {
		t.Fatalf("expected minimum of 1 for negative extent, got %d", got)
	}
	if got := PixelSizeToGridUnits(330, 110); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestPixelDeltaToGrid_Signed(t *testing.T) {
	if got := PixelDeltaToGrid(-120, 110); got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}
	if got := PixelDeltaToGrid(230, 110); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := PixelDeltaToGrid(40, 110); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestConversionRoundTrip(t *testing.T) {
	cfgs := []GridConfig{
		{Columns: 12, RowHeightPx: 30, GapPx: 10},
		{Columns: 4, RowHeightPx: 100, GapPx: 0},
		{Columns: 7, RowHeightPx: 13, GapPx: 3},
	}
	for _, cfg := range cfgs {
		const width = 1280
		colPitch := ColumnPitchPx(cfg, width)
		rowPitch := RowPitchPx(cfg)
		for coord := 0; coord < cfg.Columns; coord++ {
			if got := PixelToGrid(GridToPixelX(coord, cfg, width), colPitch); got != coord {
				t.Errorf("cfg=%+v x round trip %d -> %d", cfg, coord, got)
			}
		}
		for coord := 0; coord < 50; coord++ {
			if got := PixelToGrid(GridToPixelY(coord, cfg), rowPitch); got != coord {
				t.Errorf("cfg=%+v y round trip %d -> %d", cfg, coord, got)
			}
		}
	}
}

func TestCellRect(t *testing.T) {
	cfg := GridConfig{Columns: 4, RowHeightPx: 30, GapPx: 10}
	r := CellRect(1, 2, 2, 3, cfg, 430)
	want := Rect{X: 110, Y: 80, Width: 210, Height: 110}
	if r != want {
		t.Fatalf("CellRect = %+v, want %+v", r, want)
	}
}

func TestGridConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     GridConfig
		wantErr bool
	}{
		{"valid", GridConfig{Columns: 12, RowHeightPx: 30, GapPx: 10}, false},
		{"zero gap ok", GridConfig{Columns: 1, RowHeightPx: 1}, false},
		{"zero columns", GridConfig{Columns: 0, RowHeightPx: 30}, true},
		{"negative row height", GridConfig{Columns: 4, RowHeightPx: -1}, true},
		{"negative gap", GridConfig{Columns: 4, RowHeightPx: 30, GapPx: -2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
