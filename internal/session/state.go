package session

import (
	"fmt"
	"strings"

	"github.com/1broseidon/gridtile/internal/geometry"
)

// Phase represents the current phase of an interaction session
type Phase int

const (
	// PhaseIdle means no pointer session is active
	PhaseIdle Phase = iota
	// PhaseDragging means a widget follows the pointer
	PhaseDragging
	// PhaseResizing means a widget's size follows the pointer
	PhaseResizing
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Direction represents an arrow key direction
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// Delta returns the unit grid step for d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// ParseDirection accepts "up", "down", "left", "right" and the vi keys h/j/k/l.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "k":
		return DirUp, nil
	case "down", "j":
		return DirDown, nil
	case "left", "h":
		return DirLeft, nil
	case "right", "l":
		return DirRight, nil
	}
	return 0, fmt.Errorf("unknown direction %q (want up, down, left or right)", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if d < DirUp || d > DirRight {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Mode selects what a pointer session changes.
type Mode string

const (
	ModeDrag   Mode = "drag"
	ModeResize Mode = "resize"
)

// EventKind names one entry of the normalized input stream.
type EventKind string

const (
	EventSessionStart EventKind = "session_start"
	EventPointerMove  EventKind = "pointer_move"
	EventSessionEnd   EventKind = "session_end"
	EventCancel       EventKind = "cancel"
	EventKeyCommand   EventKind = "key_command"
)

// Event is a host input already translated from raw device events. Only the
// fields relevant to Kind are read.
type Event struct {
	Kind      EventKind      `json:"kind"`
	WidgetID  string         `json:"widget_id,omitempty"`
	Mode      Mode           `json:"mode,omitempty"`
	Pointer   geometry.Point `json:"pointer"`
	Direction Direction      `json:"direction"`
	Resize    bool           `json:"resize,omitempty"`
}

func (e Event) String() string {
	switch e.Kind {
	case EventSessionStart:
		return fmt.Sprintf("%s %s %s @%d,%d", e.Kind, e.Mode, e.WidgetID, e.Pointer.X, e.Pointer.Y)
	case EventPointerMove:
		return fmt.Sprintf("%s @%d,%d", e.Kind, e.Pointer.X, e.Pointer.Y)
	case EventKeyCommand:
		if e.Resize {
			return fmt.Sprintf("%s %s resize %s", e.Kind, e.WidgetID, e.Direction)
		}
		return fmt.Sprintf("%s %s %s", e.Kind, e.WidgetID, e.Direction)
	default:
		return string(e.Kind)
	}
}

// state holds the data recorded at session start. It is discarded when the
// session ends.
type state struct {
	phase    Phase
	widgetID string
	offset   geometry.Point // drag: pointer minus widget top-left
	start    geometry.Point // resize: pointer at session start
	startW   int
	startH   int
}

func (s *state) reset() {
	*s = state{}
}
