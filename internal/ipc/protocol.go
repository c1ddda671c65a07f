package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/session"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandListBoards   CommandType = "LIST_BOARDS"
	CommandGetBoard     CommandType = "GET_BOARD"
	CommandDeleteBoard  CommandType = "DELETE_BOARD"
	CommandAddWidget    CommandType = "ADD_WIDGET"
	CommandRemoveWidget CommandType = "REMOVE_WIDGET"
	CommandMoveWidget   CommandType = "MOVE_WIDGET"
	CommandResizeWidget CommandType = "RESIZE_WIDGET"
	CommandKey          CommandType = "KEY_COMMAND"
	CommandEvent        CommandType = "EVENT"
	CommandSetGrid      CommandType = "SET_GRID"
	CommandSaveBoard    CommandType = "SAVE_BOARD"
)

// Error codes carried in Response.Code so clients can rebuild sentinel errors.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeNotFound        = "not_found"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   string          `json:"code,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Boards        []string `json:"boards"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	PID           int      `json:"pid"`
	DaemonRunning bool     `json:"daemon_running"`
}

type BoardsData struct {
	Boards []string `json:"boards"`
}

type BoardPayload struct {
	Board string `json:"board"`
}

type AddWidgetPayload struct {
	Board  string           `json:"board"`
	Widget board.WidgetSpec `json:"widget"`
}

type WidgetPayload struct {
	Board string `json:"board"`
	ID    string `json:"id"`
}

// MoveWidgetPayload carries absolute grid coordinates.
type MoveWidgetPayload struct {
	Board string `json:"board"`
	ID    string `json:"id"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

type ResizeWidgetPayload struct {
	Board string `json:"board"`
	ID    string `json:"id"`
	W     int    `json:"w"`
	H     int    `json:"h"`
}

type KeyPayload struct {
	Board     string            `json:"board"`
	ID        string            `json:"id"`
	Direction session.Direction `json:"direction"`
	Resize    bool              `json:"resize,omitempty"`
}

type EventPayload struct {
	Board string        `json:"board"`
	Event session.Event `json:"event"`
}

type SetGridPayload struct {
	Board            string              `json:"board"`
	Grid             geometry.GridConfig `json:"grid"`
	ContainerWidthPx int                 `json:"container_width_px"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
