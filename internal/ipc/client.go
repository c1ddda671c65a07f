package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/grid"
	"github.com/1broseidon/gridtile/internal/runtimepath"
	"github.com/1broseidon/gridtile/internal/session"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// Available reports whether a daemon is accepting connections.
func (c *Client) Available() bool {
	conn, err := net.DialTimeout("unix", c.socketPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		switch resp.Code {
		case CodeInvalidArgument:
			return nil, fmt.Errorf("daemon error: %s: %w", resp.Error, grid.ErrInvalidArgument)
		case CodeNotFound:
			return nil, fmt.Errorf("daemon error: %s: %w", resp.Error, board.ErrNotFound)
		}
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with payload and decodes the response data into out
// when out is non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

func (c *Client) callView(command CommandType, payload any) (*board.View, error) {
	var v board.View
	if err := c.call(command, payload, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetStatus requests daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) ListBoards() ([]string, error) {
	var data BoardsData
	if err := c.call(CommandListBoards, nil, &data); err != nil {
		return nil, err
	}
	return data.Boards, nil
}

func (c *Client) GetBoard(name string) (*board.View, error) {
	return c.callView(CommandGetBoard, BoardPayload{Board: name})
}

func (c *Client) DeleteBoard(name string) error {
	return c.call(CommandDeleteBoard, BoardPayload{Board: name}, nil)
}

func (c *Client) AddWidget(name string, spec board.WidgetSpec) (*board.View, error) {
	return c.callView(CommandAddWidget, AddWidgetPayload{Board: name, Widget: spec})
}

func (c *Client) RemoveWidget(name, id string) (*board.View, error) {
	return c.callView(CommandRemoveWidget, WidgetPayload{Board: name, ID: id})
}

func (c *Client) MoveWidget(name, id string, x, y int) (*board.View, error) {
	return c.callView(CommandMoveWidget, MoveWidgetPayload{Board: name, ID: id, X: x, Y: y})
}

func (c *Client) ResizeWidget(name, id string, w, h int) (*board.View, error) {
	return c.callView(CommandResizeWidget, ResizeWidgetPayload{Board: name, ID: id, W: w, H: h})
}

func (c *Client) KeyCommand(name, id string, dir session.Direction, resize bool) (*board.View, error) {
	return c.callView(CommandKey, KeyPayload{Board: name, ID: id, Direction: dir, Resize: resize})
}

// SendEvent forwards one interaction event to the board's session.
func (c *Client) SendEvent(name string, ev session.Event) (*board.View, error) {
	return c.callView(CommandEvent, EventPayload{Board: name, Event: ev})
}

func (c *Client) SetGrid(name string, cfg geometry.GridConfig, containerWidthPx int) (*board.View, error) {
	return c.callView(CommandSetGrid, SetGridPayload{Board: name, Grid: cfg, ContainerWidthPx: containerWidthPx})
}

func (c *Client) SaveBoard(name string) (*board.View, error) {
	return c.callView(CommandSaveBoard, BoardPayload{Board: name})
}
