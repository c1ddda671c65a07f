package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/grid"
	"github.com/1broseidon/gridtile/internal/runtimepath"
)

const requestTimeout = 10 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	registry     *board.Registry
	logger       *log.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(registry *board.Registry, logger *log.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		registry:   registry,
		logger:     logger.WithPrefix("ipc"),
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("accept error", "err", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection serves one request per connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("read error", "err", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	s.send(conn, s.handleCommand(ctx, req))
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("command", "command", req.Command)

	var (
		data any
		err  error
	)
	switch req.Command {
	case CommandGetStatus:
		data, err = s.handleGetStatus(ctx)
	case CommandListBoards:
		data, err = s.handleListBoards(ctx)
	case CommandGetBoard:
		data, err = s.handleGetBoard(ctx, req.Payload)
	case CommandDeleteBoard:
		err = s.handleDeleteBoard(ctx, req.Payload)
	case CommandAddWidget:
		data, err = s.handleAddWidget(ctx, req.Payload)
	case CommandRemoveWidget:
		data, err = withBoard(s, ctx, req.Payload, func(sf *board.Surface, p WidgetPayload) error {
			return sf.RemoveWidget(p.ID)
		})
	case CommandMoveWidget:
		data, err = withBoard(s, ctx, req.Payload, func(sf *board.Surface, p MoveWidgetPayload) error {
			return sf.MoveWidget(p.ID, p.X, p.Y)
		})
	case CommandResizeWidget:
		data, err = withBoard(s, ctx, req.Payload, func(sf *board.Surface, p ResizeWidgetPayload) error {
			return sf.ResizeWidget(p.ID, p.W, p.H)
		})
	case CommandKey:
		data, err = withBoard(s, ctx, req.Payload, func(sf *board.Surface, p KeyPayload) error {
			return sf.KeyCommand(p.ID, p.Direction, p.Resize)
		})
	case CommandEvent:
		data, err = withBoard(s, ctx, req.Payload, func(sf *board.Surface, p EventPayload) error {
			return sf.Handle(p.Event)
		})
	case CommandSetGrid:
		data, err = s.handleSetGrid(ctx, req.Payload)
	case CommandSaveBoard:
		data, err = withBoard(s, ctx, req.Payload, func(sf *board.Surface, _ BoardPayload) error {
			return sf.Save(ctx)
		})
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}

	if err != nil {
		return errorResponse(err)
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func errorResponse(err error) *Response {
	resp := NewErrorResponse(err.Error())
	switch {
	case grid.IsInvalidArgument(err):
		resp.Code = CodeInvalidArgument
	case errors.Is(err, board.ErrNotFound):
		resp.Code = CodeNotFound
	}
	return resp
}

func (s *Server) handleGetStatus(ctx context.Context) (*StatusData, error) {
	names, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	return &StatusData{
		Boards:        names,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		PID:           os.Getpid(),
		DaemonRunning: true,
	}, nil
}

func (s *Server) handleListBoards(ctx context.Context) (*BoardsData, error) {
	names, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	return &BoardsData{Boards: names}, nil
}

func (s *Server) handleGetBoard(ctx context.Context, payload json.RawMessage) (*board.View, error) {
	var p BoardPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	sf, err := s.registry.Get(ctx, p.Board)
	if err != nil {
		return nil, err
	}
	v := sf.View()
	return &v, nil
}

func (s *Server) handleDeleteBoard(ctx context.Context, payload json.RawMessage) error {
	var p BoardPayload
	if err := decodePayload(payload, &p); err != nil {
		return err
	}
	return s.registry.Delete(ctx, p.Board)
}

// handleAddWidget creates the board on first use.
func (s *Server) handleAddWidget(ctx context.Context, payload json.RawMessage) (*board.View, error) {
	var p AddWidgetPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	sf, err := s.registry.Open(ctx, p.Board)
	if err != nil {
		return nil, err
	}
	if _, err := sf.AddWidget(p.Widget); err != nil {
		return nil, err
	}
	v := sf.View()
	return &v, nil
}

func (s *Server) handleSetGrid(ctx context.Context, payload json.RawMessage) (*board.View, error) {
	var p SetGridPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	sf, err := s.registry.Open(ctx, p.Board)
	if err != nil {
		return nil, err
	}
	if err := sf.SetGrid(p.Grid, p.ContainerWidthPx); err != nil {
		return nil, err
	}
	v := sf.View()
	return &v, nil
}

type boardScoped interface {
	boardName() string
}

func (p BoardPayload) boardName() string { return p.Board }
func (p WidgetPayload) boardName() string { return p.Board }
func (p MoveWidgetPayload) boardName() string { return p.Board }
func (p ResizeWidgetPayload) boardName() string { return p.Board }
func (p KeyPayload) boardName() string { return p.Board }
func (p EventPayload) boardName() string { return p.Board }

// withBoard decodes a payload, applies fn to the existing board it names and
// returns the resulting view.
func withBoard[P boardScoped](s *Server, ctx context.Context, payload json.RawMessage, fn func(*board.Surface, P) error) (*board.View, error) {
	var p P
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	sf, err := s.registry.Get(ctx, p.boardName())
	if err != nil {
		return nil, err
	}
	if err := fn(sf, p); err != nil {
		return nil, err
	}
	v := sf.View()
	return &v, nil
}

func decodePayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return grid.InvalidArgument("ipc", "payload", "missing payload")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return grid.InvalidArgument("ipc", "payload", "%v", err)
	}
	return nil
}

func (s *Server) send(conn net.Conn, resp *Response) {
	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "err", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "err", err)
	}
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
