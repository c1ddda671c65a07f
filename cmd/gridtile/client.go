package main

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/config"
	"github.com/1broseidon/gridtile/internal/daemon"
	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/ipc"
	"github.com/1broseidon/gridtile/internal/session"
)

// boardClient is the set of board operations the CLI needs. The IPC client
// implements it against a running daemon; localClient against the store.
type boardClient interface {
	ListBoards() ([]string, error)
	GetBoard(name string) (*board.View, error)
	DeleteBoard(name string) error
	AddWidget(name string, spec board.WidgetSpec) (*board.View, error)
	RemoveWidget(name, id string) (*board.View, error)
	MoveWidget(name, id string, x, y int) (*board.View, error)
	ResizeWidget(name, id string, w, h int) (*board.View, error)
	KeyCommand(name, id string, dir session.Direction, resize bool) (*board.View, error)
	SetGrid(name string, cfg geometry.GridConfig, containerWidthPx int) (*board.View, error)
	SaveBoard(name string) (*board.View, error)
}

var _ boardClient = (*ipc.Client)(nil)

// connect prefers the daemon so edits reach everyone watching the board.
// Without one, edits go straight to the store and are saved immediately.
func connect(ctx context.Context, cfg *config.Config, logger *log.Logger) (boardClient, func(), error) {
	if c := ipc.NewClient(); c.Available() {
		logger.Debug("using daemon")
		return c, func() {}, nil
	}
	logger.Debug("no daemon, editing the store directly", "storage", cfg.Storage.Backend)
	env, err := daemon.OpenEnv(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return &localClient{ctx: ctx, reg: env.Registry}, func() { env.Close() }, nil
}

type localClient struct {
	ctx context.Context
	reg *board.Registry
}

func (c *localClient) ListBoards() ([]string, error) { return c.reg.List(c.ctx) }

func (c *localClient) GetBoard(name string) (*board.View, error) {
	s, err := c.reg.Get(c.ctx, name)
	if err != nil {
		return nil, err
	}
	v := s.View()
	return &v, nil
}

func (c *localClient) DeleteBoard(name string) error { return c.reg.Delete(c.ctx, name) }

func (c *localClient) AddWidget(name string, spec board.WidgetSpec) (*board.View, error) {
	return c.edit(name, true, func(s *board.Surface) error {
		_, err := s.AddWidget(spec)
		return err
	})
}

func (c *localClient) RemoveWidget(name, id string) (*board.View, error) {
	return c.edit(name, false, func(s *board.Surface) error { return s.RemoveWidget(id) })
}

func (c *localClient) MoveWidget(name, id string, x, y int) (*board.View, error) {
	return c.edit(name, false, func(s *board.Surface) error { return s.MoveWidget(id, x, y) })
}

func (c *localClient) ResizeWidget(name, id string, w, h int) (*board.View, error) {
	return c.edit(name, false, func(s *board.Surface) error { return s.ResizeWidget(id, w, h) })
}

func (c *localClient) KeyCommand(name, id string, dir session.Direction, resize bool) (*board.View, error) {
	return c.edit(name, false, func(s *board.Surface) error { return s.KeyCommand(id, dir, resize) })
}

func (c *localClient) SetGrid(name string, cfg geometry.GridConfig, containerWidthPx int) (*board.View, error) {
	return c.edit(name, true, func(s *board.Surface) error { return s.SetGrid(cfg, containerWidthPx) })
}

func (c *localClient) SaveBoard(name string) (*board.View, error) {
	return c.edit(name, false, func(*board.Surface) error { return nil })
}

// edit applies fn and saves the board. create allows a new board.
func (c *localClient) edit(name string, create bool, fn func(*board.Surface) error) (*board.View, error) {
	open := c.reg.Get
	if create {
		open = c.reg.Open
	}
	s, err := open(c.ctx, name)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := s.Save(c.ctx); err != nil {
		return nil, err
	}
	v := s.View()
	return &v, nil
}
