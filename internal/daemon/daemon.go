// Package daemon runs the long-lived gridtile process: the IPC server, an
// optional HTTP API and the autosaver, all sharing one board registry.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/config"
	"github.com/1broseidon/gridtile/internal/httpapi"
	"github.com/1broseidon/gridtile/internal/ipc"
	"github.com/1broseidon/gridtile/internal/journal"
	"github.com/1broseidon/gridtile/internal/runtimepath"
	"github.com/1broseidon/gridtile/internal/store"
)

// ErrAlreadyRunning is returned by Run when another daemon owns the socket.
var ErrAlreadyRunning = errors.New("gridtile daemon is already running")

// Env is a registry together with the store and journal behind it.
type Env struct {
	Registry *board.Registry
	store    board.Store
	journal  *journal.Journal
}

// OpenEnv opens the configured store and journal and builds a registry over
// them.
func OpenEnv(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Env, error) {
	if logger == nil {
		logger = log.Default()
	}
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}

	jc := cfg.GetJournalConfig()
	j, err := journal.New(journal.Config{
		Enabled:   jc.Enabled,
		Level:     journal.ParseLevel(jc.Level),
		FilePath:  jc.File,
		MaxSizeMB: jc.MaxSizeMB,
		MaxFiles:  jc.MaxFiles,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	reg := board.NewRegistry(st, board.RegistryOptions{
		Surface: board.Options{
			Journal:  j,
			Logger:   logger,
			DefaultW: cfg.DefaultWidget.W,
			DefaultH: cfg.DefaultWidget.H,
		},
		Grid:             cfg.Grid,
		ContainerWidthPx: cfg.ContainerWidthPx,
	})
	return &Env{Registry: reg, store: st, journal: j}, nil
}

// Close releases the journal and the store. It does not save.
func (e *Env) Close() error {
	return errors.Join(e.journal.Close(), e.store.Close())
}

// Options configure Run.
type Options struct {
	// HTTPAddr enables the HTTP API when non-empty.
	HTTPAddr     string
	SaveInterval time.Duration
	// PIDPath defaults to runtimepath.PIDPath().
	PIDPath string
}

// Run serves the registry until ctx is cancelled. Dirty boards are saved
// periodically and once more on the way out.
func Run(ctx context.Context, env *Env, opts Options, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	if ipc.NewClient().Available() {
		return ErrAlreadyRunning
	}

	pidPath := opts.PIDPath
	if pidPath == "" {
		p, err := runtimepath.PIDPath()
		if err != nil {
			return err
		}
		pidPath = p
	}
	if err := writePID(pidPath); err != nil {
		return err
	}
	defer os.Remove(pidPath)

	server, err := ipc.NewServer(env.Registry, logger)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The autosaver outlives ctx so its final flush runs after every
	// front end has stopped taking edits.
	saveCtx, stopSaver := context.WithCancel(context.WithoutCancel(ctx))
	defer stopSaver()

	var saverWG sync.WaitGroup
	saver := NewAutosaver(AutosaverConfig{Interval: opts.SaveInterval, Logger: logger}, env.Registry)
	saverWG.Add(1)
	go func() {
		defer saverWG.Done()
		saver.Run(saveCtx)
	}()

	var httpWG sync.WaitGroup
	errCh := make(chan error, 1)
	if opts.HTTPAddr != "" {
		api := httpapi.New(env.Registry, logger)
		httpWG.Add(1)
		go func() {
			defer httpWG.Done()
			err := api.ListenAndServe(ctx, opts.HTTPAddr)
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			errCh <- err
		}()
	}

	logger.Info("daemon started", "pid", os.Getpid(), "socket", server.SocketPath())

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		if runErr != nil {
			runErr = fmt.Errorf("http api: %w", runErr)
		}
	}

	cancel()
	httpWG.Wait()
	server.Stop()
	stopSaver()
	saverWG.Wait()
	logger.Info("daemon stopped")
	return runErr
}

func writePID(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

// ReadPID returns the pid recorded by a running daemon.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, fmt.Errorf("malformed pid file %s: %w", path, err)
	}
	return pid, nil
}
