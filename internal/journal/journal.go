// Package journal records board interactions to a size-rotated logfmt file.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

// Action is the type of board interaction being recorded.
type Action string

const (
	ActionDragStart    Action = "DRAG-START"
	ActionResizeStart  Action = "RESIZE-START"
	ActionPointerMove  Action = "POINTER-MOVE"
	ActionSessionEnd   Action = "SESSION-END"
	ActionKey          Action = "KEY"
	ActionWidgetAdd    Action = "WIDGET-ADD"
	ActionWidgetRemove Action = "WIDGET-REMOVE"
	ActionWidgetEdit   Action = "WIDGET-EDIT"
	ActionBoardSave    Action = "BOARD-SAVE"
	ActionGridSet      Action = "GRID-SET"
	ActionRejected     Action = "REJECTED"
)

// actionLevel returns the log level for an action.
func actionLevel(action Action) log.Level {
	switch action {
	case ActionPointerMove:
		return log.DebugLevel
	case ActionRejected:
		return log.WarnLevel
	default:
		return log.InfoLevel
	}
}

// Config holds configuration for the journal.
type Config struct {
	Enabled   bool
	Level     log.Level
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
}

// Journal writes one logfmt line per recorded action. A nil or disabled
// Journal drops everything.
type Journal struct {
	config Config
	file   *rotatingFile
	logger *log.Logger
}

// New opens (or creates) the journal file.
func New(cfg Config) (*Journal, error) {
	if !cfg.Enabled {
		return &Journal{config: cfg}, nil
	}

	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory %s: %w", dir, err)
	}

	f, err := openRotating(cfg.FilePath, int64(cfg.MaxSizeMB)*1024*1024, cfg.MaxFiles)
	if err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Level:           cfg.Level,
		Formatter:       log.LogfmtFormatter,
	})
	return &Journal{config: cfg, file: f, logger: logger}, nil
}

// Record writes action for board with optional key/value details.
func (j *Journal) Record(action Action, board string, keyvals ...any) {
	if j == nil || j.logger == nil {
		return
	}
	kv := make([]any, 0, len(keyvals)+2)
	if board != "" {
		kv = append(kv, "board", board)
	}
	kv = append(kv, keyvals...)
	j.logger.Log(actionLevel(action), string(action), kv...)
}

// Close closes the journal file.
func (j *Journal) Close() error {
	if j == nil || j.file == nil {
		return nil
	}
	return j.file.Close()
}

// ParseLevel converts a config level string, defaulting to info.
func ParseLevel(s string) log.Level {
	if s == "warning" {
		s = "warn"
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// rotatingFile is an io.Writer that renames the file to .1, .2, ... once it
// grows past maxBytes, keeping at most maxFiles rotated copies.
type rotatingFile struct {
	mu          sync.Mutex
	path        string
	maxBytes    int64
	maxFiles    int
	file        *os.File
	currentSize int64
}

func openRotating(path string, maxBytes int64, maxFiles int) (*rotatingFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file %s: %w", path, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat journal file: %w", err)
	}
	return &rotatingFile{
		path:        path,
		maxBytes:    maxBytes,
		maxFiles:    maxFiles,
		file:        f,
		currentSize: stat.Size(),
	}, nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, os.ErrClosed
	}
	if r.maxBytes > 0 && r.currentSize >= r.maxBytes {
		if err := r.rotate(); err != nil {
			// Keep writing to whatever is open.
			fmt.Fprintf(os.Stderr, "journal rotation failed: %v\n", err)
		}
		if r.file == nil {
			return 0, os.ErrClosed
		}
	}

	n, err := r.file.Write(p)
	r.currentSize += int64(n)
	return n, err
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// rotate shifts journal.log -> journal.log.1 -> journal.log.2 ..., dropping
// the oldest copy.
func (r *rotatingFile) rotate() error {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}

	for i := r.maxFiles; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.path, i)
		if i == r.maxFiles {
			os.Remove(oldPath)
		} else {
			os.Rename(oldPath, fmt.Sprintf("%s.%d", r.path, i+1))
		}
	}

	if r.maxFiles > 0 {
		if err := os.Rename(r.path, r.path+".1"); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to rotate journal file: %w", err)
		}
	} else if err := os.Truncate(r.path, 0); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to truncate journal file: %w", err)
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open new journal file: %w", err)
	}
	r.file = f
	r.currentSize = 0
	return nil
}
