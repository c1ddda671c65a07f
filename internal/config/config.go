package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/gridtile/internal/geometry"
)

// WidgetSize is the size given to widgets added without an explicit size.
type WidgetSize struct {
	W int `yaml:"w" toml:"w"`
	H int `yaml:"h" toml:"h"`
}

// JournalConfig configures the interaction journal.
type JournalConfig struct {
	// Enabled turns journaling on/off
	Enabled bool `yaml:"enabled,omitempty" toml:"enabled"`
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty" toml:"level"`
	// File is the journal path (default: ~/.local/share/gridtile/journal.log)
	File string `yaml:"file,omitempty" toml:"file"`
	// MaxSizeMB is the maximum file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty" toml:"max_size_mb"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty" toml:"max_files"`
}

// StorageBackend selects where boards are persisted.
type StorageBackend string

const (
	StorageFile   StorageBackend = "file"
	StorageMemory StorageBackend = "memory"
	StorageRedis  StorageBackend = "redis"
	StorageMongo  StorageBackend = "mongo"
)

type RedisConfig struct {
	Addr      string `yaml:"addr" toml:"addr"`
	Password  string `yaml:"password,omitempty" toml:"password"`
	DB        int    `yaml:"db" toml:"db"`
	KeyPrefix string `yaml:"key_prefix" toml:"key_prefix"`
}

type MongoConfig struct {
	URI        string `yaml:"uri" toml:"uri"`
	Database   string `yaml:"database" toml:"database"`
	Collection string `yaml:"collection" toml:"collection"`
}

type StorageConfig struct {
	Backend StorageBackend `yaml:"backend" toml:"backend"`
	// Dir holds one JSON file per board (file backend only). Empty means
	// ~/.config/gridtile/boards.
	Dir   string      `yaml:"dir,omitempty" toml:"dir"`
	Redis RedisConfig `yaml:"redis" toml:"redis"`
	Mongo MongoConfig `yaml:"mongo" toml:"mongo"`
}

type HTTPConfig struct {
	// Listen is the address for `gridtile daemon --http`; empty disables it.
	Listen string `yaml:"listen,omitempty" toml:"listen"`
}

// Config holds the application configuration.
type Config struct {
	Grid             geometry.GridConfig `yaml:"grid" toml:"grid"`
	ContainerWidthPx int                 `yaml:"container_width_px" toml:"container_width_px"`
	DefaultWidget    WidgetSize          `yaml:"default_widget" toml:"default_widget"`
	DefaultBoard     string              `yaml:"default_board" toml:"default_board"`
	LogLevel         string              `yaml:"log_level" toml:"log_level"`
	Journal          JournalConfig       `yaml:"journal,omitempty" toml:"journal"`
	Storage          StorageConfig       `yaml:"storage" toml:"storage"`
	HTTP             HTTPConfig          `yaml:"http" toml:"http"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid: geometry.GridConfig{
			Columns:     12,
			RowHeightPx: 30,
			GapPx:       10,
		},
		ContainerWidthPx: 1200,
		DefaultWidget:    WidgetSize{W: 2, H: 2},
		DefaultBoard:     "default",
		LogLevel:         "info",
		Storage: StorageConfig{
			Backend: StorageFile,
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "gridtile:board:",
			},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "gridtile",
				Collection: "boards",
			},
		},
	}
}

// GetJournalConfig returns the journal configuration with defaults applied.
func (c *Config) GetJournalConfig() JournalConfig {
	if c == nil {
		return JournalConfig{}
	}
	cfg := c.Journal
	if cfg.File == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv("HOME")
		}
		if home == "" {
			home = "."
		}
		cfg.File = filepath.Join(home, ".local/share/gridtile/journal.log")
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// BoardsDir returns the directory used by the file storage backend.
func (c *Config) BoardsDir() (string, error) {
	if c != nil && c.Storage.Dir != "" {
		return expandHome(c.Storage.Dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gridtile", "boards"), nil
}

// Save writes the configuration to path, or the standard location when path
// is empty.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var boardNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.Grid.Columns <= 0 {
		return &ValidationError{Path: "grid.columns", Err: fmt.Errorf("columns must be > 0")}
	}
	if c.Grid.RowHeightPx <= 0 {
		return &ValidationError{Path: "grid.row_height_px", Err: fmt.Errorf("row_height_px must be > 0")}
	}
	if c.Grid.GapPx < 0 {
		return &ValidationError{Path: "grid.gap_px", Err: fmt.Errorf("gap_px must be >= 0")}
	}
	if c.ContainerWidthPx <= 0 {
		return &ValidationError{Path: "container_width_px", Err: fmt.Errorf("container_width_px must be > 0")}
	}
	if c.DefaultWidget.W < 1 || c.DefaultWidget.H < 1 {
		return &ValidationError{Path: "default_widget", Err: fmt.Errorf("default_widget w and h must be >= 1")}
	}
	if !boardNamePattern.MatchString(c.DefaultBoard) {
		return &ValidationError{Path: "default_board", Err: fmt.Errorf("invalid board name %q", c.DefaultBoard)}
	}
	if !validLevel(c.LogLevel) {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.Journal.Level != "" && !validLevel(c.Journal.Level) {
		return &ValidationError{Path: "journal.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Journal.MaxSizeMB < 0 {
		return &ValidationError{Path: "journal.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Journal.MaxFiles < 0 {
		return &ValidationError{Path: "journal.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}

	switch c.Storage.Backend {
	case StorageFile, StorageMemory:
	case StorageRedis:
		if strings.TrimSpace(c.Storage.Redis.Addr) == "" {
			return &ValidationError{Path: "storage.redis.addr", Err: fmt.Errorf("addr is required for the redis backend")}
		}
		if c.Storage.Redis.DB < 0 {
			return &ValidationError{Path: "storage.redis.db", Err: fmt.Errorf("db must be >= 0")}
		}
	case StorageMongo:
		if strings.TrimSpace(c.Storage.Mongo.URI) == "" {
			return &ValidationError{Path: "storage.mongo.uri", Err: fmt.Errorf("uri is required for the mongo backend")}
		}
		if c.Storage.Mongo.Database == "" || c.Storage.Mongo.Collection == "" {
			return &ValidationError{Path: "storage.mongo", Err: fmt.Errorf("database and collection are required for the mongo backend")}
		}
	default:
		return &ValidationError{Path: "storage.backend", Err: fmt.Errorf("backend must be one of: file, memory, redis, mongo")}
	}

	return nil
}

// ValidBoardName reports whether name can be used as a board name.
func ValidBoardName(name string) bool {
	return boardNamePattern.MatchString(name)
}

func validLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
