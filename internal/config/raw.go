package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// UnmarshalTOML accepts the same two shapes as UnmarshalYAML.
func (l *IncludeList) UnmarshalTOML(value any) error {
	switch v := value.(type) {
	case string:
		*l = []string{v}
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, s)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawGrid struct {
	Columns     *int `yaml:"columns" toml:"columns"`
	RowHeightPx *int `yaml:"row_height_px" toml:"row_height_px"`
	GapPx       *int `yaml:"gap_px" toml:"gap_px"`
}

type RawWidgetSize struct {
	W *int `yaml:"w" toml:"w"`
	H *int `yaml:"h" toml:"h"`
}

type RawJournalConfig struct {
	Enabled   *bool   `yaml:"enabled" toml:"enabled"`
	Level     *string `yaml:"level" toml:"level"`
	File      *string `yaml:"file" toml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files" toml:"max_files"`
}

type RawRedisConfig struct {
	Addr      *string `yaml:"addr" toml:"addr"`
	Password  *string `yaml:"password" toml:"password"`
	DB        *int    `yaml:"db" toml:"db"`
	KeyPrefix *string `yaml:"key_prefix" toml:"key_prefix"`
}

type RawMongoConfig struct {
	URI        *string `yaml:"uri" toml:"uri"`
	Database   *string `yaml:"database" toml:"database"`
	Collection *string `yaml:"collection" toml:"collection"`
}

type RawStorageConfig struct {
	Backend *StorageBackend `yaml:"backend" toml:"backend"`
	Dir     *string         `yaml:"dir" toml:"dir"`
	Redis   *RawRedisConfig `yaml:"redis" toml:"redis"`
	Mongo   *RawMongoConfig `yaml:"mongo" toml:"mongo"`
}

type RawHTTPConfig struct {
	Listen *string `yaml:"listen" toml:"listen"`
}

// RawConfig is one config file as written: nil fields were not set and
// leave the value from earlier files (or the defaults) in place.
type RawConfig struct {
	Include          IncludeList       `yaml:"include" toml:"include"`
	Grid             *RawGrid          `yaml:"grid" toml:"grid"`
	ContainerWidthPx *int              `yaml:"container_width_px" toml:"container_width_px"`
	DefaultWidget    *RawWidgetSize    `yaml:"default_widget" toml:"default_widget"`
	DefaultBoard     *string           `yaml:"default_board" toml:"default_board"`
	LogLevel         *string           `yaml:"log_level" toml:"log_level"`
	Journal          *RawJournalConfig `yaml:"journal" toml:"journal"`
	Storage          *RawStorageConfig `yaml:"storage" toml:"storage"`
	HTTP             *RawHTTPConfig    `yaml:"http" toml:"http"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Grid != nil {
		base := RawGrid{}
		if out.Grid != nil {
			base = *out.Grid
		}
		merged := mergeRawGrid(base, *overlay.Grid)
		out.Grid = &merged
	}
	if overlay.ContainerWidthPx != nil {
		out.ContainerWidthPx = overlay.ContainerWidthPx
	}
	if overlay.DefaultWidget != nil {
		base := RawWidgetSize{}
		if out.DefaultWidget != nil {
			base = *out.DefaultWidget
		}
		if overlay.DefaultWidget.W != nil {
			base.W = overlay.DefaultWidget.W
		}
		if overlay.DefaultWidget.H != nil {
			base.H = overlay.DefaultWidget.H
		}
		out.DefaultWidget = &base
	}
	if overlay.DefaultBoard != nil {
		out.DefaultBoard = overlay.DefaultBoard
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Journal != nil {
		base := RawJournalConfig{}
		if out.Journal != nil {
			base = *out.Journal
		}
		merged := mergeRawJournal(base, *overlay.Journal)
		out.Journal = &merged
	}
	if overlay.Storage != nil {
		base := RawStorageConfig{}
		if out.Storage != nil {
			base = *out.Storage
		}
		merged := mergeRawStorage(base, *overlay.Storage)
		out.Storage = &merged
	}
	if overlay.HTTP != nil {
		base := RawHTTPConfig{}
		if out.HTTP != nil {
			base = *out.HTTP
		}
		if overlay.HTTP.Listen != nil {
			base.Listen = overlay.HTTP.Listen
		}
		out.HTTP = &base
	}

	return out
}

func mergeRawGrid(base RawGrid, overlay RawGrid) RawGrid {
	out := base
	if overlay.Columns != nil {
		out.Columns = overlay.Columns
	}
	if overlay.RowHeightPx != nil {
		out.RowHeightPx = overlay.RowHeightPx
	}
	if overlay.GapPx != nil {
		out.GapPx = overlay.GapPx
	}
	return out
}

func mergeRawJournal(base RawJournalConfig, overlay RawJournalConfig) RawJournalConfig {
	out := base
	if overlay.Enabled != nil {
		out.Enabled = overlay.Enabled
	}
	if overlay.Level != nil {
		out.Level = overlay.Level
	}
	if overlay.File != nil {
		out.File = overlay.File
	}
	if overlay.MaxSizeMB != nil {
		out.MaxSizeMB = overlay.MaxSizeMB
	}
	if overlay.MaxFiles != nil {
		out.MaxFiles = overlay.MaxFiles
	}
	return out
}

func mergeRawStorage(base RawStorageConfig, overlay RawStorageConfig) RawStorageConfig {
	out := base
	if overlay.Backend != nil {
		out.Backend = overlay.Backend
	}
	if overlay.Dir != nil {
		out.Dir = overlay.Dir
	}
	if overlay.Redis != nil {
		r := RawRedisConfig{}
		if out.Redis != nil {
			r = *out.Redis
		}
		if overlay.Redis.Addr != nil {
			r.Addr = overlay.Redis.Addr
		}
		if overlay.Redis.Password != nil {
			r.Password = overlay.Redis.Password
		}
		if overlay.Redis.DB != nil {
			r.DB = overlay.Redis.DB
		}
		if overlay.Redis.KeyPrefix != nil {
			r.KeyPrefix = overlay.Redis.KeyPrefix
		}
		out.Redis = &r
	}
	if overlay.Mongo != nil {
		m := RawMongoConfig{}
		if out.Mongo != nil {
			m = *out.Mongo
		}
		if overlay.Mongo.URI != nil {
			m.URI = overlay.Mongo.URI
		}
		if overlay.Mongo.Database != nil {
			m.Database = overlay.Mongo.Database
		}
		if overlay.Mongo.Collection != nil {
			m.Collection = overlay.Mongo.Collection
		}
		out.Mongo = &m
	}
	return out
}
