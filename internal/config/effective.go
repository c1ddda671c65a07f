package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" {
		return fmt.Sprintf("%s: %s: %v", e.Source.File, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies a merged RawConfig on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Grid != nil {
		cfg.Grid.Columns = derefInt(raw.Grid.Columns, cfg.Grid.Columns)
		cfg.Grid.RowHeightPx = derefInt(raw.Grid.RowHeightPx, cfg.Grid.RowHeightPx)
		cfg.Grid.GapPx = derefInt(raw.Grid.GapPx, cfg.Grid.GapPx)
	}
	cfg.ContainerWidthPx = derefInt(raw.ContainerWidthPx, cfg.ContainerWidthPx)
	if raw.DefaultWidget != nil {
		cfg.DefaultWidget.W = derefInt(raw.DefaultWidget.W, cfg.DefaultWidget.W)
		cfg.DefaultWidget.H = derefInt(raw.DefaultWidget.H, cfg.DefaultWidget.H)
	}
	if raw.DefaultBoard != nil {
		cfg.DefaultBoard = *raw.DefaultBoard
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = normalizeLevel(*raw.LogLevel)
	}

	if raw.Journal != nil {
		j := raw.Journal
		if j.Enabled != nil {
			cfg.Journal.Enabled = *j.Enabled
		}
		if j.Level != nil {
			cfg.Journal.Level = normalizeLevel(*j.Level)
		}
		if j.File != nil {
			path, err := expandHome(*j.File)
			if err != nil {
				return nil, &ValidationError{Path: "journal.file", Err: err}
			}
			cfg.Journal.File = path
		}
		cfg.Journal.MaxSizeMB = derefInt(j.MaxSizeMB, cfg.Journal.MaxSizeMB)
		cfg.Journal.MaxFiles = derefInt(j.MaxFiles, cfg.Journal.MaxFiles)
	}

	if raw.Storage != nil {
		s := raw.Storage
		if s.Backend != nil {
			cfg.Storage.Backend = *s.Backend
		}
		if s.Dir != nil {
			cfg.Storage.Dir = *s.Dir
		}
		if s.Redis != nil {
			cfg.Storage.Redis.Addr = derefString(s.Redis.Addr, cfg.Storage.Redis.Addr)
			cfg.Storage.Redis.Password = derefString(s.Redis.Password, cfg.Storage.Redis.Password)
			cfg.Storage.Redis.DB = derefInt(s.Redis.DB, cfg.Storage.Redis.DB)
			cfg.Storage.Redis.KeyPrefix = derefString(s.Redis.KeyPrefix, cfg.Storage.Redis.KeyPrefix)
		}
		if s.Mongo != nil {
			cfg.Storage.Mongo.URI = derefString(s.Mongo.URI, cfg.Storage.Mongo.URI)
			cfg.Storage.Mongo.Database = derefString(s.Mongo.Database, cfg.Storage.Mongo.Database)
			cfg.Storage.Mongo.Collection = derefString(s.Mongo.Collection, cfg.Storage.Mongo.Collection)
		}
	}

	if raw.HTTP != nil && raw.HTTP.Listen != nil {
		cfg.HTTP.Listen = *raw.HTTP.Listen
	}

	return cfg, nil
}

// normalizeLevel accepts "warning" as an alias for "warn".
func normalizeLevel(level string) string {
	if level == "warning" {
		return "warn"
	}
	return level
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefString(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
