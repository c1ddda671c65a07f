package config

import (
	"fmt"
	"sort"
)

var explainPaths = map[string]func(*Config) any{
	"grid":                     func(c *Config) any { return c.Grid },
	"grid.columns":             func(c *Config) any { return c.Grid.Columns },
	"grid.row_height_px":       func(c *Config) any { return c.Grid.RowHeightPx },
	"grid.gap_px":              func(c *Config) any { return c.Grid.GapPx },
	"container_width_px":       func(c *Config) any { return c.ContainerWidthPx },
	"default_widget":           func(c *Config) any { return c.DefaultWidget },
	"default_widget.w":         func(c *Config) any { return c.DefaultWidget.W },
	"default_widget.h":         func(c *Config) any { return c.DefaultWidget.H },
	"default_board":            func(c *Config) any { return c.DefaultBoard },
	"log_level":                func(c *Config) any { return c.LogLevel },
	"journal":                  func(c *Config) any { return c.GetJournalConfig() },
	"journal.enabled":          func(c *Config) any { return c.Journal.Enabled },
	"journal.level":            func(c *Config) any { return c.GetJournalConfig().Level },
	"journal.file":             func(c *Config) any { return c.GetJournalConfig().File },
	"journal.max_size_mb":      func(c *Config) any { return c.GetJournalConfig().MaxSizeMB },
	"journal.max_files":        func(c *Config) any { return c.GetJournalConfig().MaxFiles },
	"storage":                  func(c *Config) any { return c.Storage },
	"storage.backend":          func(c *Config) any { return c.Storage.Backend },
	"storage.dir":              func(c *Config) any { d, _ := c.BoardsDir(); return d },
	"storage.redis.addr":       func(c *Config) any { return c.Storage.Redis.Addr },
	"storage.redis.db":         func(c *Config) any { return c.Storage.Redis.DB },
	"storage.redis.key_prefix": func(c *Config) any { return c.Storage.Redis.KeyPrefix },
	"storage.mongo.uri":        func(c *Config) any { return c.Storage.Mongo.URI },
	"storage.mongo.database":   func(c *Config) any { return c.Storage.Mongo.Database },
	"storage.mongo.collection": func(c *Config) any { return c.Storage.Mongo.Collection },
	"http.listen":              func(c *Config) any { return c.HTTP.Listen },
}

// Explain returns the effective value at the given dotted key path and the
// file (or default) it came from. ExplainPaths lists the supported paths.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	lookup, ok := explainPaths[path]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown path: %s", path)
	}
	value := lookup(res.Config)

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

// ExplainPaths returns every path Explain understands, sorted.
func ExplainPaths() []string {
	out := make([]string, 0, len(explainPaths))
	for p := range explainPaths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
