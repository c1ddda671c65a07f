package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Grid.Columns != 12 {
		t.Fatalf("expected 12 default columns, got %d", cfg.Grid.Columns)
	}
	if cfg.Storage.Backend != StorageFile {
		t.Fatalf("expected file backend by default, got %q", cfg.Storage.Backend)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.DefaultBoard != "default" {
		t.Fatalf("expected default board, got %q", res.Config.DefaultBoard)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Grid != DefaultConfig().Grid {
		t.Fatalf("expected default grid, got %+v", res.Config.Grid)
	}
}

func TestLoadFromPath_YAMLOverridesAndSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"grid:",
		"  columns: 4",
		"  gap_px: 0",
		"container_width_px: 400",
		"log_level: warning",
		"storage:",
		"  backend: memory",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Grid.Columns != 4 || cfg.Grid.GapPx != 0 {
		t.Fatalf("unexpected grid %+v", cfg.Grid)
	}
	if cfg.Grid.RowHeightPx != 30 {
		t.Fatalf("expected row height to keep its default, got %d", cfg.Grid.RowHeightPx)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected warning to normalize to warn, got %q", cfg.LogLevel)
	}
	if cfg.Storage.Backend != StorageMemory {
		t.Fatalf("expected memory backend, got %q", cfg.Storage.Backend)
	}

	val, src, err := Explain(res, "grid.columns")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 4 {
		t.Fatalf("expected 4, got %v", val)
	}
	if src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("expected file source at line 2, got %+v", src)
	}

	_, src, err = Explain(res, "grid.row_height_px")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("expected default source, got %+v", src)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, strings.Join([]string{
		`default_board = "ops"`,
		``,
		`[grid]`,
		`columns = 6`,
		`row_height_px = 40`,
		``,
		`[storage]`,
		`backend = "redis"`,
		``,
		`[storage.redis]`,
		`addr = "cache:6379"`,
		`db = 2`,
		``,
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.DefaultBoard != "ops" {
		t.Fatalf("expected ops, got %q", cfg.DefaultBoard)
	}
	if cfg.Grid.Columns != 6 || cfg.Grid.RowHeightPx != 40 || cfg.Grid.GapPx != 10 {
		t.Fatalf("unexpected grid %+v", cfg.Grid)
	}
	if cfg.Storage.Redis.Addr != "cache:6379" || cfg.Storage.Redis.DB != 2 {
		t.Fatalf("unexpected redis config %+v", cfg.Storage.Redis)
	}
	if cfg.Storage.Redis.KeyPrefix != "gridtile:board:" {
		t.Fatalf("expected default key prefix, got %q", cfg.Storage.Redis.KeyPrefix)
	}

	_, src, err := Explain(res, "storage.redis.addr")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceFile || !strings.HasSuffix(src.File, "config.toml") {
		t.Fatalf("expected toml file source, got %+v", src)
	}
}

func TestLoadFromPath_UnknownFieldsRejected(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "config.yaml")
	writeFile(t, yamlPath, "grid:\n  colums: 4\n")
	if _, err := LoadFromPath(yamlPath); err == nil {
		t.Fatalf("expected unknown yaml field to fail")
	}

	tomlPath := filepath.Join(dir, "config.toml")
	writeFile(t, tomlPath, "[grid]\ncolums = 4\n")
	if _, err := LoadFromPath(tomlPath); err == nil {
		t.Fatalf("expected unknown toml field to fail")
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "grid:\n  columns: 0\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if verr.Path != "grid.columns" {
		t.Fatalf("expected path grid.columns, got %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("expected line 2, got %d", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), "config.yaml:2:") {
		t.Fatalf("expected file:line in message, got %q", err.Error())
	}
}

func TestLoadFromPath_IncludesMergeInOrder(t *testing.T) {
	dir := t.TempDir()
	incDir := filepath.Join(dir, "conf.d")
	if err := os.MkdirAll(incDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(incDir, "10-grid.yaml"), "grid:\n  columns: 8\n  gap_px: 4\n")
	writeFile(t, filepath.Join(incDir, "20-storage.toml"), "[storage]\nbackend = \"memory\"\n")
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include: conf.d\ngrid:\n  columns: 10\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Grid.Columns != 10 {
		t.Fatalf("expected the including file to win, got %d", res.Config.Grid.Columns)
	}
	if res.Config.Grid.GapPx != 4 {
		t.Fatalf("expected gap from include, got %d", res.Config.Grid.GapPx)
	}
	if res.Config.Storage.Backend != StorageMemory {
		t.Fatalf("expected memory backend from toml include, got %q", res.Config.Storage.Backend)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "include: b.yaml\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "include: a.yaml\n")

	_, err := LoadFromPath(filepath.Join(dir, "a.yaml"))
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero columns", func(c *Config) { c.Grid.Columns = 0 }, "grid.columns"},
		{"zero row height", func(c *Config) { c.Grid.RowHeightPx = 0 }, "grid.row_height_px"},
		{"negative gap", func(c *Config) { c.Grid.GapPx = -1 }, "grid.gap_px"},
		{"zero width", func(c *Config) { c.ContainerWidthPx = 0 }, "container_width_px"},
		{"zero widget", func(c *Config) { c.DefaultWidget.W = 0 }, "default_widget"},
		{"bad board name", func(c *Config) { c.DefaultBoard = "../etc" }, "default_board"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad backend", func(c *Config) { c.Storage.Backend = "s3" }, "storage.backend"},
		{"redis without addr", func(c *Config) {
			c.Storage.Backend = StorageRedis
			c.Storage.Redis.Addr = ""
		}, "storage.redis.addr"},
		{"mongo without uri", func(c *Config) {
			c.Storage.Backend = StorageMongo
			c.Storage.Mongo.URI = ""
		}, "storage.mongo.uri"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Errorf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Grid.Columns = 5
	cfg.HTTP.Listen = "127.0.0.1:8088"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Grid.Columns != 5 || res.Config.HTTP.Listen != "127.0.0.1:8088" {
		t.Fatalf("round trip lost values: %+v", res.Config)
	}
}

func TestGetJournalConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	cfg := DefaultConfig()
	j := cfg.GetJournalConfig()
	if j.File != "/home/tester/.local/share/gridtile/journal.log" {
		t.Fatalf("unexpected journal file %q", j.File)
	}
	if j.MaxSizeMB != 10 || j.MaxFiles != 3 || j.Level != "info" {
		t.Fatalf("unexpected journal defaults %+v", j)
	}
}

func TestBoardsDir(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	cfg := DefaultConfig()
	dir, err := cfg.BoardsDir()
	if err != nil {
		t.Fatalf("boards dir: %v", err)
	}
	if dir != "/home/tester/.config/gridtile/boards" {
		t.Fatalf("unexpected dir %q", dir)
	}

	cfg.Storage.Dir = "~/boards"
	dir, err = cfg.BoardsDir()
	if err != nil {
		t.Fatalf("boards dir: %v", err)
	}
	if dir != "/home/tester/boards" {
		t.Fatalf("unexpected dir %q", dir)
	}
}

func TestExplainPaths_AllResolve(t *testing.T) {
	res := &LoadResult{Config: DefaultConfig(), Sources: map[string]Source{}}
	for _, p := range ExplainPaths() {
		if _, _, err := Explain(res, p); err != nil {
			t.Errorf("explain %s: %v", p, err)
		}
	}
	if _, _, err := Explain(res, "grid.nope"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}
