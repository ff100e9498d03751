package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")

	cfg := Default()
	if cfg.Layout != layout.DefaultConfig() {
		t.Errorf("Layout = %+v, want defaults", cfg.Layout)
	}
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, CacheFile)
	}
	if cfg.Cache.Dir != filepath.Join("/tmp/cache", AppName) {
		t.Errorf("Cache.Dir = %q", cfg.Cache.Dir)
	}
	if cfg.Store.Backend != StoreSQLite {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, StoreSQLite)
	}
	if want := filepath.Join("/tmp/data", AppName, "charts.db"); cfg.Store.SQLitePath != want {
		t.Errorf("Store.SQLitePath = %q, want %q", cfg.Store.SQLitePath, want)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
[layout]
vertical_spacing = 300
group_gap = 150

[cache]
backend = "redis"

[store]
backend = "mongo"
mongo_database = "genealogy"

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
	if cfg.Layout.VerticalSpacing != 300 || cfg.Layout.GroupGap != 150 {
		t.Errorf("Layout overrides not applied: %+v", cfg.Layout)
	}
	if cfg.Layout.CardWidth != layout.DefaultCardWidth {
		t.Errorf("CardWidth = %v, want default", cfg.Layout.CardWidth)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want default", cfg.Cache.RedisAddr)
	}
	if cfg.Store.MongoURI != "mongodb://localhost:27017" || cfg.Store.MongoDatabase != "genealogy" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "[layout\n", errors.ErrCodeInvalidConfig},
		{"unknown key", "[layout]\ncard_height = 10\n", errors.ErrCodeInvalidConfig},
		{"bad cache backend", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidConfig},
		{"bad store backend", "[store]\nbackend = \"postgres\"\n", errors.ErrCodeInvalidConfig},
		{"negative spacing", "[layout]\ngroup_gap = -1\n", errors.ErrCodeInvalidConfig},
		{"bad redis addr", "[cache]\nbackend = \"redis\"\nredis_addr = \"localhost\"\n", errors.ErrCodeInvalidConfig},
		{"negative redis db", "[cache]\nredis_db = -1\n", errors.ErrCodeInvalidConfig},
		{"bad mongo uri", "[store]\nbackend = \"mongo\"\nmongo_uri = \"not a uri\"\n", errors.ErrCodeInvalidConfig},
		{"empty cors origin", "[server]\ncors_origins = [\"\"]\n", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("LoadFile error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestServerSection(t *testing.T) {
	path := writeConfig(t, `
[server]
cors_origins = ["https://family.example", "http://localhost:5173"]
metrics = true
watch = true
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://localhost:5173" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Server.Metrics || !cfg.Server.Watch {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestValidateMessageNamesTOMLKey(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = "memcached"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	want := `cache.backend must be one of file, redis, none, got "memcached"`
	if got := errors.UserMessage(err); got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing default file", func(t *testing.T) {
		t.Setenv(EnvPath, "")
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Path != "" {
			t.Errorf("Path = %q, want empty", cfg.Path)
		}
	})

	t.Run("xdg file", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(EnvPath, "")
		t.Setenv("XDG_CONFIG_HOME", dir)
		if err := os.MkdirAll(filepath.Join(dir, AppName), 0o755); err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(dir, AppName, "config.toml")
		if err := os.WriteFile(path, []byte("[server]\naddr = \":9999\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Server.Addr != ":9999" {
			t.Errorf("Server.Addr = %q", cfg.Server.Addr)
		}
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		t.Setenv(EnvPath, filepath.Join(t.TempDir(), "nope.toml"))
		_, err := Load()
		if !errors.Is(err, errors.ErrCodeFileNotFound) {
			t.Errorf("Load error = %v, want FILE_NOT_FOUND", err)
		}
	})
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "/etc/kintree.toml")
	if p, _ := Path(); p != "/etc/kintree.toml" {
		t.Errorf("Path() = %q", p)
	}
	t.Setenv(EnvPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if p, _ := Path(); p != filepath.Join("/xdg", AppName, "config.toml") {
		t.Errorf("Path() = %q", p)
	}
}
