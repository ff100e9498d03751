// Package config loads the kintree configuration file.
//
// The file is TOML and every section is optional:
//
//	[layout]
//	vertical_spacing = 400
//	card_width = 192
//
//	[cache]
//	backend = "redis"        # file, redis or none
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "sqlite"       # sqlite or mongo
//	sqlite_path = "/var/lib/kintree/charts.db"
//
//	[server]
//	addr = ":8080"
//	cors_origins = ["https://family.example"]
//	metrics = true           # serve /metrics
//	watch = true             # reload file inputs on change
//
// Command-line flags override whatever the file sets.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
)

// AppName names the config, cache and data directories.
const AppName = "kintree"

// EnvPath overrides the config file location.
const EnvPath = "KINTREE_CONFIG"

// Backend names.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// DefaultAddr is the HTTP listen address.
const DefaultAddr = ":8080"

// Config is the parsed configuration file.
type Config struct {
	Layout layout.Config `toml:"layout"`
	Cache  CacheConfig   `toml:"cache"`
	Store  StoreConfig   `toml:"store"`
	Server ServerConfig  `toml:"server"`

	// Path is the file the config was read from, empty when defaults were used.
	Path string `toml:"-"`
}

// CacheConfig selects the layout and artifact cache.
type CacheConfig struct {
	Backend       string `toml:"backend" validate:"oneof=file redis none"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db" validate:"gte=0"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// StoreConfig selects the chart store.
type StoreConfig struct {
	Backend       string `toml:"backend" validate:"oneof=sqlite mongo"`
	SQLitePath    string `toml:"sqlite_path"`
	MongoURI      string `toml:"mongo_uri" validate:"omitempty,uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServerConfig configures `kintree serve`.
type ServerConfig struct {
	Addr        string   `toml:"addr" validate:"required"`
	CORSOrigins []string `toml:"cors_origins" validate:"dive,required"`
	Metrics     bool     `toml:"metrics"`
	Watch       bool     `toml:"watch"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads the file named by $KINTREE_CONFIG, falling back to
// $XDG_CONFIG_HOME/kintree/config.toml. A missing file yields [Default].
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	cfg, err := LoadFile(path)
	if err != nil && errors.Is(err, errors.ErrCodeFileNotFound) && os.Getenv(EnvPath) == "" {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads and validates one config file.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.Path = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Layout = c.Layout.WithDefaults()
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir, _ = CacheDir()
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	c.Store = c.Store.WithDefaults()
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

// WithDefaults fills the backend, the SQLite path and, for the mongo
// backend, the URI.
func (s StoreConfig) WithDefaults() StoreConfig {
	if s.Backend == "" {
		s.Backend = StoreSQLite
	}
	if s.SQLitePath == "" {
		if dir, err := DataDir(); err == nil {
			s.SQLitePath = filepath.Join(dir, "charts.db")
		}
	}
	if s.Backend == StoreMongo && s.MongoURI == "" {
		s.MongoURI = "mongodb://localhost:27017"
	}
	return s
}

// Validate checks the struct tags, then layout spacing.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return c.Layout.Validate()
}

var validate = newValidator()

// newValidator reports fields by their TOML key.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return errors.New(errors.ErrCodeInvalidConfig, "%s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	_, field, _ := strings.Cut(e.Namespace(), ".")
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s, got %q", field, strings.ReplaceAll(e.Param(), " ", ", "), e.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port, got %q", field, e.Value())
	case "uri":
		return fmt.Sprintf("%s must be a URI, got %q", field, e.Value())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// =============================================================================
// Paths
// =============================================================================

// Path returns the config file location.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns ~/.cache/kintree or $XDG_CACHE_HOME/kintree.
func CacheDir() (string, error) { return xdgDir("XDG_CACHE_HOME", ".cache") }

// DataDir returns ~/.local/share/kintree or $XDG_DATA_HOME/kintree.
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
