// Package config handles loading, defaulting, and validation of the tled
// TOML configuration file. Every section maps to a typed struct so the rest
// of the codebase gets strong typing without manual key lookups.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level configuration, mirroring the TOML sections.
type Config struct {
	Data    DataConfig    `toml:"data"    json:"data"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
	Server  ServerConfig  `toml:"server"  json:"server"`
	Parser  ParserConfig  `toml:"parser"  json:"parser"`
	Catalog CatalogConfig `toml:"catalog" json:"catalog"`
}

type DataConfig struct {
	Root string `toml:"root" json:"root"`
}

type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
}

type ServerConfig struct {
	Bind string `toml:"bind" json:"bind"`
}

// ParserConfig controls the element set parser used by /api/parse and the
// catalog loader.
type ParserConfig struct {
	Strict bool `toml:"strict" json:"strict"`
}

type CatalogConfig struct {
	URL          string `toml:"url"            json:"url"`
	RefreshHours int    `toml:"refresh_hours"  json:"refresh_hours"`
	MaxBodyBytes int64  `toml:"max_body_bytes" json:"max_body_bytes"`
	CrossCheck   bool   `toml:"cross_check"    json:"cross_check"`
	FetchRetries int    `toml:"fetch_retries"  json:"fetch_retries"`
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the TOML file omits a field.
func Default() Config {
	return Config{
		Data: DataConfig{
			Root: "/var/lib/tled",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Bind: "0.0.0.0:8080",
		},
		Parser: ParserConfig{
			Strict: false,
		},
		Catalog: CatalogConfig{
			URL:          "https://celestrak.org/NORAD/elements/gp.php?GROUP=stations&FORMAT=tle",
			RefreshHours: 24,
			MaxBodyBytes: 50 << 20,
			CrossCheck:   true,
			FetchRetries: 2,
		},
	}
}

// Load reads the TOML file at path, layers it on top of the defaults, and
// validates the result. An error is returned if the file can't be read,
// parsed, or if any constraint is violated.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Encode renders cfg back to TOML, e.g. for `tled --print-config`.
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

func validate(cfg Config) error {
	if cfg.Data.Root == "" {
		return errors.New("data.root must not be empty")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
	if cfg.Catalog.URL == "" {
		return errors.New("catalog.url must not be empty")
	}
	if cfg.Catalog.RefreshHours < 1 {
		return errors.New("catalog.refresh_hours must be >= 1")
	}
	if cfg.Catalog.MaxBodyBytes <= 0 {
		return errors.New("catalog.max_body_bytes must be > 0")
	}
	if cfg.Catalog.FetchRetries < 0 {
		return errors.New("catalog.fetch_retries must be >= 0")
	}
	return nil
}

// ProfileInfo describes one named configuration file in the config directory.
type ProfileInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// DefaultConfigDir is where named profiles live.
func DefaultConfigDir() string {
	if dir := os.Getenv("TLED_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "/etc/tled"
}

// ListProfiles returns every *.toml file in dir, sorted by name. A missing
// directory yields no profiles and no error.
func ListProfiles(dir string) ([]ProfileInfo, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, err
	}
	var out []ProfileInfo
	for _, m := range matches {
		out = append(out, ProfileInfo{
			Name: strings.TrimSuffix(filepath.Base(m), ".toml"),
			Path: m,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
