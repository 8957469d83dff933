package cli

import (
	"errors"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/pipeline"
)

// Config holds user defaults read from config.toml. Command-line flags
// override every field.
//
//	width = 1600
//	height = 900
//	cache = "redis://localhost:6379/0"
//	cache_ttl = "12h"
//	store = "mongodb://localhost:27017"
type Config struct {
	Width    int      `toml:"width"`
	Height   int      `toml:"height"`
	Seed     uint64   `toml:"seed"`
	Style    string   `toml:"style"`
	Expand   string   `toml:"expand"`
	Cache    string   `toml:"cache"`     // file, none, or a redis:// URL
	CacheTTL duration `toml:"cache_ttl"` // How long scans stay cached
	Store    string   `toml:"store"`     // Directory or mongodb:// URI
	Listen   string   `toml:"listen"`    // Address for serve
}

// duration decodes TOML strings like "90m".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Width:  pipeline.DefaultWidth,
		Height: pipeline.DefaultHeight,
		Seed:   pipeline.DefaultSeed,
		Style:  pipeline.DefaultStyle,
		Expand: "1",
		Cache:  cacheFile,
		Listen: "localhost:8080",
	}
}

// loadConfig reads path on top of the defaults. A missing file is not an
// error.
func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return DefaultConfig(), errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return DefaultConfig(), errs.New(errs.ErrCodeInvalidFormat, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := errs.ValidateDimensions(cfg.Width, cfg.Height); err != nil {
		return DefaultConfig(), err
	}
	if _, err := parseExpand(cfg.Expand); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// pipelineOptions returns the options every command starts from.
func (c Config) pipelineOptions() pipeline.Options {
	expand, _ := parseExpand(c.Expand)
	return pipeline.Options{
		Width:    c.Width,
		Height:   c.Height,
		Seed:     c.Seed,
		Style:    c.Style,
		Expand:   expand,
		CacheTTL: c.CacheTTL.Duration,
	}
}
