// Package config loads figcode settings from YAML with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/livefig/internal/codegen"
	"github.com/danielpatrickdp/livefig/internal/logging"
)

// Environment variables that override file values.
const (
	EnvDB       = "LIVEFIG_DB"
	EnvAddr     = "LIVEFIG_ADDR"
	EnvLogLevel = "LIVEFIG_LOG_LEVEL"
)

// #region types
type Config struct {
	DB      string        `yaml:"db"`
	Addr    string        `yaml:"addr"`
	Log     LogConfig     `yaml:"log"`
	Codegen CodegenConfig `yaml:"codegen"`
	Preview PreviewConfig `yaml:"preview"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type CodegenConfig struct {
	Package string `yaml:"package"`
	Func    string `yaml:"func"`
}

type PreviewConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}
// #endregion types

// #region defaults
// Default returns the configuration used when no file is given.
func Default() Config {
	gen := codegen.DefaultConfig()
	return Config{
		DB:      "livefig.db",
		Addr:    "localhost:50061",
		Log:     LogConfig{Level: "info"},
		Codegen: CodegenConfig{Package: gen.Package, Func: gen.FuncName},
		Preview: PreviewConfig{Width: 640, Height: 480},
	}
}
// #endregion defaults

// #region load
// Load reads path over Default and then applies environment overrides. An
// empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := Parse(data, &cfg); err != nil {
				return Config{}, err
			}
		}
	}
	cfg.DB = envOr(EnvDB, cfg.DB)
	cfg.Addr = envOr(EnvAddr, cfg.Addr)
	cfg.Log.Level = envOr(EnvLogLevel, cfg.Log.Level)
	return cfg, cfg.Validate()
}

// Parse decodes YAML into cfg, leaving absent keys untouched. Unknown keys
// are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if c.Preview.Width <= 0 || c.Preview.Height <= 0 {
		return fmt.Errorf("config: preview size %dx%d must be positive", c.Preview.Width, c.Preview.Height)
	}
	if err := (codegen.Config{Package: c.Codegen.Package, FuncName: c.Codegen.Func}).Validate(); err != nil {
		return fmt.Errorf("config: codegen: %w", err)
	}
	if _, _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// CodegenOptions converts the codegen section into generator options.
func (c Config) CodegenOptions() []codegen.Option {
	return []codegen.Option{codegen.WithPackage(c.Codegen.Package), codegen.WithFuncName(c.Codegen.Func)}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
// #endregion load
