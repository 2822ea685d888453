// Package config loads the coursetree configuration file.
//
// A missing path yields Default(). Unknown keys are rejected so a typo like
// "listn:" fails loudly instead of silently falling back to a default.
//
// Example:
//
//	database: ./coursetree.db
//	listen: 127.0.0.1:8080
//	asset_base: https://cdn.example.com/uploads
//	log:
//	  level: debug
//	  format: json
//	session:
//	  queue_depth: 64
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	// Database is the sqlite file path.
	Database string `yaml:"database" validate:"required"`

	// Listen is the HTTP address for `coursetree serve`.
	Listen string `yaml:"listen" validate:"required,hostname_port"`

	// AssetBase is prepended to image and video references when they are
	// rendered as URLs. Empty leaves references untouched.
	AssetBase string `yaml:"asset_base" validate:"omitempty,url"`

	Log     LogConfig     `yaml:"log"`
	Session SessionConfig `yaml:"session"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// SessionConfig tunes edit sessions.
type SessionConfig struct {
	// QueueDepth bounds submitted mutations per session. 0 is unbounded.
	QueueDepth int `yaml:"queue_depth" validate:"min=0,max=100000"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database: "coursetree.db",
		Listen:   "127.0.0.1:8080",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Session: SessionConfig{QueueDepth: 256},
	}
}

// Load reads path on top of Default(). An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default() and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}
	msgs := make([]string, 0, len(fields))
	for _, fe := range fields {
		msgs = append(msgs, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	sort.Strings(msgs)
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
}

// SlogLevel returns the slog level named by l.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds a logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
