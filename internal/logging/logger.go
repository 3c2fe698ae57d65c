package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by LoadConfigFromEnv.
const (
	EnvFormat    = "LOG_FORMAT"
	EnvLevel     = "LOG_LEVEL"
	EnvAddSource = "LOG_ADD_SOURCE"
)

// AppName is attached to every record as the "app" attribute.
const AppName = "aegis"

const (
	formatJSON = "json"
	formatText = "text"
)

// Config is the validated logging configuration.
type Config struct {
	Format    string
	Level     slog.Level
	AddSource bool
}

// BootstrapOptions names the command being run and where its logs go.
type BootstrapOptions struct {
	Command string
	Writer  io.Writer
}

func DefaultConfig() Config {
	return Config{Format: formatJSON, Level: slog.LevelInfo}
}

// LoadConfigFromEnv reads the LOG_* variables. Every invalid variable is reported.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	var errs []error

	switch format := strings.ToLower(strings.TrimSpace(os.Getenv(EnvFormat))); format {
	case "":
	case formatJSON, formatText:
		cfg.Format = format
	default:
		errs = append(errs, fmt.Errorf("%s must be one of: json, text", EnvFormat))
	}

	if raw := strings.TrimSpace(os.Getenv(EnvLevel)); raw != "" {
		if err := cfg.Level.UnmarshalText([]byte(raw)); err != nil {
			errs = append(errs, fmt.Errorf("%s must be one of: debug, info, warn, error", EnvLevel))
		}
	}

	if raw := strings.TrimSpace(os.Getenv(EnvAddSource)); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be a boolean", EnvAddSource))
		}
		cfg.AddSource = v
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// NewLogger builds a logger tagged with the app name and the running command path.
func NewLogger(cfg Config, w io.Writer, command string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	command = strings.TrimSpace(command)
	if command == "" {
		command = AppName
	}
	return slog.New(newHandler(cfg, w)).With("app", AppName, "command", command)
}

func newHandler(cfg Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), formatText) {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// BootstrapFromEnv installs the env-configured logger as the slog default.
func BootstrapFromEnv(opts BootstrapOptions) (*slog.Logger, error) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, opts.Writer, opts.Command)
	slog.SetDefault(logger)
	return logger, nil
}

// Component scopes logger to a subsystem. A nil logger falls back to slog.Default.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if name = strings.TrimSpace(name); name == "" {
		return logger
	}
	return logger.With("component", name)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
