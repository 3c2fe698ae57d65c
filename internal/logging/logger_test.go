package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv(EnvFormat, "")
	t.Setenv(EnvLevel, "")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}
	if cfg.Format != "json" {
		t.Fatalf("Format = %q, want %q", cfg.Format, "json")
	}
	if cfg.Level != slog.LevelInfo {
		t.Fatalf("Level = %v, want %v", cfg.Level, slog.LevelInfo)
	}
}

func TestLoadConfigFromEnv_ValidValues(t *testing.T) {
	t.Setenv(EnvFormat, "text")
	t.Setenv(EnvLevel, "debug")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}
	if cfg.Format != "text" {
		t.Fatalf("Format = %q, want %q", cfg.Format, "text")
	}
	if cfg.Level != slog.LevelDebug {
		t.Fatalf("Level = %v, want %v", cfg.Level, slog.LevelDebug)
	}
}

func TestLoadConfigFromEnv_InvalidFormat(t *testing.T) {
	t.Setenv(EnvFormat, "yaml")
	t.Setenv(EnvLevel, "")

	_, err := LoadConfigFromEnv()
	if err == nil {
		t.Fatal("expected invalid LOG_FORMAT error")
	}
}

func TestLoadConfigFromEnv_InvalidLevel(t *testing.T) {
	t.Setenv(EnvFormat, "")
	t.Setenv(EnvLevel, "trace")

	_, err := LoadConfigFromEnv()
	if err == nil {
		t.Fatal("expected invalid LOG_LEVEL error")
	}
}

func TestNewLogger_JSONIncludesStaticAttrs(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(DefaultConfig(), &out, "aegis serve")
	logger.Info("hello")

	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected JSON log line")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if got := payload["app"]; got != "aegis" {
		t.Fatalf("app = %v, want %q", got, "aegis")
	}
	if got := payload["command"]; got != "aegis serve" {
		t.Fatalf("command = %v, want %q", got, "aegis serve")
	}
}

func TestComponentAddsAttribute(t *testing.T) {
	var out bytes.Buffer
	logger := Component(NewLogger(DefaultConfig(), &out, "aegis serve"), "configapi")
	logger.Info("request")

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &payload); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if got := payload["component"]; got != "configapi" {
		t.Fatalf("component = %v, want %q", got, "configapi")
	}
}

func TestComponentEmptyNameKeepsLogger(t *testing.T) {
	base := Discard()
	if got := Component(base, "  "); got != base {
		t.Fatal("expected the same logger for an empty component name")
	}
}

func TestLoadConfigFromEnv_ReportsEveryInvalidVariable(t *testing.T) {
	t.Setenv(EnvFormat, "yaml")
	t.Setenv(EnvLevel, "trace")
	t.Setenv(EnvAddSource, "maybe")

	_, err := LoadConfigFromEnv()
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, name := range []string{EnvFormat, EnvLevel, EnvAddSource} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error %q does not mention %s", err, name)
		}
	}
}

func TestLoadConfigFromEnv_LevelNames(t *testing.T) {
	t.Setenv(EnvFormat, "")
	t.Setenv(EnvAddSource, "")

	for raw, want := range map[string]slog.Level{
		"WARN":   slog.LevelWarn,
		" error": slog.LevelError,
		"info+2": slog.LevelInfo + 2,
	} {
		t.Setenv(EnvLevel, raw)
		cfg, err := LoadConfigFromEnv()
		if err != nil {
			t.Fatalf("LoadConfigFromEnv(%q) error = %v", raw, err)
		}
		if cfg.Level != want {
			t.Fatalf("Level(%q) = %v, want %v", raw, cfg.Level, want)
		}
	}
}

func TestNewLogger_AddSource(t *testing.T) {
	t.Setenv(EnvFormat, "text")
	t.Setenv(EnvLevel, "")
	t.Setenv(EnvAddSource, "true")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}
	var out bytes.Buffer
	NewLogger(cfg, &out, "aegis repos").Info("hello")
	if got := out.String(); !strings.Contains(got, "source=") || !strings.Contains(got, "logger_test.go") {
		t.Fatalf("output = %q, want source attribute", got)
	}
}
