package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewRespectsLevel(t *testing.T) {
	logger := New(Config{Level: "warn", Format: "json", Output: "stdout"})
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Errorf("level = %s, want warn", logger.GetLevel())
	}

	logger = New(Config{Level: "not-a-level"})
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("invalid level must fall back to info, got %s", logger.GetLevel())
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.Format != "json" || cfg.Output != "stdout" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestComponentTagging(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	tagged := Component(base, "engine")
	tagged.Info().Msg("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["component"] != "engine" {
		t.Errorf("component = %v, want engine", entry["component"])
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Error("message missing from log line")
	}
}
