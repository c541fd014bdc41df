package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jgoulah/cgmreport/internal/metrics"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.GetCGMPath(); got != "CGMData.csv" {
		t.Errorf("GetCGMPath() = %q, want CGMData.csv", got)
	}
	if got := cfg.GetInsulinPath(); got != "InsulinData.csv" {
		t.Errorf("GetInsulinPath() = %q, want InsulinData.csv", got)
	}
	if got := cfg.GetOutputPath(); got != "Result.csv" {
		t.Errorf("GetOutputPath() = %q, want Result.csv", got)
	}
	if got := cfg.GetTopicPrefix(); got != "cgmreport" {
		t.Errorf("GetTopicPrefix() = %q, want cgmreport", got)
	}

	opts := cfg.MetricOptions()
	if opts.Normalization != metrics.NormalizeFixed || opts.EmptyWindow != metrics.EmptyWindowNaN {
		t.Errorf("MetricOptions() = %+v, want fixed/nan", opts)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `inputs:
  cgm: data/cgm.csv
  insulin: data/insulin.csv
output: out/result.csv
metrics:
  normalization: per-window
  empty_window: error
mqtt:
  enabled: true
  broker: localhost:1883
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.GetCGMPath() != "data/cgm.csv" || cfg.GetInsulinPath() != "data/insulin.csv" {
		t.Errorf("inputs = %+v", cfg.Inputs)
	}
	if cfg.GetOutputPath() != "out/result.csv" {
		t.Errorf("GetOutputPath() = %q", cfg.GetOutputPath())
	}
	opts := cfg.MetricOptions()
	if opts.Normalization != metrics.NormalizePerWindow || opts.EmptyWindow != metrics.EmptyWindowAbort {
		t.Errorf("MetricOptions() = %+v, want per-window/error", opts)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker != "localhost:1883" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
}

func TestLoad_InvalidPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("metrics:\n  empty_window: skip\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown empty_window policy")
	}
	if !strings.Contains(err.Error(), "skip") {
		t.Errorf("error should mention the bad value, got: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &Config{Output: "report.csv"}
	cfg.HomeAssistant = HAConfig{Enabled: true, URL: "http://ha.local:5050", Token: "t", EntityID: "sensor.tir"}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Output != "report.csv" || loaded.HomeAssistant != cfg.HomeAssistant {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}
