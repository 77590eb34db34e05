package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.Telemetry.Exporter != "none" {
		t.Errorf("expected default exporter none, got %s", cfg.Telemetry.Exporter)
	}
	if cfg.Dispatch.MaxParallel != 4 {
		t.Errorf("expected default max_parallel 4, got %d", cfg.Dispatch.MaxParallel)
	}
	if cfg.Dispatch.InvokeTimeout() != 2*time.Minute {
		t.Errorf("expected default timeout 2m, got %v", cfg.Dispatch.InvokeTimeout())
	}
}

func TestLoadFile(t *testing.T) {
	doc := `
log:
  level: debug
  format: json
manifest:
  path: /etc/majordomo/manifest.yaml
dispatch:
  max_parallel: 8
  timeout: 30s
specialists:
  email-agent:
    command: email-specialist
    args: ["--fast"]
    max_turns: 10
    timeout: 45s
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
	if cfg.Manifest.Path != "/etc/majordomo/manifest.yaml" {
		t.Errorf("unexpected manifest path %q", cfg.Manifest.Path)
	}
	if cfg.Dispatch.MaxParallel != 8 {
		t.Errorf("expected max_parallel 8, got %d", cfg.Dispatch.MaxParallel)
	}
	if cfg.Dispatch.InvokeTimeout() != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.Dispatch.InvokeTimeout())
	}
	sc, ok := cfg.Specialists["email-agent"]
	if !ok {
		t.Fatalf("expected email-agent specialist config")
	}
	if sc.Command != "email-specialist" || len(sc.Args) != 1 {
		t.Errorf("unexpected specialist config %+v", sc)
	}
	if sc.MaxTurns != 10 || sc.InvokeTimeout() != 45*time.Second {
		t.Errorf("unexpected specialist limits %+v", sc)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MAJORDOMO_LOG_LEVEL", "warn")
	// Keys with their own underscores must survive the env mapping.
	t.Setenv("MAJORDOMO_DISPATCH_MAX_PARALLEL", "9")
	t.Setenv("MAJORDOMO_DISPATCH_MAX_TURNS", "7")
	t.Setenv("MAJORDOMO_TELEMETRY_OTLP_ENDPOINT", "collector:4317")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level warn from env, got %s", cfg.Log.Level)
	}
	if cfg.Dispatch.MaxParallel != 9 {
		t.Errorf("expected max_parallel 9 from env, got %d", cfg.Dispatch.MaxParallel)
	}
	if cfg.Dispatch.MaxTurns != 7 {
		t.Errorf("expected max_turns 7 from env, got %d", cfg.Dispatch.MaxTurns)
	}
	if cfg.Telemetry.OTLPEndpoint != "collector:4317" {
		t.Errorf("expected otlp_endpoint from env, got %s", cfg.Telemetry.OTLPEndpoint)
	}
}

func TestInvokeTimeoutRejectsGarbage(t *testing.T) {
	d := DispatchConfig{Timeout: "not-a-duration"}
	if got := d.InvokeTimeout(); got != 0 {
		t.Errorf("expected 0 for unparseable timeout, got %v", got)
	}
	d = DispatchConfig{Timeout: "-5s"}
	if got := d.InvokeTimeout(); got != 0 {
		t.Errorf("expected 0 for negative timeout, got %v", got)
	}
}
