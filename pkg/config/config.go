package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log         LogConfig                   `koanf:"log"`
	Telemetry   TelemetryConfig             `koanf:"telemetry"`
	Manifest    ManifestConfig              `koanf:"manifest"`
	Secrets     SecretsConfig               `koanf:"secrets"`
	Dispatch    DispatchConfig              `koanf:"dispatch"`
	Specialists map[string]SpecialistConfig `koanf:"specialists"`
}

// SpecialistConfig binds a specialist name to the subprocess that
// implements it, with optional per-specialist limit overrides.
type SpecialistConfig struct {
	Command  string   `koanf:"command"`
	Args     []string `koanf:"args"`
	MaxTurns int      `koanf:"max_turns"`
	Timeout  string   `koanf:"timeout"`
}

// InvokeTimeout parses the per-specialist timeout override. Zero means
// the dispatch default applies.
func (s SpecialistConfig) InvokeTimeout() time.Duration {
	t, err := time.ParseDuration(s.Timeout)
	if err != nil || t < 0 {
		return 0
	}
	return t
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp, none
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

type ManifestConfig struct {
	Path string `koanf:"path"`
}

type SecretsConfig struct {
	Path     string `koanf:"path"`
	Required bool   `koanf:"required"`
}

type DispatchConfig struct {
	MaxParallel int    `koanf:"max_parallel"`
	Timeout     string `koanf:"timeout"`
	MaxTurns    int    `koanf:"max_turns"`
}

// InvokeTimeout parses the configured per-invocation timeout. Zero means
// no wall-clock limit.
func (d DispatchConfig) InvokeTimeout() time.Duration {
	t, err := time.ParseDuration(d.Timeout)
	if err != nil || t < 0 {
		return 0
	}
	return t
}

// Global k instance
var k = koanf.New(".")

func Load(path string) (*Config, error) {
	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("telemetry.exporter", "none")
	k.Set("telemetry.otlp_endpoint", "localhost:4317")
	k.Set("manifest.path", "manifest.yaml")
	k.Set("secrets.path", "")
	k.Set("secrets.required", false)
	k.Set("dispatch.max_parallel", 4)
	k.Set("dispatch.timeout", "2m")
	k.Set("dispatch.max_turns", 25)

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (MAJORDOMO_DISPATCH_MAX_PARALLEL -> dispatch.max_parallel).
	// Only the first underscore is a level separator; the rest belong to the
	// key itself (max_parallel, otlp_endpoint).
	if err := k.Load(env.Provider("MAJORDOMO_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "MAJORDOMO_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
