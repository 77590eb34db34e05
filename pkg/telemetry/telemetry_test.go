package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	stderrors "errors"

	"go.opentelemetry.io/otel/trace"

	"github.com/jvila/majordomo/pkg/errors"
)

func TestInit(t *testing.T) {
	shutdown, err := Init("test-service", "v0.0.1")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Shutdown function should not be nil")
	}

	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestInitNoneExporter(t *testing.T) {
	shutdown, err := InitWithConfig("test-service", "v0.0.1", Config{Exporter: "none"})
	if err != nil {
		t.Fatalf("InitWithConfig failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestInitUnknownExporter(t *testing.T) {
	if _, err := InitWithConfig("test-service", "v0.0.1", Config{Exporter: "carrier-pigeon"}); err == nil {
		t.Fatal("expected error for unknown exporter")
	}
}

func TestInitOTLPRequiresEndpoint(t *testing.T) {
	if _, err := InitWithConfig("test-service", "v0.0.1", Config{Exporter: "otlp"}); err == nil {
		t.Fatal("expected error for otlp without endpoint")
	}
}

func TestConfigureSlog(t *testing.T) {
	var buf bytes.Buffer
	log := ConfigureSlog(&buf, "debug", "json")

	log.Debug("dispatch probe", slog.String("specialist", "email-agent"))
	out := buf.String()
	if !strings.Contains(out, `"specialist":"email-agent"`) {
		t.Errorf("expected json attribute, got %q", out)
	}

	buf.Reset()
	log = ConfigureSlog(&buf, "warn", "text")
	log.Info("should be filtered")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}
}

func TestSlogTraceAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := ConfigureSlog(&buf, "info", "json")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01},
		SpanID:  trace.SpanID{0x02},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log.InfoContext(ctx, "dispatch.start")
	out := buf.String()
	if !strings.Contains(out, `"trace_id":"`+sc.TraceID().String()+`"`) {
		t.Errorf("expected trace_id attribute, got %q", out)
	}
	if !strings.Contains(out, `"span_id":"`+sc.SpanID().String()+`"`) {
		t.Errorf("expected span_id attribute, got %q", out)
	}

	// Without a span in the context neither attribute appears.
	buf.Reset()
	log.Info("no span")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("expected no trace_id without a span, got %q", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestDispatchMetrics(t *testing.T) {
	// With no meter provider installed the instruments are no-ops; the
	// point is that recording never fails or panics.
	dm, err := NewDispatchMetrics()
	if err != nil {
		t.Fatalf("NewDispatchMetrics failed: %v", err)
	}

	ctx := context.Background()
	dm.TaskStarted(ctx, "email-agent")
	dm.TaskFinished(ctx, "email-agent", 50*time.Millisecond, nil)
	dm.TaskFinished(ctx, "email-agent", 50*time.Millisecond,
		errors.New(errors.CodeTimeout, "too slow", nil))
	dm.TaskFinished(ctx, "email-agent", time.Millisecond, stderrors.New("untyped"))

	// Nil receivers are tolerated so metrics stay optional.
	var nilMetrics *DispatchMetrics
	nilMetrics.TaskStarted(ctx, "x")
	nilMetrics.TaskFinished(ctx, "x", 0, nil)
}
