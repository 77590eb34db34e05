// Command majordomo runs the capability-routing tool server: it maps user
// requests to specialist domains and workflows, and dispatches specialist
// invocations on behalf of an orchestrating client over MCP stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jvila/majordomo/pkg/config"
	"github.com/jvila/majordomo/pkg/dispatcher"
	"github.com/jvila/majordomo/pkg/invoker"
	"github.com/jvila/majordomo/pkg/manifest"
	"github.com/jvila/majordomo/pkg/matcher"
	majordomomcp "github.com/jvila/majordomo/pkg/mcp"
	"github.com/jvila/majordomo/pkg/secrets"
	"github.com/jvila/majordomo/pkg/telemetry"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "majordomo: cannot load config: %v\n", err)
		os.Exit(1)
	}

	// stdout belongs to the MCP transport; everything human-readable goes
	// to stderr.
	log := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	if cfg.Secrets.Path != "" {
		values, err := secrets.Load(cfg.Secrets.Path)
		switch {
		case err != nil && cfg.Secrets.Required:
			fatal(log, "cannot read credential store", err)
		case err != nil:
			log.Warn("credential store skipped", slog.String("path", cfg.Secrets.Path), slog.String("error", err.Error()))
		default:
			if err := secrets.Apply(values); err != nil {
				fatal(log, "cannot apply credentials to environment", err)
			}
			log.Info("credentials applied", slog.Int("count", len(values)))
		}
	}

	shutdown, err := telemetry.InitWithConfig("majordomo", Version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		fatal(log, "cannot initialize telemetry", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Warn("telemetry shutdown", slog.String("error", err.Error()))
		}
	}()

	store := manifest.NewStore(cfg.Manifest.Path)
	man, err := store.Load()
	if err != nil {
		// No valid routing is possible without a manifest; refuse to serve.
		fatal(log, "cannot load capability manifest", err)
	}
	log.Info("manifest loaded",
		slog.Int("domains", len(man.Domains)),
		slog.Int("workflows", len(man.Workflows)),
	)

	registry := invoker.NewRegistry(store,
		invoker.WithDefaultTimeout(cfg.Dispatch.InvokeTimeout()),
		invoker.WithDefaultMaxTurns(cfg.Dispatch.MaxTurns),
	)
	for name, sc := range cfg.Specialists {
		registry.Register(name, invoker.NewExec(sc.Command, sc.Args...))
		if sc.MaxTurns > 0 || sc.InvokeTimeout() > 0 {
			registry.SetLimits(name, invoker.Limits{
				MaxTurns: sc.MaxTurns,
				Timeout:  sc.InvokeTimeout(),
			})
		}
	}
	for _, domain := range man.DomainOrder {
		if _, ok := registry.Resolve(man.Domains[domain].Specialist); !ok {
			log.Warn("domain specialist has no registered target",
				slog.String("domain", domain),
				slog.String("specialist", man.Domains[domain].Specialist),
			)
		}
	}

	metrics, err := telemetry.NewDispatchMetrics()
	if err != nil {
		fatal(log, "cannot create dispatch metrics", err)
	}

	d := dispatcher.New(registry,
		dispatcher.WithMaxParallel(cfg.Dispatch.MaxParallel),
		dispatcher.WithLogger(log),
		dispatcher.WithMetrics(metrics),
	)

	srv := majordomomcp.NewServer("majordomo", Version, matcher.New(store), d, store, log)
	log.Info("serving on stdio", slog.String("version", Version))
	if err := srv.ServeStdio(); err != nil {
		fatal(log, "server failed", err)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
