// Package main is the entry point for the mailsink SMTP capture server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mfischer/mailsink/internal/config"
	"github.com/mfischer/mailsink/internal/sink"
	"github.com/mfischer/mailsink/internal/sink/console"
	"github.com/mfischer/mailsink/internal/sink/file"
	"github.com/mfischer/mailsink/internal/sink/ses"
	"github.com/mfischer/mailsink/internal/smtp"
)

func main() {
	port := flag.Int("port", 2525, "listening port (overrides config file and environment)")
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// The flag wins only when given explicitly, so a config-file port is
	// not clobbered by the flag default.
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "port" {
			cfg.SMTP.Port = *port
		}
	})
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	setupLogger(cfg.Logging.Level)

	// Compose sinks: summary first, then persistence, then optional relay.
	sinks, err := buildSinks(cfg)
	if err != nil {
		slog.Error("failed to set up sinks", "error", err)
		os.Exit(1)
	}

	server := smtp.New(smtp.ServerConfig{
		ListenAddr: cfg.ListenAddr(),
		Hostname:   cfg.SMTP.Hostname,
		Sink:       sinks,
	})

	slog.Info("starting mailsink",
		"listen", cfg.ListenAddr(),
		"store_dir", cfg.Store.Dir,
		"sink", sinks.Name(),
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		slog.Info("received signal, initiating shutdown", "signal", sig)
		cancel()
	}()

	// Start the server (blocks until context is cancelled)
	if err := server.ListenAndServe(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("mailsink stopped")
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// buildSinks composes the delivery chain. The store directory is created
// here, once, before the accept loop starts.
func buildSinks(cfg *config.Config) (sink.Multi, error) {
	store, err := file.New(cfg.Store.Dir)
	if err != nil {
		return nil, err
	}

	sinks := sink.Multi{console.New(), store}

	if cfg.RelayConfigured() {
		relay, err := ses.New(context.Background(), ses.Config{
			Region:          cfg.Relay.Region,
			AccessKeyID:     cfg.Relay.AccessKeyID,
			SecretAccessKey: cfg.Relay.SecretAccessKey,
			Sender:          cfg.Relay.Sender,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("SES relay enabled",
			"region", cfg.Relay.Region,
			"sender", cfg.Relay.Sender,
		)
		sinks = append(sinks, relay)
	}

	return sinks, nil
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
