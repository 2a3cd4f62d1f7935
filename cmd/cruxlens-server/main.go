package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cruxlens/cruxlens/internal/api"
	"github.com/cruxlens/cruxlens/internal/config"
	"github.com/cruxlens/cruxlens/internal/crux"
	"github.com/cruxlens/cruxlens/internal/notify"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("cruxlens-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(parseLevel(cfg.Server.LogLevel))

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"crux_endpoint", cfg.Crux.Endpoint,
		"crux_timeout", cfg.Crux.Timeout,
		"webhooks", len(cfg.Notify.Webhooks),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The upstream client is held behind an atomic pointer so a config
	// hot-reload can swap it without restarting the listener. Listener
	// settings (http_port) still require a restart.
	var client atomic.Pointer[crux.Client]
	client.Store(crux.New(cfg.Crux))

	notifier := notify.New(cfg.Notify)

	go func() {
		err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			client.Store(crux.New(updated.Crux))
			level.Set(parseLevel(updated.Server.LogLevel))
			slog.Info("config hot-reloaded",
				"crux_endpoint", updated.Crux.Endpoint,
				"crux_timeout", updated.Crux.Timeout,
			)
		})
		if err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	fetcher := api.FetcherFunc(func(ctx context.Context, pageURL string) (*crux.URLRecord, error) {
		return client.Load().Fetch(ctx, pageURL)
	})

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", api.New(fetcher, notifier))
	httpMux.Handle("/metrics", promhttp.Handler())

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("cruxlens-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}

// parseLevel maps a config log level string to a slog.Level.
// Unknown or empty values fall back to info.
func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
