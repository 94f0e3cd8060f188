package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/todomvc/todo-backend/server/internal/api"
	"github.com/todomvc/todo-backend/server/internal/config"
	"github.com/todomvc/todo-backend/server/internal/logging"
	"github.com/todomvc/todo-backend/server/internal/metrics"
	"github.com/todomvc/todo-backend/server/internal/store"
	"github.com/todomvc/todo-backend/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file; empty uses built-in defaults")
	uiDir := flag.String("ui-dir", "", "serve a static front-end from this directory at /; leave empty to disable")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.Server.Log.Format, cfg.Server.Log.Level)
	if err != nil {
		slog.Error("failed to build logger", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.Logger)

	slog.Info("todo-server starting",
		"config", *configPath,
		"http_port", cfg.Server.HTTPPort,
		"base_url", cfg.Server.BaseURL,
		"log_level", cfg.Server.Log.Level,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// One store for the life of the process; only the API handler touches it.
	handler := api.New(api.NewWireMethods(store.New()))
	handler.SetBaseURL(cfg.Server.BaseURL)

	// Stream hub: pushes the list on every mutation and every interval.
	hub := ws.New(handler, cfg.Server.StreamBaseURL(), cfg.Server.Stream.Interval)
	handler.OnChange(hub.Notify)
	go hub.Run(ctx)

	reg := metrics.New()
	reg.RegisterGauge("items_stored", "Todo items currently held in memory.",
		func() float64 { return float64(handler.Count()) })
	reg.RegisterGauge("stream_clients", "Connected WebSocket stream clients.",
		func() float64 { return float64(hub.Count()) })

	var allowOrigin atomic.Value
	allowOrigin.Store(cfg.Server.CORS.AllowOrigin)

	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(next *config.Config) {
				if err := logger.SetLevel(next.Server.Log.Level); err != nil {
					slog.Error("config: apply log level", "err", err)
				}
				handler.SetBaseURL(next.Server.BaseURL)
				hub.SetBaseURL(next.Server.StreamBaseURL())
				allowOrigin.Store(next.Server.CORS.AllowOrigin)
				if next.Server.HTTPPort != cfg.Server.HTTPPort {
					slog.Warn("config: http_port change requires a restart",
						"running", cfg.Server.HTTPPort, "configured", next.Server.HTTPPort)
				}
			})
			if err != nil {
				slog.Error("config: watch failed", "path", *configPath, "err", err)
			}
		}()
	}

	httpMux := http.NewServeMux()
	httpMux.Handle("/todos", handler)
	httpMux.Handle("/todos/", handler)
	httpMux.Handle("/healthz", handler)
	httpMux.Handle("/ws/todos", hub)
	httpMux.Handle("/metrics", reg)

	// Optional: serve a pre-built front-end from a local directory.
	// The "/" catch-all serves index.html for any unknown path (SPA routing).
	if *uiDir != "" {
		fs := http.FileServer(http.Dir(*uiDir))
		httpMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := *uiDir + r.URL.Path
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, *uiDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
		slog.Info("serving UI static files", "dir", *uiDir)
	}

	httpSrv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: api.Chain(httpMux,
			api.RequestID(),
			api.AccessLog(logger.Logger),
			api.Instrument(reg),
			api.CORS(func() string { return allowOrigin.Load().(string) }),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("todo-server shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}

// loadConfig reads path, or falls back to defaults plus environment
// overrides when no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}
