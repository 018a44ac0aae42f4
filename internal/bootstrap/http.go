package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/jobwatch/config"
	httpx "github.com/target/jobwatch/internal/http"
)

const defaultHTTPIdleTimeout = 120 * time.Second

// HTTPServerConfig contains configuration for starting the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// dbPinger adapts *sql.DB to the readiness probe interface.
type dbPinger struct {
	db *sql.DB
}

func (p dbPinger) Health(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// buildRouterServices maps the service container onto the HTTP surface.
// Optional pieces (crawl requests, probes) are wired only when present so the
// router can drop their routes.
func buildRouterServices(cfg *HTTPServerConfig, logger *slog.Logger) httpx.RouterServices {
	services := httpx.RouterServices{
		Logger: logger,
	}

	// Typed nils must not reach the interface fields.
	if cfg.Services.Requests != nil {
		services.Requests = cfg.Services.Requests
	}
	if cfg.Services.Cache != nil {
		services.Jobs = cfg.Services.Cache
	}
	if cfg.Services.Stats != nil {
		services.Stats = cfg.Services.Stats
	}
	if cfg.DB != nil {
		services.DB = dbPinger{db: cfg.DB}
	}
	if repos := cfg.Services.repos; repos != nil && repos.SharedCache != nil {
		services.Cache = repos.SharedCache
	}

	return services
}

// StartHTTPServer creates and starts the HTTP API server in a goroutine.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	addr := ":8080"
	var httpCfg config.HTTPConfig
	if cfg.Config != nil {
		httpCfg = cfg.Config.HTTP
		if httpCfg.Port > 0 {
			addr = httpCfg.Addr()
		}
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      httpx.NewRouter(buildRouterServices(cfg, logger)),
		ReadTimeout:  time.Duration(httpCfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(httpCfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  defaultHTTPIdleTimeout,
	}

	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
		}
	}()

	return server
}

// ShutdownConfig contains configuration for shutting down the HTTP server.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully drains in-flight requests and stops the server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("draining http server")
	if err := cfg.Server.Shutdown(cfg.Context); err != nil {
		logger.Error("http server shutdown failed", "error", err)
		return err
	}
	logger.Info("http server stopped")
	return nil
}
