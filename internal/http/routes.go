package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Requests CrawlRequestsService
	Jobs     CachedJobsService
	Stats    StatsService

	// Optional readiness probes.
	DB    Pinger
	Cache Pinger

	Logger *slog.Logger
}

// NewRouter creates and configures the API router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	health := &HealthHandlers{DB: services.DB, Cache: services.Cache}
	mux.HandleFunc("GET /readyz", health.Ready)

	if services.Requests != nil {
		crawl := &CrawlHandlers{Svc: services.Requests, Logger: logger}
		mux.HandleFunc("POST /api/crawl", crawl.Create)
		mux.HandleFunc("GET /api/crawl/{id}", crawl.Get)
	}

	if services.Jobs != nil {
		jobs := &JobsHandlers{Svc: services.Jobs}
		mux.HandleFunc("GET /api/companies/{id}/jobs", jobs.CompanyJobs)
	}

	if services.Stats != nil {
		stats := &StatsHandlers{Svc: services.Stats}
		mux.HandleFunc("GET /api/stats", stats.Overview)
	}

	return Logging(logger)(Recover(logger)(mux))
}
