package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/jobwatch/config"
	"github.com/target/jobwatch/internal/core"
	"github.com/target/jobwatch/internal/crawler/fetch"
	"github.com/target/jobwatch/internal/crawler/providers"
	"github.com/target/jobwatch/internal/crawler/rategate"
	"github.com/target/jobwatch/internal/data"
	"github.com/target/jobwatch/internal/domain/model"
	"github.com/target/jobwatch/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Crawl    *service.CrawlService
	Queue    *service.QueueBuilderService
	Requests *service.CrawlRequestService
	Stats    *service.StatsService
	Cache    *service.CacheService

	// Gate is shared between the crawl fetcher and the stats surface so the
	// per-domain budget holds across everything the process fetches.
	Gate *rategate.Gate

	repos *serviceRepositories
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB           *sql.DB
	Redis        redis.UniversalClient
	CompanyRepo  *data.CompanyRepo
	JobRepo      *data.JobRepo
	JobCacheRepo *data.JobCacheRepo
	CrawlLogRepo *data.CrawlLogRepo
	QueueRepo    *data.QueueRepo
	RequestRepo  *data.CrawlRequestRepo
	SharedCache  *data.RedisCacheRepo
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redisClient redis.UniversalClient) *serviceRepositories {
	repos := &serviceRepositories{
		DB:           db,
		Redis:        redisClient,
		CompanyRepo:  data.NewCompanyRepo(db),
		JobRepo:      data.NewJobRepo(db),
		JobCacheRepo: data.NewJobCacheRepo(db),
		CrawlLogRepo: data.NewCrawlLogRepo(db),
		QueueRepo:    data.NewQueueRepo(db),
	}
	if redisClient != nil {
		repos.RequestRepo = data.NewCrawlRequestRepo(redisClient)
		repos.SharedCache = data.NewRedisCacheRepo(redisClient)
	}
	return repos
}

// crawlLogAdapter bridges the fetch client's fire-and-forget log hook onto
// the crawl log repository. Insert failures are logged, never surfaced.
type crawlLogAdapter struct {
	repo   core.CrawlLogRepository
	logger *slog.Logger
}

func (a *crawlLogAdapter) Log(
	ctx context.Context,
	url string,
	status model.CrawlStatus,
	errMsg string,
	responseTime time.Duration,
) {
	if err := a.repo.Insert(ctx, url, status, errMsg, responseTime); err != nil {
		a.logger.WarnContext(ctx, "crawl log insert failed", "url", url, "error", err)
	}
}

// buildCrawlTools wires the rate gate and the gated HTTP client from crawler config.
func buildCrawlTools(
	repos *serviceRepositories,
	cfg config.CrawlerConfig,
	logger *slog.Logger,
) (*rategate.Gate, *fetch.Client) {
	gate := rategate.New(rategate.Options{
		RequestsPerMinute: cfg.RequestsPerMinute,
		MinDelay:          cfg.MinDelay(),
		MaxDelay:          cfg.MaxDelay(),
		Logger:            logger,
	})

	fetcher := fetch.NewClient(fetch.Options{
		Timeout:       cfg.Timeout(),
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay(),
		RetryBackoff:  cfg.RetryBackoff,
		Limiter:       gate,
		Logs:          &crawlLogAdapter{repo: repos.CrawlLogRepo, logger: logger},
		Logger:        logger,
	})

	return gate, fetcher
}

// buildDomainServices wires business services using repositories and crawl tools.
func buildDomainServices(deps *ServiceDeps, repos *serviceRepositories) ServiceContainer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := deps.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	gate, fetcher := buildCrawlTools(repos, appCfg.Crawler, logger)

	crawlSvc := service.NewCrawlService(service.CrawlServiceOptions{
		Repos: service.CrawlRepos{
			Companies: repos.CompanyRepo,
			Jobs:      repos.JobRepo,
			Cache:     repos.JobCacheRepo,
		},
		Tools: service.CrawlTools{
			Providers: providers.NewRegistry(),
			Fetcher:   fetcher,
		},
		Config: service.CrawlConfig{CacheTTL: appCfg.Crawler.CacheTTL()},
		Logger: logger,
	})

	queueSvc := service.NewQueueBuilderService(service.QueueBuilderServiceOptions{
		Queue:  repos.QueueRepo,
		Config: service.QueueConfig{StaleMaxAge: appCfg.Crawler.CacheTTL()},
		Logger: logger,
	})

	statsSvc := service.NewStatsService(service.StatsServiceOptions{
		Logs:   repos.CrawlLogRepo,
		Cache:  repos.JobCacheRepo,
		Gate:   gate,
		Logger: logger,
	})

	cacheSvc := service.NewCacheService(service.CacheServiceOptions{
		Cache:  repos.JobCacheRepo,
		Logs:   repos.CrawlLogRepo,
		Logger: logger,
	})

	container := ServiceContainer{
		Crawl: crawlSvc,
		Queue: queueSvc,
		Stats: statsSvc,
		Cache: cacheSvc,
		Gate:  gate,
		repos: repos,
	}

	// The crawl-request surface needs the Redis-backed status store.
	if repos.RequestRepo != nil {
		container.Requests = service.NewCrawlRequestService(service.CrawlRequestServiceOptions{
			Requests:  repos.RequestRepo,
			Companies: repos.CompanyRepo,
			Crawler:   crawlSvc,
			Logger:    logger,
		})
	}

	return container
}

// NewServices builds the full service container from shared infrastructure.
func NewServices(deps *ServiceDeps) ServiceContainer {
	if deps == nil {
		return ServiceContainer{}
	}
	repos := buildRepositories(deps.DB, deps.RedisClient)
	return buildDomainServices(deps, repos)
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

// startHTTPServerIfEnabled starts the HTTP server if enabled.
func startHTTPServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		DB:       deps.cfg.DB,
		Logger:   deps.logger,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error",
					"service", descriptor.name, "error", errMsg)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)

	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))

	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}

		handles = append(handles, backgroundServiceHandle{
			mode: svc.mode,
			name: svc.name,
			done: done,
		})
	}

	return handles
}

func newSchedulerBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeScheduler,
		name: "scheduler",
		start: func(ctx context.Context) error {
			if deps == nil || deps.cfg == nil {
				return nil
			}
			var schedulerCfg config.SchedulerConfig
			var cacheCfg config.CacheConfig
			if deps.cfg.Config != nil {
				schedulerCfg = deps.cfg.Config.Scheduler
				cacheCfg = deps.cfg.Config.Cache
			}
			return RunScheduler(ctx, SchedulerConfig{
				Services:  deps.cfg.Services,
				Scheduler: schedulerCfg,
				Cache:     cacheCfg,
				Logger:    deps.logger,
			})
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newSchedulerBackgroundService(deps),
	}
}

// ServiceStartupResult holds the results of starting all services.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

// startServices starts all enabled services and returns their completion channels.
func startServices(deps *serviceStartupDeps) ServiceStartupResult {
	return ServiceStartupResult{
		HTTPServer: startHTTPServerIfEnabled(deps),
		Background: startBackgroundServices(deps, buildBackgroundServices(deps)),
	}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	ctx := context.Background()
	serviceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	// Determine which services are enabled
	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	// Start all enabled services
	result := startServices(&serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})

	// Wait for shutdown signal or error
	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  result.HTTPServer,
		logger:      logger,
		backgrounds: result.Background,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	modes := []config.ServiceMode{
		config.ServiceModeHTTP,
		config.ServiceModeScheduler,
	}

	count := 0
	for _, mode := range modes {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	size := errorChannelCapacity(enabled) + 1
	if size < 1 {
		return 1
	}
	return size
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel() // Cancel service context before waiting
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel() // Cancel service context before waiting
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	// Gracefully stop HTTP server if running. The service context is already
	// cancelled at this point, so the drain deadline comes from a fresh one.
	if cfg.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	// Wait for background services to finish
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
