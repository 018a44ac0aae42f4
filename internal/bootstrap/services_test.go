package bootstrap

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/jobwatch/config"
)

func TestErrorChannelCapacity(t *testing.T) {
	tests := []struct {
		name  string
		modes []config.ServiceMode
		want  int
	}{
		{
			name: "no services enabled",
			want: 0,
		},
		{
			name:  "http only",
			modes: []config.ServiceMode{config.ServiceModeHTTP},
			want:  1,
		},
		{
			name:  "scheduler only",
			modes: []config.ServiceMode{config.ServiceModeScheduler},
			want:  1,
		},
		{
			name:  "http and scheduler",
			modes: []config.ServiceMode{config.ServiceModeHTTP, config.ServiceModeScheduler},
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled := make(map[config.ServiceMode]bool, len(tt.modes))
			for _, mode := range tt.modes {
				enabled[mode] = true
			}
			assert.Equal(t, tt.want, errorChannelCapacity(enabled))
		})
	}
}

func TestErrorChannelBufferSize(t *testing.T) {
	// The buffer always leaves one slot of headroom so a late error does not
	// block a goroutine during shutdown.
	assert.Equal(t, 1, errorChannelBufferSize(nil))
	assert.Equal(t, 2, errorChannelBufferSize(map[config.ServiceMode]bool{
		config.ServiceModeHTTP: true,
	}))
	assert.Equal(t, 3, errorChannelBufferSize(map[config.ServiceMode]bool{
		config.ServiceModeHTTP:      true,
		config.ServiceModeScheduler: true,
	}))
}

func TestBuildRepositories_WithoutRedis(t *testing.T) {
	repos := buildRepositories(nil, nil)
	require.NotNil(t, repos)

	assert.NotNil(t, repos.CompanyRepo)
	assert.NotNil(t, repos.JobRepo)
	assert.NotNil(t, repos.JobCacheRepo)
	assert.NotNil(t, repos.CrawlLogRepo)
	assert.NotNil(t, repos.QueueRepo)

	// Redis-backed adapters stay unset without a client.
	assert.Nil(t, repos.RequestRepo)
	assert.Nil(t, repos.SharedCache)
}

func TestNewServices_NilDeps(t *testing.T) {
	container := NewServices(nil)
	assert.Nil(t, container.Crawl)
	assert.Nil(t, container.Queue)
	assert.Nil(t, container.Requests)
}

func TestNewServices_WithoutRedis(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.Sanitize()

	container := NewServices(&ServiceDeps{
		Config: cfg,
		Logger: slog.Default(),
	})

	assert.NotNil(t, container.Crawl)
	assert.NotNil(t, container.Queue)
	assert.NotNil(t, container.Stats)
	assert.NotNil(t, container.Cache)
	assert.NotNil(t, container.Gate)

	// The crawl-request surface needs Redis and is dropped without it.
	assert.Nil(t, container.Requests)
}

func TestBuildRouterServices_OmitsMissingPieces(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.Sanitize()
	container := NewServices(&ServiceDeps{Config: cfg})

	services := buildRouterServices(&HTTPServerConfig{
		Config:   cfg,
		Services: container,
	}, slog.Default())

	assert.NotNil(t, services.Jobs)
	assert.NotNil(t, services.Stats)
	assert.Nil(t, services.Requests)
	assert.Nil(t, services.DB)
	assert.Nil(t, services.Cache)
}

func TestRunScheduler_RequiresServices(t *testing.T) {
	err := RunScheduler(t.Context(), SchedulerConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crawl and queue services")
}

func TestRunServicesWithShutdown_NilConfig(t *testing.T) {
	require.Error(t, RunServicesWithShutdown(nil))
	require.Error(t, RunServicesWithShutdown(&ServiceOrchestrationConfig{}))
}
