package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/target/jobwatch/internal/errors"
	"github.com/target/jobwatch/internal/service"
)

// StatsService summarises recent crawl activity.
// Implemented by service.StatsService.
type StatsService interface {
	Overview(ctx context.Context, window time.Duration) (*service.CrawlStats, error)
}

// StatsHandlers serves the crawl activity overview.
type StatsHandlers struct {
	Svc StatsService
}

// Overview returns crawl log, cache, and rate gate statistics.
// GET /api/stats?hours=24
func (h *StatsHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	var window time.Duration
	if raw := r.URL.Query().Get("hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours < 1 {
			WriteAppError(w, apperrors.Validationf("hours must be a positive integer"))
			return
		}
		window = time.Duration(hours) * time.Hour
	}

	stats, err := h.Svc.Overview(r.Context(), window)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}
