package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/target/jobwatch/internal/crawler/htmlparse"
	"github.com/target/jobwatch/internal/domain/model"
	apperrors "github.com/target/jobwatch/internal/errors"
)

// CrawlRequestsService is the slice of the crawl request service the API
// needs. Implemented by service.CrawlRequestService.
type CrawlRequestsService interface {
	Submit(ctx context.Context, targets []model.CrawlRequestTarget) (*model.CrawlRequest, error)
	Status(ctx context.Context, id string) (*model.CrawlRequest, error)
	Run(ctx context.Context, id string, filter *htmlparse.Filter) error
}

// CrawlHandlers serves ad-hoc crawl submission and status polling.
type CrawlHandlers struct {
	Svc    CrawlRequestsService
	Logger *slog.Logger
}

type crawlTargetBody struct {
	Name      string `json:"name"`
	CareerURL string `json:"career_url"`
}

type crawlRequestBody struct {
	Companies []crawlTargetBody `json:"companies"`
	// Filter names a predefined filter (security, backend, ...).
	Filter string `json:"filter,omitempty"`
	// FilterSpec declares a custom filter; ignored when Filter is set.
	FilterSpec *htmlparse.FilterSpec `json:"filter_spec,omitempty"`
}

type crawlAcceptedResponse struct {
	RequestID string                   `json:"request_id"`
	Status    model.CrawlRequestStatus `json:"status"`
	Companies int                      `json:"companies"`
}

// Create accepts a crawl request and starts it in the background.
// POST /api/crawl
func (h *CrawlHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var body crawlRequestBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	filter, err := resolveFilter(&body)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	targets := make([]model.CrawlRequestTarget, len(body.Companies))
	for i, c := range body.Companies {
		targets[i] = model.CrawlRequestTarget{Name: c.Name, URL: c.CareerURL}
	}

	req, err := h.Svc.Submit(r.Context(), targets)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	// The crawl outlives this request; detach it from the client connection.
	bg := context.WithoutCancel(r.Context())
	go func() {
		if err := h.Svc.Run(bg, req.ID, filter); err != nil {
			h.logger().Error("crawl request failed", "request_id", req.ID, "error", err)
		}
	}()

	WriteJSON(w, http.StatusAccepted, crawlAcceptedResponse{
		RequestID: req.ID,
		Status:    req.Status,
		Companies: len(req.Targets),
	})
}

type crawlStatusResponse struct {
	*model.CrawlRequest
	Summary model.CrawlRequestSummary `json:"summary"`
}

// Get returns the tracked state of a crawl request.
// GET /api/crawl/{id}
func (h *CrawlHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteAppError(w, apperrors.Validationf("request id is required"))
		return
	}

	req, err := h.Svc.Status(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, crawlStatusResponse{
		CrawlRequest: req,
		Summary:      req.Summarize(),
	})
}

// resolveFilter compiles the request's filter selection. A named filter wins
// over an inline spec; an unknown name is a validation error.
func resolveFilter(body *crawlRequestBody) (*htmlparse.Filter, error) {
	if body.Filter != "" {
		f := htmlparse.GetFilter(body.Filter)
		if f == nil {
			return nil, apperrors.Validationf("unknown filter %q", body.Filter)
		}
		return f, nil
	}
	if body.FilterSpec != nil {
		return htmlparse.NewFilter(*body.FilterSpec), nil
	}
	return nil, nil
}

func (h *CrawlHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
