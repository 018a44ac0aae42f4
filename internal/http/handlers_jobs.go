package httpx

import (
	"context"
	"net/http"
	"strconv"

	"github.com/target/jobwatch/internal/domain/model"
	apperrors "github.com/target/jobwatch/internal/errors"
)

// CachedJobsService returns the cached postings for a company.
// Implemented by service.CacheService.
type CachedJobsService interface {
	CachedJobs(ctx context.Context, companyID int64) ([]model.Job, error)
}

// JobsHandlers serves cached job postings.
type JobsHandlers struct {
	Svc CachedJobsService
}

type companyJobsResponse struct {
	CompanyID int64       `json:"company_id"`
	Count     int         `json:"count"`
	Jobs      []model.Job `json:"jobs"`
}

// CompanyJobs returns the fresh cached postings for one company.
// GET /api/companies/{id}/jobs
func (h *JobsHandlers) CompanyJobs(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || companyID <= 0 {
		WriteAppError(w, apperrors.Validationf("company id must be a positive integer"))
		return
	}

	jobs, err := h.Svc.CachedJobs(r.Context(), companyID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}

	WriteJSON(w, http.StatusOK, companyJobsResponse{
		CompanyID: companyID,
		Count:     len(jobs),
		Jobs:      jobs,
	})
}
