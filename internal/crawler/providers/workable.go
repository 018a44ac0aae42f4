package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/target/jobwatch/internal/domain/model"
)

const workableAPIBase = "https://apply.workable.com/api/v1/widget/accounts"

// Workable serves boards hosted on apply.workable.com.
type Workable struct {
	client  *http.Client
	apiBase string
}

func (w *Workable) Name() string { return "workable" }

func (w *Workable) Matches(careerURL string) bool {
	return strings.Contains(strings.ToLower(careerURL), "workable.com")
}

func (w *Workable) Slug(careerURL string) string {
	for _, host := range []string{"apply.workable.com", "workable.com"} {
		slug := firstPathSegment(careerURL, host)
		if slug == "" {
			continue
		}
		// API paths on the same host are not company slugs.
		switch slug {
		case "api", "v1", "widget":
			continue
		}
		return slug
	}
	return ""
}

type workableResponse struct {
	Jobs []workableJob `json:"jobs"`
}

type workableJob struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	Department     string `json:"department"`
	EmploymentType string `json:"employment_type"`
	Location       struct {
		City string `json:"city"`
	} `json:"location"`
}

func (w *Workable) FetchJobs(ctx context.Context, slug string) ([]model.Job, error) {
	base := w.apiBase
	if base == "" {
		base = workableAPIBase
	}
	url := fmt.Sprintf("%s/%s", base, slug)

	var resp workableResponse
	if err := getJSON(ctx, w.client, url, &resp); err != nil {
		return nil, fmt.Errorf("workable %s: %w", slug, err)
	}

	jobs := make([]model.Job, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		jobs = append(jobs, model.Job{
			Title:          j.Title,
			Location:       j.Location.City,
			ApplicationURL: j.URL,
			Department:     j.Department,
			EmploymentType: j.EmploymentType,
		})
	}
	return jobs, nil
}
