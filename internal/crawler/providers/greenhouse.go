package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/target/jobwatch/internal/domain/model"
)

const greenhouseAPIBase = "https://boards-api.greenhouse.io/v1/boards"

// Greenhouse serves boards hosted on boards.greenhouse.io and
// job-boards.greenhouse.io.
type Greenhouse struct {
	client  *http.Client
	apiBase string
}

func (g *Greenhouse) Name() string { return "greenhouse" }

func (g *Greenhouse) Matches(careerURL string) bool {
	return strings.Contains(strings.ToLower(careerURL), "greenhouse.io")
}

func (g *Greenhouse) Slug(careerURL string) string {
	for _, host := range []string{"boards.greenhouse.io", "job-boards.greenhouse.io", "greenhouse.io"} {
		if slug := firstPathSegment(careerURL, host); slug != "" {
			return slug
		}
	}
	return ""
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

type greenhouseJob struct {
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Departments []struct {
		Name string `json:"name"`
	} `json:"departments"`
}

func (g *Greenhouse) FetchJobs(ctx context.Context, slug string) ([]model.Job, error) {
	base := g.apiBase
	if base == "" {
		base = greenhouseAPIBase
	}
	url := fmt.Sprintf("%s/%s/jobs", base, slug)

	var resp greenhouseResponse
	if err := getJSON(ctx, g.client, url, &resp); err != nil {
		return nil, fmt.Errorf("greenhouse %s: %w", slug, err)
	}

	jobs := make([]model.Job, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		job := model.Job{
			Title:          j.Title,
			Location:       j.Location.Name,
			ApplicationURL: j.AbsoluteURL,
			PostedDate:     parseISO8601(j.UpdatedAt),
		}
		if len(j.Departments) > 0 {
			job.Department = j.Departments[0].Name
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
