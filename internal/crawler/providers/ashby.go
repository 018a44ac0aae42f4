package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/target/jobwatch/internal/domain/model"
)

const ashbyAPIBase = "https://api.ashbyhq.com/posting-api/job-board"

// Ashby serves boards hosted on jobs.ashbyhq.com.
type Ashby struct {
	client  *http.Client
	apiBase string
}

func (a *Ashby) Name() string { return "ashby" }

func (a *Ashby) Matches(careerURL string) bool {
	return strings.Contains(strings.ToLower(careerURL), "ashbyhq.com")
}

func (a *Ashby) Slug(careerURL string) string {
	for _, host := range []string{"jobs.ashbyhq.com", "ashbyhq.com"} {
		if slug := firstPathSegment(careerURL, host); slug != "" {
			return slug
		}
	}
	return ""
}

type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

type ashbyJob struct {
	Title           string `json:"title"`
	Location        string `json:"location"`
	DescriptionHTML string `json:"descriptionHtml"`
	ApplicationURL  string `json:"applicationUrl"`
	JobURL          string `json:"jobUrl"`
	PublishedDate   string `json:"publishedDate"`
	Department      string `json:"department"`
	EmploymentType  string `json:"employmentType"`
}

func (a *Ashby) FetchJobs(ctx context.Context, slug string) ([]model.Job, error) {
	base := a.apiBase
	if base == "" {
		base = ashbyAPIBase
	}
	url := fmt.Sprintf("%s/%s", base, slug)

	var resp ashbyResponse
	if err := getJSON(ctx, a.client, url, &resp); err != nil {
		return nil, fmt.Errorf("ashby %s: %w", slug, err)
	}

	jobs := make([]model.Job, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		applyURL := j.ApplicationURL
		if applyURL == "" {
			applyURL = j.JobURL
		}
		jobs = append(jobs, model.Job{
			Title:          j.Title,
			Location:       j.Location,
			Description:    j.DescriptionHTML,
			ApplicationURL: applyURL,
			PostedDate:     parseISO8601(j.PublishedDate),
			Department:     j.Department,
			EmploymentType: j.EmploymentType,
		})
	}
	return jobs, nil
}
