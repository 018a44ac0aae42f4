package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/target/jobwatch/internal/domain/model"
)

const leverAPIBase = "https://api.lever.co/v0/postings"

// Lever serves boards hosted on jobs.lever.co.
type Lever struct {
	client  *http.Client
	apiBase string
}

func (l *Lever) Name() string { return "lever" }

func (l *Lever) Matches(careerURL string) bool {
	return strings.Contains(strings.ToLower(careerURL), "lever.co")
}

func (l *Lever) Slug(careerURL string) string {
	for _, host := range []string{"jobs.lever.co", "lever.co"} {
		if slug := firstPathSegment(careerURL, host); slug != "" {
			return slug
		}
	}
	return ""
}

type leverPosting struct {
	Text             string `json:"text"`
	DescriptionPlain string `json:"descriptionPlain"`
	ApplyURL         string `json:"applyUrl"`
	HostedURL        string `json:"hostedUrl"`
	CreatedAt        int64  `json:"createdAt"`
	WorkplaceType    string `json:"workplaceType"`
	Categories       struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
}

func (l *Lever) FetchJobs(ctx context.Context, slug string) ([]model.Job, error) {
	base := l.apiBase
	if base == "" {
		base = leverAPIBase
	}
	url := fmt.Sprintf("%s/%s", base, slug)

	var postings []leverPosting
	if err := getJSON(ctx, l.client, url, &postings); err != nil {
		return nil, fmt.Errorf("lever %s: %w", slug, err)
	}

	jobs := make([]model.Job, 0, len(postings))
	for _, p := range postings {
		var locationParts []string
		if p.Categories.Location != "" {
			locationParts = append(locationParts, p.Categories.Location)
		}
		if p.WorkplaceType != "" {
			locationParts = append(locationParts, p.WorkplaceType)
		}

		// Direct apply links are better than the hosted board page.
		applyURL := p.ApplyURL
		if applyURL == "" {
			applyURL = p.HostedURL
		}

		job := model.Job{
			Title:          p.Text,
			Description:    p.DescriptionPlain,
			Location:       strings.Join(locationParts, " - "),
			ApplicationURL: applyURL,
			Department:     p.Categories.Team,
			EmploymentType: p.Categories.Commitment,
		}
		if p.CreatedAt > 0 {
			t := time.UnixMilli(p.CreatedAt).UTC()
			job.PostedDate = &t
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
