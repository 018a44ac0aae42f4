// Package model defines the core data types used throughout the jobwatch crawl system.
package model

import (
	"strings"
	"time"
)

// Job is a single posting harvested from a company's career page or
// its hosted job-board API. Jobs are unique per (company, title, location).
type Job struct {
	ID             int64      `json:"job_id"          db:"job_id"`
	CompanyID      int64      `json:"company_id"      db:"company_id"`
	Title          string     `json:"title"           db:"title"`
	Description    string     `json:"description"     db:"description"`
	Requirements   string     `json:"requirements"    db:"requirements"`
	Location       string     `json:"location"        db:"location"`
	ApplicationURL string     `json:"application_url" db:"application_url"`
	PostedDate     *time.Time `json:"posted_date"     db:"posted_date"`
	ScrapedDate    time.Time  `json:"scraped_date"    db:"scraped_date"`
	IsActive       bool       `json:"is_active"       db:"is_active"`

	// Optional provider metadata; not every source exposes these.
	Department     string `json:"department,omitempty"`
	EmploymentType string `json:"employment_type,omitempty"`
}

// Normalize trims whitespace on identity fields so upserts keyed on
// (company_id, title, location) behave consistently across sources.
func (j *Job) Normalize() {
	j.Title = strings.TrimSpace(j.Title)
	j.Location = strings.TrimSpace(j.Location)
	j.ApplicationURL = strings.TrimSpace(j.ApplicationURL)
}

// Valid reports whether the posting carries the minimum fields worth storing.
func (j *Job) Valid() bool {
	return strings.TrimSpace(j.Title) != ""
}
