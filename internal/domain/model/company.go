package model

import "time"

// Company is a tracked employer whose career page we harvest.
type Company struct {
	ID            int64      `json:"company_id"       db:"company_id"`
	Name          string     `json:"company_name"     db:"company_name"`
	CareerPageURL string     `json:"career_page_url"  db:"career_page_url"`
	ATSType       *string    `json:"ats_type"         db:"ats_type"`
	LastCrawled   *time.Time `json:"last_crawled"     db:"last_crawled"`
	CreatedAt     time.Time  `json:"created_at"       db:"created_at"`
}

// UpsertCompanyRequest creates or refreshes a company keyed by its career page URL.
type UpsertCompanyRequest struct {
	Name          string
	CareerPageURL string
	ATSType       *string
}
