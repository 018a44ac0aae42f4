package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrCompanyNotFound is returned when an operation requires an existing company.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrJobNotFound is returned when a posting lookup finds no row.
	ErrJobNotFound = errors.New("job not found")

	// ErrCrawlRequestNotFound is returned when a tracked request has expired or never existed.
	ErrCrawlRequestNotFound = errors.New("crawl request not found")
)
