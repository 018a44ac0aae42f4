// Package mocks provides mock implementations for testing the jobwatch crawl system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockCrawler := mocks.NewMockCrawler(ctrl)
//	mockCrawler.EXPECT().Crawl(gomock.Any(), gomock.Any()).Return(result)
package mocks

// Generate mock for Crawler interface from internal/core package.
// This creates MockCrawler with methods for all Crawler interface methods:
// Crawl
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=crawler_mock.go github.com/target/jobwatch/internal/core Crawler

// Generate mock for QueueBuilder interface from internal/core package.
// This creates MockQueueBuilder with methods for all QueueBuilder interface methods:
// Build
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=queue_builder_mock.go github.com/target/jobwatch/internal/core QueueBuilder

// Generate mock for CompanyRepository interface from internal/core package.
// This creates MockCompanyRepository with methods for all CompanyRepository interface methods:
// UpsertByCareerURL, GetByID, GetByCareerURL, TouchCrawled
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=company_repository_mock.go github.com/target/jobwatch/internal/core CompanyRepository
