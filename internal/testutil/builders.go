// Package testutil provides testing utilities and helpers for the jobwatch crawl system.
package testutil

import (
	"fmt"
	"time"

	"github.com/target/jobwatch/internal/domain/model"
)

// QueueEntryBuilder provides a fluent interface for building QueueEntry objects for testing.
type QueueEntryBuilder struct {
	entry model.QueueEntry
}

// NewQueueEntry creates a new QueueEntryBuilder with sensible defaults.
func NewQueueEntry(companyID int64) *QueueEntryBuilder {
	return &QueueEntryBuilder{
		entry: model.QueueEntry{
			CompanyID:     companyID,
			CompanyName:   fmt.Sprintf("company-%d", companyID),
			CareerPageURL: fmt.Sprintf("https://company-%d.example.com/careers", companyID),
		},
	}
}

// WithName sets the company name.
func (b *QueueEntryBuilder) WithName(name string) *QueueEntryBuilder {
	b.entry.CompanyName = name
	return b
}

// WithURL sets the career page URL.
func (b *QueueEntryBuilder) WithURL(url string) *QueueEntryBuilder {
	b.entry.CareerPageURL = url
	return b
}

// WithATS sets the detected ATS type.
func (b *QueueEntryBuilder) WithATS(ats string) *QueueEntryBuilder {
	b.entry.ATSType = &ats
	return b
}

// WithSubscribers sets the subscriber count.
func (b *QueueEntryBuilder) WithSubscribers(n int) *QueueEntryBuilder {
	b.entry.SubscriberCount = int64(n)
	return b
}

// WithLastCrawled sets the last crawl time.
func (b *QueueEntryBuilder) WithLastCrawled(t time.Time) *QueueEntryBuilder {
	b.entry.LastCrawled = &t
	return b
}

// WithCacheExpiresAt sets the cache expiry.
func (b *QueueEntryBuilder) WithCacheExpiresAt(t time.Time) *QueueEntryBuilder {
	b.entry.CacheExpiresAt = &t
	return b
}

// WithPriority sets the computed priority.
func (b *QueueEntryBuilder) WithPriority(p model.CrawlPriority) *QueueEntryBuilder {
	b.entry.Priority = p
	return b
}

// Build returns the constructed QueueEntry.
func (b *QueueEntryBuilder) Build() model.QueueEntry {
	return b.entry
}

// JobBuilder provides a fluent interface for building Job postings for testing.
type JobBuilder struct {
	job model.Job
}

// NewJob creates a new JobBuilder with sensible defaults.
func NewJob(companyID int64, title string) *JobBuilder {
	return &JobBuilder{
		job: model.Job{
			CompanyID: companyID,
			Title:     title,
			IsActive:  true,
		},
	}
}

// WithLocation sets the posting location.
func (b *JobBuilder) WithLocation(location string) *JobBuilder {
	b.job.Location = location
	return b
}

// WithDescription sets the posting description.
func (b *JobBuilder) WithDescription(desc string) *JobBuilder {
	b.job.Description = desc
	return b
}

// WithApplicationURL sets the application link.
func (b *JobBuilder) WithApplicationURL(url string) *JobBuilder {
	b.job.ApplicationURL = url
	return b
}

// WithPostedDate sets the posting date.
func (b *JobBuilder) WithPostedDate(t time.Time) *JobBuilder {
	b.job.PostedDate = &t
	return b
}

// WithDepartment sets the department.
func (b *JobBuilder) WithDepartment(dept string) *JobBuilder {
	b.job.Department = dept
	return b
}

// WithEmploymentType sets the employment type.
func (b *JobBuilder) WithEmploymentType(et string) *JobBuilder {
	b.job.EmploymentType = et
	return b
}

// Build returns the constructed Job.
func (b *JobBuilder) Build() model.Job {
	return b.job
}

// Common queue entry presets

// SubscribedEntry creates an entry with subscribers and no cache.
func SubscribedEntry(companyID int64, subscribers int) model.QueueEntry {
	return NewQueueEntry(companyID).WithSubscribers(subscribers).Build()
}

// ExpiredEntry creates an entry whose cache expired an hour ago.
func ExpiredEntry(companyID int64, subscribers int, now time.Time) model.QueueEntry {
	return NewQueueEntry(companyID).
		WithSubscribers(subscribers).
		WithCacheExpiresAt(now.Add(-time.Hour)).
		Build()
}

// FreshEntry creates an entry whose cache is still valid.
func FreshEntry(companyID int64, subscribers int, now time.Time) model.QueueEntry {
	return NewQueueEntry(companyID).
		WithSubscribers(subscribers).
		WithCacheExpiresAt(now.Add(time.Hour)).
		Build()
}
