package model

import (
	"fmt"
	"strings"
	"time"
)

// CrawlPriority orders queue entries; lower values run first.
type CrawlPriority int

const (
	// PriorityCritical marks an expired cache with heavy subscriber demand.
	PriorityCritical CrawlPriority = iota + 1
	// PriorityHigh marks heavy subscriber demand with a still-fresh cache.
	PriorityHigh
	// PriorityNormal marks any subscribed company.
	PriorityNormal
	// PriorityLow marks an expired cache nobody subscribes to.
	PriorityLow
	// PriorityBackground marks everything else.
	PriorityBackground
)

// String returns the priority name used in stats histograms.
func (p CrawlPriority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	case PriorityBackground:
		return "background"
	default:
		return fmt.Sprintf("priority_%d", int(p))
	}
}

// QueueMode selects which candidate set a queue build draws from.
type QueueMode int

const (
	// QueueModeStale selects companies whose cache has expired or that were
	// never crawled, subscribed or not. Scheduled sweeps use this mode.
	QueueModeStale QueueMode = iota
	// QueueModeAllSubscribed selects every company with at least one
	// subscriber regardless of cache freshness. Used for previews.
	QueueModeAllSubscribed
)

// String returns the mode name used in logs.
func (m QueueMode) String() string {
	switch m {
	case QueueModeStale:
		return "stale"
	case QueueModeAllSubscribed:
		return "all_subscribed"
	default:
		return fmt.Sprintf("mode_%d", int(m))
	}
}

// QueueEntry is one deduplicated unit of crawl work.
type QueueEntry struct {
	CompanyID       int64         `json:"company_id"       db:"company_id"`
	CompanyName     string        `json:"company_name"     db:"company_name"`
	CareerPageURL   string        `json:"career_page_url"  db:"career_page_url"`
	ATSType         *string       `json:"ats_type"         db:"ats_type"`
	SubscriberCount int64         `json:"subscriber_count" db:"subscriber_count"`
	LastCrawled     *time.Time    `json:"last_crawled"     db:"last_crawled"`
	CacheExpiresAt  *time.Time    `json:"cache_expires_at" db:"cache_expires_at"`
	Priority        CrawlPriority `json:"priority"`
}

// CacheExpired reports whether the entry's cache is missing or stale at now.
func (e *QueueEntry) CacheExpired(now time.Time) bool {
	return e.CacheExpiresAt == nil || e.CacheExpiresAt.Before(now)
}

// APICapable reports whether the recorded ATS tag maps to a hosted job-board API.
func (e *QueueEntry) APICapable() bool {
	if e.ATSType == nil {
		return false
	}
	switch strings.ToLower(*e.ATSType) {
	case "greenhouse", "lever", "ashby", "workable":
		return true
	default:
		return false
	}
}

// Per-entry duration estimates used for queue ETA reporting.
const (
	estimatedAPISeconds  = 3
	estimatedHTMLSeconds = 20
)

// QueueStats summarises a built queue for observability.
type QueueStats struct {
	TotalEntries         int              `json:"total_entries"`
	UniqueCompanies      int              `json:"unique_companies"`
	TotalSubscribers     int64            `json:"total_subscribers"`
	ByPriority           map[string]int   `json:"by_priority"`
	ByATSType            map[string]int   `json:"by_ats_type"`
	EstimatedDurationMin float64          `json:"estimated_duration_minutes"`
}

// BuildQueueStats derives stats from an ordered queue.
func BuildQueueStats(entries []QueueEntry) QueueStats {
	stats := QueueStats{
		TotalEntries: len(entries),
		ByPriority:   make(map[string]int),
		ByATSType:    make(map[string]int),
	}

	seen := make(map[int64]struct{}, len(entries))
	var estimatedSeconds float64
	for i := range entries {
		e := &entries[i]
		if _, dup := seen[e.CompanyID]; !dup {
			seen[e.CompanyID] = struct{}{}
			stats.TotalSubscribers += e.SubscriberCount
		}
		stats.ByPriority[e.Priority.String()]++

		ats := "unknown"
		if e.ATSType != nil && *e.ATSType != "" {
			ats = strings.ToLower(*e.ATSType)
		}
		stats.ByATSType[ats]++

		if e.APICapable() {
			estimatedSeconds += estimatedAPISeconds
		} else {
			estimatedSeconds += estimatedHTMLSeconds
		}
	}
	stats.UniqueCompanies = len(seen)
	stats.EstimatedDurationMin = estimatedSeconds / 60

	return stats
}
