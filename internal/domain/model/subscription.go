package model

import "time"

// Subscription ties a user to a company they want postings for.
// The crawl pipeline only ever aggregates these into subscriber counts;
// user identity never leaves the queue builder.
type Subscription struct {
	ID        int64     `json:"subscription_id" db:"subscription_id"`
	UserID    string    `json:"user_id"         db:"user_id"`
	CompanyID int64     `json:"company_id"      db:"company_id"`
	CreatedAt time.Time `json:"created_at"      db:"created_at"`
}
