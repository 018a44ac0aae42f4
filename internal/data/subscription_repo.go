package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/target/jobwatch/internal/domain/model"
)

// SubscriptionRepo provides database operations for company subscriptions.
type SubscriptionRepo struct {
	DB *sql.DB
}

// NewSubscriptionRepo creates a new SubscriptionRepo instance with the given database connection.
func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo {
	return &SubscriptionRepo{DB: db}
}

// Subscribe records a user's interest in a company. Subscribing twice is a
// no-op; the existing row wins.
func (r *SubscriptionRepo) Subscribe(ctx context.Context, userID string, companyID int64) (*model.Subscription, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	query := `
		INSERT INTO company_subscriptions (user_id, company_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT unique_user_company DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING subscription_id, user_id, company_id, created_at
	`

	var s model.Subscription
	err := r.DB.QueryRowContext(ctx, query, userID, companyID).
		Scan(&s.ID, &s.UserID, &s.CompanyID, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("subscribe user to company %d: %w", companyID, err)
	}
	return &s, nil
}

// Unsubscribe removes a user's subscription. Returns false when no row existed.
func (r *SubscriptionRepo) Unsubscribe(ctx context.Context, userID string, companyID int64) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM company_subscriptions WHERE user_id = $1 AND company_id = $2`,
		userID, companyID)
	if err != nil {
		return false, fmt.Errorf("unsubscribe user from company %d: %w", companyID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count deleted subscriptions: %w", err)
	}
	return affected > 0, nil
}

// CountForCompany returns the number of distinct subscribers for a company.
func (r *SubscriptionRepo) CountForCompany(ctx context.Context, companyID int64) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM company_subscriptions WHERE company_id = $1`,
		companyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count subscribers for company %d: %w", companyID, err)
	}
	return count, nil
}
