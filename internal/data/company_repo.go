package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/target/jobwatch/internal/domain/model"
)

// CompanyRepo provides database operations for tracked companies.
type CompanyRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCompanyRepo creates a new CompanyRepo instance with the given database connection.
func NewCompanyRepo(db *sql.DB) *CompanyRepo {
	return &CompanyRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// NewCompanyRepoWithTimeProvider creates a CompanyRepo with a custom TimeProvider (useful for testing).
func NewCompanyRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *CompanyRepo {
	return &CompanyRepo{DB: db, timeProvider: tp}
}

const companyColumns = `
  company_id,
  company_name,
  career_page_url,
  ats_type,
  last_crawled,
  created_at
`

// UpsertByCareerURL creates a company on first reference and refreshes its
// name and ATS tag on subsequent references. Keyed by the unique career page URL.
func (r *CompanyRepo) UpsertByCareerURL(
	ctx context.Context,
	req *model.UpsertCompanyRequest,
) (*model.Company, error) {
	if req == nil || req.CareerPageURL == "" {
		return nil, fmt.Errorf("career page url is required")
	}

	query := `
		INSERT INTO companies (company_name, career_page_url, ats_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (career_page_url) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			ats_type = COALESCE(EXCLUDED.ats_type, companies.ats_type)
		RETURNING ` + companyColumns

	row := r.DB.QueryRowContext(ctx, query, req.Name, req.CareerPageURL, req.ATSType)
	company, err := scanCompany(row)
	if err != nil {
		return nil, fmt.Errorf("upsert company: %w", err)
	}
	return company, nil
}

// GetByID fetches a company by its id.
func (r *CompanyRepo) GetByID(ctx context.Context, id int64) (*model.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE company_id = $1`

	company, err := scanCompany(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company %d: %w", id, err)
	}
	return company, nil
}

// GetByCareerURL fetches a company by its unique career page URL.
func (r *CompanyRepo) GetByCareerURL(ctx context.Context, url string) (*model.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE career_page_url = $1`

	company, err := scanCompany(r.DB.QueryRowContext(ctx, query, url))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company by url: %w", err)
	}
	return company, nil
}

// TouchCrawled records a successful crawl pass: last_crawled advances and the
// detected ATS tag is persisted when known.
func (r *CompanyRepo) TouchCrawled(ctx context.Context, id int64, atsType string) error {
	now := r.timeProvider.Now().UTC()

	var err error
	if atsType != "" {
		_, err = r.DB.ExecContext(ctx,
			`UPDATE companies SET last_crawled = $2, ats_type = $3 WHERE company_id = $1`,
			id, now, atsType)
	} else {
		_, err = r.DB.ExecContext(ctx,
			`UPDATE companies SET last_crawled = $2 WHERE company_id = $1`,
			id, now)
	}
	if err != nil {
		return fmt.Errorf("touch company %d: %w", id, err)
	}
	return nil
}

// scanCompany scans a single company row from a QueryRow result.
func scanCompany(row *sql.Row) (*model.Company, error) {
	var c model.Company
	var atsType sql.NullString
	var lastCrawled sql.NullTime

	err := row.Scan(&c.ID, &c.Name, &c.CareerPageURL, &atsType, &lastCrawled, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if atsType.Valid {
		c.ATSType = &atsType.String
	}
	if lastCrawled.Valid {
		t := lastCrawled.Time
		c.LastCrawled = &t
	}
	return &c, nil
}
