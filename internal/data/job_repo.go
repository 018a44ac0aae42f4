package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/target/jobwatch/internal/data/pgxutil"
	"github.com/target/jobwatch/internal/domain/model"
)

// JobRepo provides database operations for harvested job postings.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewJobRepo creates a new JobRepo instance with the given database connection.
func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// NewJobRepoWithTimeProvider creates a JobRepo with a custom TimeProvider (useful for testing).
func NewJobRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *JobRepo {
	return &JobRepo{DB: db, timeProvider: tp}
}

const jobColumns = `
  job_id,
  company_id,
  title,
  description,
  requirements,
  location,
  application_url,
  posted_date,
  scraped_date,
  is_active
`

// Upsert inserts a posting or refreshes it when (company_id, title, location)
// already exists. Refreshing re-activates the posting and advances scraped_date.
// Returns the posting id and whether the row was newly inserted.
func (r *JobRepo) Upsert(ctx context.Context, job *model.Job) (int64, bool, error) {
	if job == nil {
		return 0, false, errors.New("job is required")
	}
	job.Normalize()
	if !job.Valid() {
		return 0, false, errors.New("job title is required")
	}

	now := r.timeProvider.Now().UTC()

	query := `
		INSERT INTO jobs (
			company_id, title, description, requirements, location,
			application_url, posted_date, scraped_date, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		ON CONFLICT ON CONSTRAINT unique_job_per_company DO UPDATE SET
			description = EXCLUDED.description,
			requirements = EXCLUDED.requirements,
			application_url = EXCLUDED.application_url,
			posted_date = EXCLUDED.posted_date,
			scraped_date = EXCLUDED.scraped_date,
			is_active = TRUE
		RETURNING job_id, (xmax = 0) AS inserted
	`

	var id int64
	var inserted bool
	err := r.DB.QueryRowContext(ctx, query,
		job.CompanyID, job.Title, job.Description, job.Requirements, job.Location,
		job.ApplicationURL, job.PostedDate, now,
	).Scan(&id, &inserted)
	if err != nil {
		return 0, false, fmt.Errorf("upsert job: %w", err)
	}

	job.ID = id
	job.ScrapedDate = now
	job.IsActive = true
	return id, inserted, nil
}

// MarkInactiveExcept deactivates every active posting of the company whose id
// is not in the fresh set. Called once per successful crawl pass so postings
// that vanished from the source stop being served.
func (r *JobRepo) MarkInactiveExcept(ctx context.Context, companyID int64, freshIDs []int64) (int64, error) {
	if freshIDs == nil {
		freshIDs = []int64{}
	}

	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, execErr := conn.Exec(ctx, `
			UPDATE jobs
			SET is_active = FALSE
			WHERE company_id = $1
			  AND is_active
			  AND job_id != ALL($2::bigint[])
		`, companyID, freshIDs)
		if execErr != nil {
			return execErr
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("mark jobs inactive for company %d: %w", companyID, err)
	}
	return affected, nil
}

// ActiveByCompany returns the company's active postings, newest first.
func (r *JobRepo) ActiveByCompany(ctx context.Context, companyID int64) ([]model.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE company_id = $1 AND is_active
		ORDER BY scraped_date DESC, job_id DESC
	`

	var jobs []model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, query, companyID)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		collected, collectErr := pgx.CollectRows(rows, rowToJob)
		if collectErr != nil {
			return collectErr
		}
		jobs = collected
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query active jobs for company %d: %w", companyID, err)
	}
	return jobs, nil
}

// jobRow matches the jobs table schema so pgx.RowToStructByName can scan it.
type jobRow struct {
	JobID          int64        `db:"job_id"`
	CompanyID      int64        `db:"company_id"`
	Title          string       `db:"title"`
	Description    string       `db:"description"`
	Requirements   string       `db:"requirements"`
	Location       string       `db:"location"`
	ApplicationURL string       `db:"application_url"`
	PostedDate     sql.NullTime `db:"posted_date"`
	ScrapedDate    time.Time    `db:"scraped_date"`
	IsActive       bool         `db:"is_active"`
}

func (row *jobRow) toDomainJob() model.Job {
	job := model.Job{
		ID:             row.JobID,
		CompanyID:      row.CompanyID,
		Title:          row.Title,
		Description:    row.Description,
		Requirements:   row.Requirements,
		Location:       row.Location,
		ApplicationURL: row.ApplicationURL,
		ScrapedDate:    row.ScrapedDate,
		IsActive:       row.IsActive,
	}
	if row.PostedDate.Valid {
		t := row.PostedDate.Time
		job.PostedDate = &t
	}
	return job
}

// rowToJob maps a pgx row to model.Job using pgx v5 generics.
func rowToJob(row pgx.CollectableRow) (model.Job, error) {
	dbRow, err := pgx.RowToStructByName[jobRow](row)
	if err != nil {
		return model.Job{}, fmt.Errorf("scan job row: %w", err)
	}
	return dbRow.toDomainJob(), nil
}
