package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/jobwatch/internal/domain/model"
	"github.com/target/jobwatch/internal/testutil"
)

func TestJobRepo_Upsert(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewJobRepo(db)
		company := createTestCompany(t, db, "upsert-jobs")

		job := &model.Job{
			CompanyID:      company.ID,
			Title:          "  Backend Engineer ",
			Description:    "Build services",
			Location:       "Remote",
			ApplicationURL: "https://example.com/apply/1",
		}
		id, inserted, err := repo.Upsert(ctx, job)
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.NotZero(t, id)
		assert.Equal(t, "Backend Engineer", job.Title)
		assert.True(t, job.IsActive)
		assert.NotZero(t, job.ScrapedDate)

		// Same title and location dedupes to the same row.
		dup := &model.Job{
			CompanyID:      company.ID,
			Title:          "Backend Engineer",
			Description:    "Build more services",
			Location:       "Remote",
			ApplicationURL: "https://example.com/apply/1b",
		}
		dupID, dupInserted, err := repo.Upsert(ctx, dup)
		require.NoError(t, err)
		assert.False(t, dupInserted)
		assert.Equal(t, id, dupID)

		active, err := repo.ActiveByCompany(ctx, company.ID)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "Build more services", active[0].Description)
		assert.Equal(t, "https://example.com/apply/1b", active[0].ApplicationURL)

		// Same title in a different location is a distinct posting.
		other := &model.Job{CompanyID: company.ID, Title: "Backend Engineer", Location: "NYC"}
		otherID, otherInserted, err := repo.Upsert(ctx, other)
		require.NoError(t, err)
		assert.True(t, otherInserted)
		assert.NotEqual(t, id, otherID)
	})
}

func TestJobRepo_Upsert_Validation(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db)

		_, _, err := repo.Upsert(context.Background(), nil)
		require.Error(t, err)

		_, _, err = repo.Upsert(context.Background(), &model.Job{CompanyID: 1, Title: "   "})
		require.Error(t, err)
	})
}

func TestJobRepo_Upsert_ReactivatesInactive(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewJobRepo(db)
		company := createTestCompany(t, db, "reactivate")

		job := &model.Job{CompanyID: company.ID, Title: "SRE", Location: "Berlin"}
		id, _, err := repo.Upsert(ctx, job)
		require.NoError(t, err)

		gone, err := repo.MarkInactiveExcept(ctx, company.ID, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 1, gone)

		active, err := repo.ActiveByCompany(ctx, company.ID)
		require.NoError(t, err)
		assert.Empty(t, active)

		// The posting reappearing in a crawl flips it back on.
		again := &model.Job{CompanyID: company.ID, Title: "SRE", Location: "Berlin"}
		againID, inserted, err := repo.Upsert(ctx, again)
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.Equal(t, id, againID)

		active, err = repo.ActiveByCompany(ctx, company.ID)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.True(t, active[0].IsActive)
	})
}

func TestJobRepo_MarkInactiveExcept(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewJobRepo(db)
		company := createTestCompany(t, db, "mark-inactive")
		other := createTestCompany(t, db, "untouched")

		var freshIDs []int64
		for _, title := range []string{"Engineer", "Designer", "Manager"} {
			id, _, err := repo.Upsert(ctx, &model.Job{CompanyID: company.ID, Title: title})
			require.NoError(t, err)
			freshIDs = append(freshIDs, id)
		}
		otherID, _, err := repo.Upsert(ctx, &model.Job{CompanyID: other.ID, Title: "Engineer"})
		require.NoError(t, err)

		// Keep the first two, deactivate the third.
		affected, err := repo.MarkInactiveExcept(ctx, company.ID, freshIDs[:2])
		require.NoError(t, err)
		assert.EqualValues(t, 1, affected)

		active, err := repo.ActiveByCompany(ctx, company.ID)
		require.NoError(t, err)
		require.Len(t, active, 2)
		for _, j := range active {
			assert.Contains(t, freshIDs[:2], j.ID)
		}

		// Other companies are never touched.
		otherActive, err := repo.ActiveByCompany(ctx, other.ID)
		require.NoError(t, err)
		require.Len(t, otherActive, 1)
		assert.Equal(t, otherID, otherActive[0].ID)
	})
}

func TestJobRepo_ActiveByCompany_Ordering(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		company := createTestCompany(t, db, "ordering")

		base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		clock := NewFixedTimeProvider(base)
		repo := NewJobRepoWithTimeProvider(db, clock)

		_, _, err := repo.Upsert(ctx, &model.Job{CompanyID: company.ID, Title: "Old"})
		require.NoError(t, err)

		clock.AddTime(time.Hour)
		_, _, err = repo.Upsert(ctx, &model.Job{CompanyID: company.ID, Title: "New"})
		require.NoError(t, err)

		active, err := repo.ActiveByCompany(ctx, company.ID)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, "New", active[0].Title)
		assert.Equal(t, "Old", active[1].Title)
	})
}
