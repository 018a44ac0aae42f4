package data

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/jobwatch/internal/domain/model"
	"github.com/target/jobwatch/internal/testutil"
)

func createTestCompany(t *testing.T, db *sql.DB, name string) *model.Company {
	t.Helper()
	repo := NewCompanyRepo(db)
	c, err := repo.UpsertByCareerURL(context.Background(), &model.UpsertCompanyRequest{
		Name:          name,
		CareerPageURL: fmt.Sprintf("https://%s-%d.example.com/careers", name, time.Now().UnixNano()),
	})
	require.NoError(t, err)
	return c
}

func TestCompanyRepo_UpsertByCareerURL(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCompanyRepo(db)

		url := fmt.Sprintf("https://acme-%d.example.com/careers", time.Now().UnixNano())
		created, err := repo.UpsertByCareerURL(ctx, &model.UpsertCompanyRequest{
			Name:          "Acme",
			CareerPageURL: url,
		})
		require.NoError(t, err)
		require.NotZero(t, created.ID)
		assert.Equal(t, "Acme", created.Name)
		assert.Nil(t, created.ATSType)
		assert.Nil(t, created.LastCrawled)
		assert.NotZero(t, created.CreatedAt)

		// Same URL upserts in place and keeps the id.
		ats := "greenhouse"
		again, err := repo.UpsertByCareerURL(ctx, &model.UpsertCompanyRequest{
			Name:          "Acme Corp",
			CareerPageURL: url,
			ATSType:       &ats,
		})
		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID)
		assert.Equal(t, "Acme Corp", again.Name)
		require.NotNil(t, again.ATSType)
		assert.Equal(t, "greenhouse", *again.ATSType)

		// A nil ATS on re-upsert must not clobber the known one.
		third, err := repo.UpsertByCareerURL(ctx, &model.UpsertCompanyRequest{
			Name:          "Acme Corp",
			CareerPageURL: url,
		})
		require.NoError(t, err)
		require.NotNil(t, third.ATSType)
		assert.Equal(t, "greenhouse", *third.ATSType)
	})
}

func TestCompanyRepo_UpsertValidation(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewCompanyRepo(db)

		_, err := repo.UpsertByCareerURL(context.Background(), nil)
		require.Error(t, err)

		_, err = repo.UpsertByCareerURL(context.Background(), &model.UpsertCompanyRequest{Name: "NoURL"})
		require.Error(t, err)
	})
}

func TestCompanyRepo_GetByID_GetByCareerURL(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCompanyRepo(db)

		c := createTestCompany(t, db, "lookup")

		byID, err := repo.GetByID(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, c.CareerPageURL, byID.CareerPageURL)

		byURL, err := repo.GetByCareerURL(ctx, c.CareerPageURL)
		require.NoError(t, err)
		require.NotNil(t, byURL)
		assert.Equal(t, c.ID, byURL.ID)

		missing, err := repo.GetByID(ctx, 999999999)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestCompanyRepo_TouchCrawled(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		clock := NewFixedTimeProvider(fixed)
		repo := NewCompanyRepoWithTimeProvider(db, clock)

		c := createTestCompany(t, db, "touch")

		require.NoError(t, repo.TouchCrawled(ctx, c.ID, "lever"))

		got, err := repo.GetByID(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastCrawled)
		assert.True(t, got.LastCrawled.Equal(fixed))
		require.NotNil(t, got.ATSType)
		assert.Equal(t, "lever", *got.ATSType)

		// Empty ATS only advances the timestamp.
		later := fixed.Add(time.Hour)
		clock.SetTime(later)
		require.NoError(t, repo.TouchCrawled(ctx, c.ID, ""))

		got, err = repo.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, got.LastCrawled.Equal(later))
		assert.Equal(t, "lever", *got.ATSType)
	})
}
