package repository

import (
	"context"
	"testing"

	"propsearch/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository("sqlite3", ":memory:", 1, 1)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestListingsRoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	listings := []model.Listing{
		{ID: "p1", Name: "Sunshine Residency", City: "pune", Locality: "baner", BHK: intPtr(3), Price: floatPtr(110), Possession: model.PossessionReady},
		{ID: "p2", Name: "Lakeview Towers"},
	}
	n, err := repo.InsertListings(ctx, listings)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// upsert overwrites
	listings[1].City = "mumbai"
	_, err = repo.InsertListings(ctx, listings[1:])
	require.NoError(t, err)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, listings[0], got[0])
	assert.Equal(t, "mumbai", got[1].City)
	assert.Nil(t, got[1].BHK)
	assert.Nil(t, got[1].Price)
	assert.Equal(t, model.Possession(""), got[1].Possession)

	one, err := repo.GetListingByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, "Sunshine Residency", one.Name)

	missing, err := repo.GetListingByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSearchLogRoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	filters := model.NewFilterSet()
	filters.City = strPtr("pune")
	err := repo.LogSearch(ctx, model.SearchLogEntry{
		SearchID:       "s-1",
		Query:          "3bhk in pune",
		Filters:        filters,
		ResultCount:    2,
		ListingIDs:     []string{"p1", "p2"},
		ResponseTimeMs: 12,
	})
	require.NoError(t, err)

	require.NoError(t, repo.LogFeedback(ctx, "s-1", "p2", "click"))

	entry, err := repo.GetSearchLog(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.ResultCount)
	assert.Equal(t, `["p1","p2"]`, entry.ListingIDs)
	assert.Contains(t, entry.Filters, `"city":"pune"`)
	assert.Equal(t, "p2", entry.ClickedListingID.String)
	assert.Equal(t, "click", entry.Action.String)

	err = repo.LogFeedback(ctx, "unknown", "p1", "click")
	assert.True(t, errors.Is(err, ErrSearchNotFound))

	_, err = repo.GetSearchLog(ctx, "unknown")
	assert.True(t, errors.Is(err, ErrSearchNotFound))
}

func TestLogSearchPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWithDB(sqlx.NewDb(db, "postgres"))

	mock.ExpectExec(`INSERT INTO search_logs \(search_id, query, filters, result_count, returned_listing_ids, response_time_ms\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)`).
		WithArgs("s-2", "flat in baner", sqlmock.AnyArg(), int64(0), "[]", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.LogSearch(context.Background(), model.SearchLogEntry{
		SearchID:       "s-2",
		Query:          "flat in baner",
		Filters:        model.NewFilterSet(),
		ResponseTimeMs: 5,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogFeedbackPostgresError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWithDB(sqlx.NewDb(db, "postgres"))
	mock.ExpectExec(`UPDATE search_logs SET clicked_listing_id = \$1, action = \$2 WHERE search_id = \$3`).
		WithArgs("p1", "click", "s-3").
		WillReturnError(errors.New("connection reset"))

	err = repo.LogFeedback(context.Background(), "s-3", "p1", "click")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to log feedback")
	assert.NoError(t, mock.ExpectationsWereMet())
}
