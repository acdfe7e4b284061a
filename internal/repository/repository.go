package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"propsearch/internal/model"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ErrSearchNotFound is returned when feedback references an unknown search.
var ErrSearchNotFound = errors.New("search not found")

const schema = `
CREATE TABLE IF NOT EXISTS listings (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	city        TEXT,
	locality    TEXT,
	bhk         INTEGER,
	price_lakhs DOUBLE PRECISION,
	possession  TEXT
);
CREATE INDEX IF NOT EXISTS idx_listings_city ON listings (city);
CREATE TABLE IF NOT EXISTS search_logs (
	search_id           TEXT PRIMARY KEY,
	query               TEXT NOT NULL,
	filters             TEXT,
	result_count        INTEGER NOT NULL DEFAULT 0,
	returned_listing_ids TEXT,
	response_time_ms    INTEGER,
	clicked_listing_id  TEXT,
	action              TEXT,
	created_at          TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

// Repository handles database operations for listings and the search log.
// It works against postgres (lib/pq) and sqlite3 (go-sqlite3).
type Repository struct {
	db *sqlx.DB
}

// NewRepository connects to the database and verifies the connection.
func NewRepository(driver, dsn string, maxConn, maxIdleConn int) (*Repository, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s database", driver)
	}

	if driver == "sqlite3" {
		// a single long-lived connection keeps ":memory:" databases alive and serializes writes
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return &Repository{db: db}, nil
	}
	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &Repository{db: db}, nil
}

// NewWithDB wraps an existing connection.
func NewWithDB(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping checks the connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// EnsureSchema creates the listings and search_logs tables if missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to create schema")
	}
	return nil
}

type listingRow struct {
	ID         string          `db:"id"`
	Name       string          `db:"name"`
	City       sql.NullString  `db:"city"`
	Locality   sql.NullString  `db:"locality"`
	BHK        sql.NullInt64   `db:"bhk"`
	Price      sql.NullFloat64 `db:"price_lakhs"`
	Possession sql.NullString  `db:"possession"`
}

func (row listingRow) toModel() model.Listing {
	l := model.Listing{
		ID:         row.ID,
		Name:       row.Name,
		City:       row.City.String,
		Locality:   row.Locality.String,
		Possession: model.Possession(row.Possession.String),
	}
	if row.BHK.Valid {
		bhk := int(row.BHK.Int64)
		l.BHK = &bhk
	}
	if row.Price.Valid {
		price := row.Price.Float64
		l.Price = &price
	}
	return l
}

// LoadListings returns every listing ordered by id.
func (r *Repository) LoadListings(ctx context.Context) ([]model.Listing, error) {
	var rows []listingRow
	query := `SELECT id, name, city, locality, bhk, price_lakhs, possession FROM listings ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to fetch listings")
	}
	listings := make([]model.Listing, len(rows))
	for i, row := range rows {
		listings[i] = row.toModel()
	}
	return listings, nil
}

// Load implements dataset.Source.
func (r *Repository) Load(ctx context.Context) ([]model.Listing, error) {
	return r.LoadListings(ctx)
}

// GetListingByID retrieves a single listing by its ID
func (r *Repository) GetListingByID(ctx context.Context, id string) (*model.Listing, error) {
	var row listingRow
	query := r.db.Rebind(`SELECT id, name, city, locality, bhk, price_lakhs, possession FROM listings WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get listing")
	}
	l := row.toModel()
	return &l, nil
}

// InsertListings upserts listings in one transaction and returns how many were written.
func (r *Repository) InsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO listings (id, name, city, locality, bhk, price_lakhs, possession)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, city = excluded.city, locality = excluded.locality,
			bhk = excluded.bhk, price_lakhs = excluded.price_lakhs, possession = excluded.possession`))
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare statement")
	}
	defer stmt.Close()

	written := 0
	for _, l := range listings {
		_, err := stmt.ExecContext(ctx, l.ID, l.Name, nullString(l.City), nullString(l.Locality),
			l.BHK, l.Price, nullString(string(l.Possession)))
		if err != nil {
			return 0, errors.Wrapf(err, "failed to insert listing %s", l.ID)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit transaction")
	}
	return written, nil
}

// LogSearch records a search. Filters and listing ids are stored as JSON text.
func (r *Repository) LogSearch(ctx context.Context, entry model.SearchLogEntry) error {
	filters, err := json.Marshal(entry.Filters)
	if err != nil {
		return errors.Wrap(err, "failed to encode filters")
	}
	ids := entry.ListingIDs
	if ids == nil {
		ids = []string{}
	}
	listingIDs, err := json.Marshal(ids)
	if err != nil {
		return errors.Wrap(err, "failed to encode listing ids")
	}

	query := r.db.Rebind(`
		INSERT INTO search_logs (search_id, query, filters, result_count, returned_listing_ids, response_time_ms)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, query, entry.SearchID, entry.Query, string(filters),
		entry.ResultCount, string(listingIDs), entry.ResponseTimeMs)
	if err != nil {
		return errors.Wrap(err, "failed to log search")
	}
	return nil
}

// LogFeedback logs user feedback/action
func (r *Repository) LogFeedback(ctx context.Context, searchID, listingID, action string) error {
	query := r.db.Rebind(`UPDATE search_logs SET clicked_listing_id = ?, action = ? WHERE search_id = ?`)
	res, err := r.db.ExecContext(ctx, query, listingID, action, searchID)
	if err != nil {
		return errors.Wrap(err, "failed to log feedback")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(ErrSearchNotFound, "search_id %s", searchID)
	}
	return nil
}

// SearchLog is one stored search_logs row.
type SearchLog struct {
	SearchID         string         `db:"search_id"`
	Query            string         `db:"query"`
	Filters          string         `db:"filters"`
	ResultCount      int            `db:"result_count"`
	ListingIDs       string         `db:"returned_listing_ids"`
	ClickedListingID sql.NullString `db:"clicked_listing_id"`
	Action           sql.NullString `db:"action"`
}

// GetSearchLog returns a logged search.
func (r *Repository) GetSearchLog(ctx context.Context, searchID string) (*SearchLog, error) {
	var entry SearchLog
	query := r.db.Rebind(`
		SELECT search_id, query, filters, result_count, returned_listing_ids, clicked_listing_id, action
		FROM search_logs WHERE search_id = ?`)
	if err := r.db.GetContext(ctx, &entry, query, searchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrSearchNotFound, "search_id %s", searchID)
		}
		return nil, errors.Wrap(err, "failed to get search log")
	}
	return &entry, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
