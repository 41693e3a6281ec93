// Package sqlite implements repository.Store on an embedded SQLite database
// (modernc.org/sqlite, no cgo).
//
// The *sql.DB must come from database.OpenSQLite, which caps the pool at a
// single connection. A transaction therefore owns the only writer until it
// ends, which serialises every venue/date and every event; the lock methods
// only need to read. Reader methods must not be called from inside InTx.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the SQLite-backed repository.Store.
type Store struct {
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// NewStore wraps an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for seeding and inspection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// InTx runs fn inside a transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback() // no-op after commit

	if err := fn(ctx, &tx{q: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type tx struct {
	q *sql.Tx
}

var _ repository.Tx = (*tx)(nil)

func mapWriteErr(op string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(se.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%s: %w", op, repository.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// AddMember records a group membership.
func (s *Store) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)`,
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// AddAdmin grants administrator rights.
func (s *Store) AddAdmin(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO administrators (user_id) VALUES (?)`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("add admin: %w", err)
	}
	return nil
}

// ─── Venues ───────────────────────────────────────────────────────────────────

// InsertVenue inserts a venue.
func (t *tx) InsertVenue(ctx context.Context, v *model.Venue) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO venues (id, name, capacity, first_hour, last_hour, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, v.Capacity, v.FirstHour, v.LastHour, v.CreatedAt,
	)
	if err != nil {
		return mapWriteErr("insert venue", err)
	}
	return nil
}

// GetVenue returns a single venue or repository.ErrNotFound.
func (s *Store) GetVenue(ctx context.Context, id string) (*model.Venue, error) {
	return getVenue(ctx, s.db, id)
}

func (t *tx) GetVenue(ctx context.Context, id string) (*model.Venue, error) {
	return getVenue(ctx, t.q, id)
}

func getVenue(ctx context.Context, q querier, id string) (*model.Venue, error) {
	var v model.Venue
	err := q.QueryRowContext(ctx,
		`SELECT id, name, capacity, first_hour, last_hour, created_at
		 FROM venues WHERE id = ?`,
		id,
	).Scan(&v.ID, &v.Name, &v.Capacity, &v.FirstHour, &v.LastHour, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return &v, nil
}

// ListVenues returns all venues ordered by name.
func (s *Store) ListVenues(ctx context.Context) ([]model.Venue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, capacity, first_hour, last_hour, created_at
		 FROM venues ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var venues []model.Venue
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Capacity, &v.FirstHour, &v.LastHour, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}
