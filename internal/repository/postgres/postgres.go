// Package postgres implements repository.Store on PostgreSQL using pgx
// directly (no ORM).
//
// Concurrency control:
//
//   - Slot reservations for one venue on one date are serialised with a
//     transaction-scoped advisory lock keyed on "venue/date". The primary key
//     on slot_reservations (venue_id, date, hour) is the backstop.
//   - Joins and cancellations of one event are serialised with
//     SELECT … FOR UPDATE on the event row. Every statement after the lock
//     runs on a fresh READ COMMITTED snapshot, so counts read after locking
//     include every previously committed join.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL-backed repository.Store.
type Store struct {
	db *pgxpool.Pool
}

var _ repository.Store = (*Store)(nil)

// NewStore constructs a Store over an existing pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Close closes the pool.
func (s *Store) Close() {
	s.db.Close()
}

// InTx runs fn inside a READ COMMITTED transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	pgTx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Ensure the transaction is always resolved, even if fn panics. Rollback
	// after Commit is a no-op; it must not inherit ctx's cancellation or the
	// connection would go back to the pool mid-transaction.
	defer func() {
		_ = pgTx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(ctx, &tx{q: pgTx}); err != nil {
		return err
	}
	if err := pgTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// tx implements repository.Tx on a pgx transaction.
type tx struct {
	q pgx.Tx
}

var _ repository.Tx = (*tx)(nil)

// civil converts a YYYY-MM-DD string into a DATE parameter.
func civil(date string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d, nil
}

func mapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, repository.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// AddMember records a group membership.
func (s *Store) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// AddAdmin grants administrator rights.
func (s *Store) AddAdmin(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO administrators (user_id) VALUES ($1) ON CONFLICT DO NOTHING`,
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
	_, err := t.q.Exec(ctx,
		`INSERT INTO venues (id, name, capacity, first_hour, last_hour, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
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
	err := q.QueryRow(ctx,
		`SELECT id, name, capacity, first_hour, last_hour, created_at
		 FROM venues WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Name, &v.Capacity, &v.FirstHour, &v.LastHour, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return &v, nil
}

// ListVenues returns all venues ordered by name.
func (s *Store) ListVenues(ctx context.Context) ([]model.Venue, error) {
	rows, err := s.db.Query(ctx,
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
