package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/database"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

func openPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE slot_reservations, participations, events,
		venues, group_members, administrators CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

func venue(id string) *model.Venue {
	return &model.Venue{ID: id, Name: "Hall " + id, Capacity: 10, FirstHour: 8, LastHour: 20, CreatedAt: time.Now().UTC()}
}

func TestInTxRollsBackOnPanic(t *testing.T) {
	pool := openPool(t)
	store := postgres.NewStore(pool)
	ctx := context.Background()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected the panic to propagate")
			}
		}()
		_ = store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			if err := tx.InsertVenue(ctx, venue("V1")); err != nil {
				t.Fatalf("insert venue: %v", err)
			}
			panic("boom")
		})
	}()

	if n := pool.Stat().AcquiredConns(); n != 0 {
		t.Fatalf("%d connections still held after the panic", n)
	}
	if _, err := store.GetVenue(ctx, "V1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("insert from the panicked transaction is visible: %v", err)
	}
}

func TestInTxCommitsAndMapsDuplicates(t *testing.T) {
	pool := openPool(t)
	store := postgres.NewStore(pool)
	ctx := context.Background()

	insert := func() error {
		return store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			return tx.InsertVenue(ctx, venue("V1"))
		})
	}
	if err := insert(); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := insert(); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if n := pool.Stat().AcquiredConns(); n != 0 {
		t.Fatalf("%d connections still held", n)
	}
}
