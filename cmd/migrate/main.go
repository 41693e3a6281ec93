// Command migrate applies the schema of the configured store and seeds the
// reference rows the API does not manage: administrators and group
// memberships.
//
//	go run ./cmd/migrate -admin u1,u2 -member chess:u3 -member chess:u4
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/config"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/database"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository/postgres"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository/sqlite"
)

type seeder interface {
	AddAdmin(ctx context.Context, userID string) error
	AddMember(ctx context.Context, groupID, userID string) error
	Close()
}

type members []string

func (m *members) String() string { return strings.Join(*m, ",") }

func (m *members) Set(v string) error {
	if group, user, ok := strings.Cut(v, ":"); !ok || group == "" || user == "" {
		return fmt.Errorf("want group:user, got %q", v)
	}
	*m = append(*m, v)
	return nil
}

func main() {
	var (
		admins  = flag.String("admin", "", "comma-separated user IDs to grant administrator rights")
		grants  members
		ctx     = context.Background()
		log     = slog.Default()
		failure = func(msg string, err error) {
			log.Error(msg, "err", err)
			os.Exit(1)
		}
	)
	flag.Var(&grants, "member", "group:user membership to record (repeatable)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		failure("config", err)
	}
	log = cfg.NewLogger()

	var store seeder
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			failure("open sqlite", err)
		}
		store = sqlite.NewStore(db)
	default:
		pool, err := database.NewPool(ctx, cfg.Postgres, log)
		if err != nil {
			failure("connect postgres", err)
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			failure("migrate", err)
		}
		store = postgres.NewStore(pool)
	}
	defer store.Close()
	log.Info("schema applied", "store", cfg.Store)

	for _, id := range strings.Split(*admins, ",") {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		if err := store.AddAdmin(ctx, id); err != nil {
			failure("add admin", err)
		}
		log.Info("administrator granted", "user_id", id)
	}
	for _, g := range grants {
		group, user, _ := strings.Cut(g, ":")
		if err := store.AddMember(ctx, group, user); err != nil {
			failure("add member", err)
		}
		log.Info("membership recorded", "group_id", group, "user_id", user)
	}
}
