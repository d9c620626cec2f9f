package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/example/wargame/internal/store"
	"github.com/example/wargame/internal/store/memstore"
	"github.com/example/wargame/internal/store/postgres"
	"github.com/example/wargame/internal/store/sqlite"
	"github.com/example/wargame/internal/turnlock"
)

// Flags shared by every subcommand via the root command's persistent
// flag set (declared here, bound in main.go).
var (
	storeKind  string
	storeDSN   string
	sqlitePath string
	guildID    int64
	redisAddr  string
)

// openStore resolves --store into a concrete store.Store, returning a
// close func the caller must defer.
func openStore() (store.Store, func() error, error) {
	switch storeKind {
	case "memory":
		return memstore.New(), func() error { return nil }, nil
	case "postgres":
		if storeDSN == "" {
			return nil, nil, fmt.Errorf("--dsn is required for --store=postgres")
		}
		db, err := sql.Open("postgres", storeDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: open: %w", err)
		}
		return postgres.Open(db), db.Close, nil
	case "sqlite":
		s, err := sqlite.Open(sqlitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: open: %w", err)
		}
		return s, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown --store %q (want postgres|sqlite|memory)", storeKind)
	}
}

// openLocker builds a distributed turn lock when --redis is set; returns
// nil when unset, which Engine treats as single-process/no-locking.
func openLocker() *turnlock.Locker {
	if redisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	return turnlock.New(rdb, 0)
}

func requireGuild() error {
	if guildID == 0 {
		return fmt.Errorf("--guild is required")
	}
	return nil
}
