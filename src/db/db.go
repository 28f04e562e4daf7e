package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	store "fintrack-server/src/db/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens the store named by url and migrates its schema. postgres://
// and postgresql:// use pgx; sqlite:// and file: use the embedded sqlite driver.
func Connect(ctx context.Context, url string) (*store.Store, error) {
	var s *store.Store
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		pool, err := pgxpool.New(ctx, url)
		if err != nil {
			return nil, err
		}

		// Test connection
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		s = store.NewPgxStore(pool)
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		path := strings.TrimPrefix(url, "sqlite://")
		sqlDB, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		s = store.NewSQLStore(sqlDB)
	default:
		return nil, fmt.Errorf("unsupported database url %q", url)
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
