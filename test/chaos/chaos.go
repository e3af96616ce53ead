// Package chaos injects faults into a running stress test.
package chaos

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TerminateRandomBackend kills one random backend belonging to the test
// database, exercising the actors' recovery paths. The caller's own
// connection is excluded so the chaos runner survives its own strike.
func TerminateRandomBackend(ctx context.Context, pool *pgxpool.Pool) error {
	var terminated bool
	err := pool.QueryRow(ctx, `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = current_database()
		  AND pid <> pg_backend_pid()
		  AND backend_type = 'client backend'
		ORDER BY random()
		LIMIT 1
	`).Scan(&terminated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}
