package migrations

import (
	"context"
	"fmt"

	"stellar-copytrade-lab/internal/storage/postgres"
)

// RunPostgres applies all embedded postgres migrations in lexical order.
// Every migration is idempotent, so reapplying is safe.
func RunPostgres(ctx context.Context, pool *postgres.Pool) error {
	ms, err := load(postgresFS, "postgres")
	if err != nil {
		return err
	}
	for _, m := range ms {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}
