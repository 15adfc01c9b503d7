package storepostgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// NewTestPool starts a disposable PostgreSQL container, connects a pool
// to it, and ensures the schema exists. Callers must invoke the returned
// cleanup func to terminate the container once done; it closes the pool
// first so no connection outlives its container.
func NewTestPool(ctx context.Context) (pool *pgxpool.Pool, cleanup func(), err error) {
	startCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	container, err := postgres.Run(startCtx,
		"postgres:16-alpine",
		postgres.WithDatabase("fluxgraph_test"),
		postgres.WithUsername("fluxgraph"),
		postgres.WithPassword("fluxgraph"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("storepostgres: start test container: %w", err)
	}

	connString, err := container.ConnectionString(startCtx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, nil, fmt.Errorf("storepostgres: connection string: %w", err)
	}

	pool, err = pgxpool.New(ctx, connString)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, nil, fmt.Errorf("storepostgres: open pool: %w", err)
	}

	if err := New(pool).EnsureSchema(ctx); err != nil {
		pool.Close()
		_ = testcontainers.TerminateContainer(container)
		return nil, nil, fmt.Errorf("storepostgres: ensure schema: %w", err)
	}

	cleanup = func() {
		pool.Close()
		_ = testcontainers.TerminateContainer(container)
	}
	return pool, cleanup, nil
}
