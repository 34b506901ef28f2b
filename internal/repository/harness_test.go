package repository_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/weddify/marketplace/internal/repository"
)

// startPostgres runs a disposable postgres container, opens a pool with the
// application's type configuration, and applies the schema.
func startPostgres(ctx context.Context) (testcontainers.Container, *pgxpool.Pool, error) {
	container, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("marketplace"),
		postgres.WithUsername("marketplace"),
		postgres.WithPassword("marketplace"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, nil, err
	}

	pool, err := repository.NewPool(ctx, connStr)
	if err != nil {
		return container, nil, err
	}

	if err := repository.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return container, nil, err
	}

	return container, pool, nil
}

func terminate(container testcontainers.Container) {
	if container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = container.Terminate(ctx)
}
