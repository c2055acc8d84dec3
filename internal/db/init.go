package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripcrew/backend/internal/config"
	postgresRepo "github.com/tripcrew/backend/internal/repository/postgres"
)

// Init opens the connection pool and ensures the schema exists.
func Init(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	// Test the database connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Create tables if they don't exist. Order matters: trips and cities
	// reference users.
	for _, repo := range []interface {
		CreateTables(ctx context.Context) error
	}{
		postgresRepo.NewUserRepository(pool),
		postgresRepo.NewTripRepository(pool),
		postgresRepo.NewCityRepository(pool),
	} {
		if err := repo.CreateTables(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return pool, nil
}
