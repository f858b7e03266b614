//go:build integration

package database

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/nahid2887/padzzey-sub000/internal/config"
	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
)

func startPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()
	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("postgres"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return config.DatabaseConfig{
		Host:     host,
		Port:     port.Port(),
		Username: "postgres",
		Password: "postgres",
		Database: "pdezzy_it",
		SSLMode:  "disable",
	}
}

func TestPostgresBootstrap(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()
	log := zerolog.Nop()

	require.NoError(t, EnsureDatabaseExists(ctx, cfg, log))
	require.NoError(t, EnsureDatabaseExists(ctx, cfg, log))

	db, err := Open(cfg, log)
	require.NoError(t, err)
	require.NoError(t, Migrate(db, log))
	require.NoError(t, Migrate(db, log))

	for _, table := range Tables() {
		assert.True(t, db.Migrator().HasTable(table))
	}

	store := repositories.NewStore(db)
	agent := &models.Agent{Account: models.Account{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "x",
		IsActive:     true,
	}, Availability: models.AvailabilityFullTime}
	require.NoError(t, store.Accounts.Create(ctx, agent))

	// Usernames are unique per role table only.
	seller := &models.Seller{Account: models.Account{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "x",
		IsActive:     true,
	}}
	require.NoError(t, store.Accounts.Create(ctx, seller))

	dup := &models.Agent{Account: models.Account{Username: "alice", Email: "other@example.com", PasswordHash: "x"}}
	assert.Error(t, store.Accounts.Create(ctx, dup))
}

func TestEnsureDatabaseExistsRequiresConfig(t *testing.T) {
	err := EnsureDatabaseExists(context.Background(), config.DatabaseConfig{}, zerolog.Nop())
	assert.EqualError(t, err, "DB_HOST environment variable is required")
}
