//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/agricred/intake/internal/domain/intake"
	"github.com/agricred/intake/internal/domain/shared"
	"github.com/agricred/intake/internal/infrastructure/config"
	"github.com/agricred/intake/internal/infrastructure/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

func TestGormSubmissionArchive_PostgresContainer(t *testing.T) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("agricred_test"),
		tcpostgres.WithUsername("intake"),
		tcpostgres.WithPassword("intake"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.ArchiveConfig{
		Driver:       "postgres",
		Host:         host,
		Port:         port.Int(),
		User:         "intake",
		Password:     "intake",
		DBName:       "agricred_test",
		SSLMode:      "disable",
		MaxOpenConns: 4,
		MaxIdleConns: 1,
		LogLevel:     "warn",
	}

	m, err := migration.Open(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	db, err := NewDatabase(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	archive := NewGormSubmissionArchive(db.DB)
	at := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	sub := intake.NewSubmission(submittedSnapshot(t, "Rv-Thakur9", at))
	require.NoError(t, archive.Store(ctx, sub))
	assert.ErrorIs(t, archive.Store(ctx, sub), intake.ErrAlreadySubmitted)

	page, err := archive.List(ctx, "Rv-Thakur9", shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, sub.SessionID, page.Items[0].SessionID)
	assert.True(t, sub.TotalAssetValue.Equal(page.Items[0].TotalAssetValue))
}
