//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vendibd/vendi-server/internal/domains/dispatch/domain"
	"github.com/vendibd/vendi-server/internal/domains/dispatch/ports"
	"github.com/vendibd/vendi-server/internal/platform/migrations"
)

func setupDispatchPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("vendi_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newTestCommand(t *testing.T, deviceID string) *domain.Command {
	t.Helper()
	cmd, err := domain.NewVendCommand(deviceID, uuid.New(), "chips")
	require.NoError(t, err)
	return cmd
}

func TestRepository_EnqueueRejectsSecondCommandPerOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupDispatchPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	cmd := newTestCommand(t, "device-1")
	saved, err := repo.Enqueue(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, cmd.ID, saved.ID)

	dup, err := domain.NewVendCommand("device-1", cmd.OrderID, "chips")
	require.NoError(t, err)
	_, err = repo.Enqueue(ctx, dup)
	assert.ErrorIs(t, err, ports.ErrOrderAlreadyQueued)
}

func TestRepository_ClaimNextIsFIFOAndAtMostOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupDispatchPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	first := newTestCommand(t, "device-1")
	first.CreatedAt = time.Now().UTC().Add(-time.Minute)
	_, err := repo.Enqueue(ctx, first)
	require.NoError(t, err)
	second := newTestCommand(t, "device-1")
	_, err = repo.Enqueue(ctx, second)
	require.NoError(t, err)

	claimed, err := repo.ClaimNext(ctx, "device-1")
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, first.ID, claimed.ID)
	assert.Equal(t, domain.StatusDispatched, claimed.Status)
	assert.NotNil(t, claimed.DispatchedAt)

	claimed, err = repo.ClaimNext(ctx, "device-1")
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, second.ID, claimed.ID)

	claimed, err = repo.ClaimNext(ctx, "device-1")
	require.NoError(t, err)
	assert.Nil(t, claimed)
}

func TestRepository_ClaimNextIsolatesDevices(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupDispatchPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Enqueue(ctx, newTestCommand(t, "device-1"))
	require.NoError(t, err)

	claimed, err := repo.ClaimNext(ctx, "device-2")
	require.NoError(t, err)
	assert.Nil(t, claimed)
}

func TestRepository_ReportStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupDispatchPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	cmd := newTestCommand(t, "device-1")
	_, err := repo.Enqueue(ctx, cmd)
	require.NoError(t, err)

	// Reporting before the claim is a conflict, not a transition.
	err = repo.ReportStatus(ctx, cmd.ID, domain.StatusDone, "dispensed")
	assert.ErrorIs(t, err, ports.ErrStatusConflict)

	_, err = repo.ClaimNext(ctx, "device-1")
	require.NoError(t, err)

	require.NoError(t, repo.ReportStatus(ctx, cmd.ID, domain.StatusDone, "dispensed"))

	reported, err := repo.GetByID(ctx, cmd.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, reported.Status)
	assert.Equal(t, "dispensed", reported.ResultMessage)

	// Identical re-report is a no-op; a divergent one is a conflict.
	require.NoError(t, repo.ReportStatus(ctx, cmd.ID, domain.StatusDone, "dispensed"))
	assert.ErrorIs(t, repo.ReportStatus(ctx, cmd.ID, domain.StatusFailed, "jam"), ports.ErrStatusConflict)

	assert.ErrorIs(t, repo.ReportStatus(ctx, uuid.New(), domain.StatusDone, ""), ports.ErrNotFound)
}
