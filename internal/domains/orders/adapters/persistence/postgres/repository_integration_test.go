//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vendibd/vendi-server/internal/domains/orders/domain"
	"github.com/vendibd/vendi-server/internal/domains/orders/ports"
	"github.com/vendibd/vendi-server/internal/platform/migrations"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

func newTestOrder(t *testing.T, deviceID string, method domain.PaymentMethod, price string) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder("chips", "Potato Chips", decimal.RequireFromString(price), deviceID, method, "")
	require.NoError(t, err)
	return order
}

func TestRepository_CreateAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, "device-1", domain.MethodCash, "20.00")
	saved, err := repo.Create(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, order.ID, saved.ID)
	assert.Equal(t, order.DispenseCode, saved.DispenseCode)

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, fetched.Status)
	assert.True(t, fetched.Price.Equal(order.Price))

	_, err = repo.GetByID(ctx, newTestOrder(t, "device-2", domain.MethodCash, "20.00").ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DispenseCodeUniqueAmongActiveOrders(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	first := newTestOrder(t, "device-1", domain.MethodBkash, "10.00")
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)

	clash := newTestOrder(t, "device-2", domain.MethodBkash, "10.00")
	clash.DispenseCode = first.DispenseCode
	_, err = repo.Create(ctx, clash)
	assert.ErrorIs(t, err, ports.ErrCodeTaken)

	// A redeemed order releases its code back to the pool.
	_, err = repo.ClaimOldestPendingByAmount(ctx, first.Price, "TRX-1")
	require.NoError(t, err)
	_, err = repo.Redeem(ctx, first.DispenseCode, "device-1")
	require.NoError(t, err)

	_, err = repo.Create(ctx, clash)
	assert.NoError(t, err)
}

func TestRepository_ClaimOldestPendingByAmount(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	first := newTestOrder(t, "device-1", domain.MethodBkash, "10.00")
	first.CreatedAt = time.Now().UTC().Add(-time.Minute)
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)
	second := newTestOrder(t, "device-2", domain.MethodBkash, "10.00")
	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	claimed, err := repo.ClaimOldestPendingByAmount(ctx, decimal.RequireFromString("10.00"), "TRX-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, claimed.ID)
	assert.Equal(t, domain.StatusPaid, claimed.Status)
	assert.Equal(t, "TRX-1", claimed.PayerRef)
	assert.NotNil(t, claimed.PaidAt)

	claimed, err = repo.ClaimOldestPendingByAmount(ctx, decimal.RequireFromString("10.00"), "TRX-2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, claimed.ID)

	_, err = repo.ClaimOldestPendingByAmount(ctx, decimal.RequireFromString("10.00"), "TRX-3")
	assert.ErrorIs(t, err, ports.ErrNoMatch)
}

func TestRepository_CashCaptureCycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	none, err := repo.BeginCashCapture(ctx, "device-1")
	require.NoError(t, err)
	assert.Nil(t, none)

	order := newTestOrder(t, "device-1", domain.MethodCash, "20.00")
	_, err = repo.Create(ctx, order)
	require.NoError(t, err)

	claimed, err := repo.BeginCashCapture(ctx, "device-1")
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, order.ID, claimed.ID)
	assert.Equal(t, domain.StatusCashCapturePending, claimed.Status)

	// Repeated polls resume the same capture session.
	resumed, err := repo.BeginCashCapture(ctx, "device-1")
	require.NoError(t, err)
	require.NotNil(t, resumed)
	assert.Equal(t, order.ID, resumed.ID)

	require.NoError(t, repo.RevertCashCapture(ctx, order.ID))
	reverted, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, reverted.Status)

	_, err = repo.BeginCashCapture(ctx, "device-1")
	require.NoError(t, err)
	settled, err := repo.SettleCashPayment(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, settled.Status)
	assert.NotNil(t, settled.PaidAt)

	_, err = repo.SettleCashPayment(ctx, order.ID)
	assert.ErrorIs(t, err, ports.ErrNotPayable)
}

func TestRepository_RedeemClassification(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, "device-1", domain.MethodBkash, "10.00")
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	_, err = repo.Redeem(ctx, "999999", "device-1")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	_, err = repo.Redeem(ctx, order.DispenseCode, "device-1")
	assert.ErrorIs(t, err, ports.ErrNotPaid)

	_, err = repo.ClaimOldestPendingByAmount(ctx, order.Price, "TRX-1")
	require.NoError(t, err)

	_, err = repo.Redeem(ctx, order.DispenseCode, "device-2")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	redeemed, err := repo.Redeem(ctx, order.DispenseCode, "device-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRedeemed, redeemed.Status)

	_, err = repo.Redeem(ctx, order.DispenseCode, "device-1")
	assert.ErrorIs(t, err, ports.ErrCodeRedeemed)
}

func TestRepository_RevertStaleCaptures(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, "device-1", domain.MethodCash, "20.00")
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)
	_, err = repo.BeginCashCapture(ctx, "device-1")
	require.NoError(t, err)

	// Cutoff in the past leaves the fresh capture alone.
	reverted, err := repo.RevertStaleCaptures(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, reverted)

	reverted, err = repo.RevertStaleCaptures(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), reverted)

	fresh, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, fresh.Status)
}
