//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
	"github.com/Apurer/singgah-pos/internal/platform/migrations"
)

func setupOrderingPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("singgah_pos_test"),
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

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
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

func sampleOrder(t *testing.T, id string, createdAt time.Time) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(id, []domain.CartLine{
		{ItemID: "1", Name: "Iced Gula Aren Latte", UnitPrice: 28000, Category: "Coffee", Quantity: 2},
		{ItemID: "2", Name: "Caramel Macchiato", UnitPrice: 35000, Category: "Coffee", Quantity: 1},
	}, domain.DefaultTaxRate, createdAt, "Sari")
	require.NoError(t, err)
	return order
}

func TestRepository_CreateAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrderingPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := sampleOrder(t, "K7Q2ZD", time.Now().UTC())
	saved, err := repo.Create(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, "K7Q2ZD", saved.ID)
	assert.Equal(t, int64(100100), saved.Total)
	assert.Equal(t, domain.StatusPending, saved.Status)

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Lines, 2)
	assert.Equal(t, "Iced Gula Aren Latte", fetched.Lines[0].Name)
	assert.Equal(t, 2, fetched.Lines[0].Quantity)
	assert.Equal(t, "Sari", fetched.CustomerName)
	assert.WithinDuration(t, order.CreatedAt, fetched.CreatedAt, time.Millisecond)

	exists, err := repo.Exists(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetByID(ctx, "NOPE00")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_CreateRejectsDuplicateID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrderingPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, sampleOrder(t, "DUP001", time.Now()))
	require.NoError(t, err)

	_, err = repo.Create(ctx, sampleOrder(t, "DUP001", time.Now()))
	assert.ErrorIs(t, err, ports.ErrDuplicateID)

	var lines int64
	require.NoError(t, db.Model(&orderLineRecord{}).Where("order_id = ?", "DUP001").Count(&lines).Error)
	assert.Equal(t, int64(2), lines)
}

func TestRepository_UpdateStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrderingPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := sampleOrder(t, "STAT01", time.Now())
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(ctx, order.ID, domain.StatusPending, domain.StatusBrewing)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBrewing, updated.Status)
	assert.Equal(t, order.Total, updated.Total)

	// A second writer that still saw Pending must not move the order again.
	_, err = repo.UpdateStatus(ctx, order.ID, domain.StatusPending, domain.StatusBrewing)
	assert.ErrorIs(t, err, domain.ErrStatusMismatch)
	stored, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBrewing, stored.Status)

	_, err = repo.UpdateStatus(ctx, "NOPE00", domain.StatusBrewing, domain.StatusDone)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_CheckoutKeyIsUnique(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrderingPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	first := sampleOrder(t, "KEY001", time.Now())
	first.CheckoutKey = "cart-1:attempt"
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)

	retry := sampleOrder(t, "KEY002", time.Now())
	retry.CheckoutKey = "cart-1:attempt"
	_, err = repo.Create(ctx, retry)
	assert.ErrorIs(t, err, ports.ErrDuplicateCheckout)

	found, err := repo.GetByCheckoutKey(ctx, "cart-1:attempt")
	require.NoError(t, err)
	assert.Equal(t, "KEY001", found.ID)
	assert.Len(t, found.Lines, 2)

	exists, err := repo.Exists(ctx, "KEY002")
	require.NoError(t, err)
	assert.False(t, exists)

	// Orders without a key never collide with each other.
	_, err = repo.Create(ctx, sampleOrder(t, "NOKEY1", time.Now()))
	require.NoError(t, err)
	_, err = repo.Create(ctx, sampleOrder(t, "NOKEY2", time.Now()))
	require.NoError(t, err)

	_, err = repo.GetByCheckoutKey(ctx, "cart-2:other")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ListNewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrderingPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"LIST01", "LIST02", "LIST03"} {
		_, err := repo.Create(ctx, sampleOrder(t, id, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "LIST03", list[0].ID)
	assert.Equal(t, "LIST01", list[2].ID)
	assert.Len(t, list[1].Lines, 2)
}
