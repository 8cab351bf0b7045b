package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/singgah-pos/internal/domains/catalog/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

func order(t *testing.T, id, checkoutKey string) *domain.Order {
	t.Helper()
	o, err := domain.NewOrder(id, []domain.CartLine{{ItemID: "6", Name: "Americano", UnitPrice: 25000, Quantity: 1}},
		domain.DefaultTaxRate, time.Unix(1700000000, 0).UTC(), "")
	require.NoError(t, err)
	o.CheckoutKey = checkoutKey
	return o
}

func TestRepository_UpdateStatusRequiresExpectedStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	_, err := repo.Create(ctx, order(t, "A00001", ""))
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(ctx, "A00001", domain.StatusPending, domain.StatusBrewing)
	require.NoError(t, err)
	require.Equal(t, domain.StatusBrewing, updated.Status)

	_, err = repo.UpdateStatus(ctx, "A00001", domain.StatusPending, domain.StatusBrewing)
	require.ErrorIs(t, err, domain.ErrStatusMismatch)

	_, err = repo.UpdateStatus(ctx, "NOPE00", domain.StatusPending, domain.StatusBrewing)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_CheckoutKeyIsUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	_, err := repo.Create(ctx, order(t, "A00001", "cart-1:k"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, order(t, "A00002", "cart-1:k"))
	require.ErrorIs(t, err, ports.ErrDuplicateCheckout)
	exists, err := repo.Exists(ctx, "A00002")
	require.NoError(t, err)
	require.False(t, exists)

	found, err := repo.GetByCheckoutKey(ctx, "cart-1:k")
	require.NoError(t, err)
	require.Equal(t, "A00001", found.ID)

	_, err = repo.Create(ctx, order(t, "A00003", ""))
	require.NoError(t, err)
	_, err = repo.Create(ctx, order(t, "A00004", ""))
	require.NoError(t, err)
	_, err = repo.GetByCheckoutKey(ctx, "")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCartStore_KeepsCheckoutKeyAndDeletes(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore()
	cart := domain.NewCart("c1")
	cart.AddItem(catalogdomain.MenuItem{ID: "6", Name: "Americano", Price: 25000, Category: catalogdomain.CategoryCoffee})
	cart.BeginCheckout(func() string { return "k" })
	require.NoError(t, store.Save(ctx, cart))

	loaded, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "c1:k", loaded.CheckoutKey())

	require.NoError(t, store.Delete(ctx, "c1"))
	require.Equal(t, 0, store.Len())
	require.ErrorIs(t, store.Delete(ctx, "c1"), ports.ErrCartNotFound)
}
