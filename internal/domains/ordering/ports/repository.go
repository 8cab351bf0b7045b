package ports

import (
	"context"
	"errors"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
)

var (
	ErrNotFound    = errors.New("order not found")
	ErrDuplicateID = errors.New("order id already exists")
	// ErrDuplicateCheckout means an order with the same checkout key is already stored.
	ErrDuplicateCheckout = errors.New("checkout already placed")
)

// Repository is the order store. List returns the most recent order first.
type Repository interface {
	// Create inserts a new order, failing with ErrDuplicateID if the id is taken
	// or ErrDuplicateCheckout if its non-empty checkout key is.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// GetByCheckoutKey returns ErrNotFound when no order carries key.
	GetByCheckoutKey(ctx context.Context, key string) (*domain.Order, error)
	// UpdateStatus moves the order from one status to another. It fails with
	// domain.ErrStatusMismatch when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*domain.Order, error)
}
