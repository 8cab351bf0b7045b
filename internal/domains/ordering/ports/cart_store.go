package ports

import (
	"context"
	"errors"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartStore keeps in-progress carts, one per terminal session.
type CartStore interface {
	Save(ctx context.Context, cart *domain.Cart) error
	Get(ctx context.Context, id string) (*domain.Cart, error)
	Delete(ctx context.Context, id string) error
}
