package ports

import (
	"context"
	"errors"

	"github.com/Apurer/singgah-pos/internal/domains/catalog/domain"
)

var ErrNotFound = errors.New("menu item not found")

// Repository is the read-only source of menu items. Order of List is display order.
type Repository interface {
	List(ctx context.Context) ([]domain.MenuItem, error)
	GetByID(ctx context.Context, id string) (domain.MenuItem, error)
}

// Filter narrows a menu listing.
type Filter struct {
	Category domain.Category
	Query    string
}

// Service exposes catalog use cases to adapters.
type Service interface {
	List(ctx context.Context, filter Filter) ([]domain.MenuItem, error)
	GetByID(ctx context.Context, id string) (domain.MenuItem, error)
}
