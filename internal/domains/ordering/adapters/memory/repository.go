package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory, append-only order store. orders is kept in
// creation order; List reverses it.
type Repository struct {
	mu         sync.RWMutex
	orders     []*domain.Order
	byID       map[string]*domain.Order
	byCheckout map[string]*domain.Order
}

func NewRepository() *Repository {
	return &Repository{byID: map[string]*domain.Order{}, byCheckout: map[string]*domain.Order{}}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[clone.ID]; ok {
		return nil, ports.ErrDuplicateID
	}
	if clone.CheckoutKey != "" {
		if _, ok := r.byCheckout[clone.CheckoutKey]; ok {
			return nil, ports.ErrDuplicateCheckout
		}
		r.byCheckout[clone.CheckoutKey] = clone
	}
	r.byID[clone.ID] = clone
	r.orders = append(r.orders, clone)
	return clone.Clone(), nil
}

func (r *Repository) UpdateStatus(_ context.Context, id string, from, to domain.Status) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.byID[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if order.Status != from {
		return nil, domain.ErrStatusMismatch
	}
	order.Status = to
	return order.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.byID[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) GetByCheckoutKey(_ context.Context, key string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.byCheckout[key]
	if !ok || key == "" {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok, nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for i := len(r.orders) - 1; i >= 0; i-- {
		list = append(list, r.orders[i].Clone())
	}
	return list, nil
}
