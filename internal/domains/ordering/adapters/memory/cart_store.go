package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

var _ ports.CartStore = (*CartStore)(nil)

type storedCart struct {
	lines       []domain.CartLine
	checkoutKey string
}

// CartStore keeps carts in process memory. Stored carts are copies, so callers
// must Save after mutating.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]storedCart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: map[string]storedCart{}}
}

func (s *CartStore) Save(_ context.Context, cart *domain.Cart) error {
	if cart == nil {
		return errors.New("cart is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.ID] = storedCart{lines: cart.Lines(), checkoutKey: cart.CheckoutKey()}
	return nil
}

func (s *CartStore) Get(_ context.Context, id string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.carts[id]
	if !ok {
		return nil, ports.ErrCartNotFound
	}
	return domain.RestoreCart(id, stored.lines, stored.checkoutKey), nil
}

// Delete drops the cart. Unknown ids report ports.ErrCartNotFound.
func (s *CartStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[id]; !ok {
		return ports.ErrCartNotFound
	}
	delete(s.carts, id)
	return nil
}

// Len reports how many carts are held.
func (s *CartStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}
