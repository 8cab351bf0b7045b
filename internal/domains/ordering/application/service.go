package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	catalogdomain "github.com/Apurer/singgah-pos/internal/domains/catalog/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

// Service orchestrates cart, checkout and order lifecycle use cases.
//
// cartMu guards cart reads-modify-writes and the placing set; it is never held
// while an order is being placed, so one till's checkout does not stall the
// others. A cart in placing rejects mutations until its checkout settles.
// orderMu serialises order writes (id allocation plus insert, transitions).
type Service struct {
	repo    ports.Repository
	carts   ports.CartStore
	events  ports.EventPublisher
	placer  ports.OrderPlacer
	ids     IDGenerator
	rate    domain.TaxRate
	now     func() time.Time
	newCart func() string
	newKey  func() string
	logger  *slog.Logger

	cartMu  sync.Mutex
	placing map[string]struct{}
	orderMu sync.Mutex
}

type Option func(*Service)

// WithTaxRate overrides domain.DefaultTaxRate.
func WithTaxRate(rate domain.TaxRate) Option {
	return func(s *Service) {
		s.rate = rate
	}
}

func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithOrderPlacer routes checkout through another placer, e.g. a durable workflow.
func WithOrderPlacer(p ports.OrderPlacer) Option {
	return func(s *Service) {
		s.placer = p
	}
}

func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(repo ports.Repository, carts ports.CartStore, opts ...Option) *Service {
	gen, _ := NewRandomIDGenerator(DefaultIDLength)
	s := &Service{
		repo:    repo,
		carts:   carts,
		events:  ports.NoopPublisher,
		ids:     gen,
		rate:    domain.DefaultTaxRate,
		now:     time.Now,
		newCart: uuid.NewString,
		newKey:  uuid.NewString,
		logger:  slog.Default(),
		placing: map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// TaxRate reports the rate applied at checkout.
func (s *Service) TaxRate() domain.TaxRate {
	return s.rate
}

func (s *Service) OpenCart(ctx context.Context) (*ports.CartView, error) {
	s.cartMu.Lock()
	defer s.cartMu.Unlock()
	cart := domain.NewCart(s.newCart())
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

func (s *Service) GetCart(ctx context.Context, cartID string) (*ports.CartView, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

func (s *Service) AddItem(ctx context.Context, cartID string, item catalogdomain.MenuItem) (*ports.CartView, error) {
	return s.mutateCart(ctx, cartID, func(cart *domain.Cart) error {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		cart.AddItem(item)
		return nil
	})
}

func (s *Service) SetQuantity(ctx context.Context, cartID, itemID string, quantity int) (*ports.CartView, error) {
	return s.mutateCart(ctx, cartID, func(cart *domain.Cart) error {
		return cart.SetQuantity(itemID, quantity)
	})
}

func (s *Service) IncrementQuantity(ctx context.Context, cartID, itemID string, delta int) (*ports.CartView, error) {
	return s.mutateCart(ctx, cartID, func(cart *domain.Cart) error {
		return cart.IncrementQuantity(itemID, delta)
	})
}

func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) (*ports.CartView, error) {
	return s.mutateCart(ctx, cartID, func(cart *domain.Cart) error {
		cart.RemoveItem(itemID)
		return nil
	})
}

func (s *Service) ClearCart(ctx context.Context, cartID string) (*ports.CartView, error) {
	return s.mutateCart(ctx, cartID, func(cart *domain.Cart) error {
		cart.Clear()
		return nil
	})
}

// DiscardCart drops a cart the till no longer needs.
func (s *Service) DiscardCart(ctx context.Context, cartID string) error {
	s.cartMu.Lock()
	defer s.cartMu.Unlock()
	if _, busy := s.placing[cartID]; busy {
		return domain.ErrCheckoutInProgress
	}
	return s.carts.Delete(ctx, cartID)
}

// Checkout places the cart's current lines as a new Pending order and empties
// the cart. An empty cart is rejected with domain.ErrEmptyCart. A failed
// checkout leaves the cart as it was; retrying it unchanged reuses the
// checkout key, so an order stored by the failed attempt is returned instead
// of placing a second one.
func (s *Service) Checkout(ctx context.Context, cartID string, input ports.CheckoutInput) (*domain.Order, error) {
	placeInput, err := s.beginCheckout(ctx, cartID, input)
	if err != nil {
		return nil, err
	}
	var order *domain.Order
	if s.placer != nil {
		order, err = s.placer.PlaceOrder(ctx, placeInput)
	} else {
		order, err = s.PlaceOrder(ctx, placeInput)
	}
	s.finishCheckout(ctx, cartID, order)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) beginCheckout(ctx context.Context, cartID string, input ports.CheckoutInput) (ports.PlaceOrderInput, error) {
	s.cartMu.Lock()
	defer s.cartMu.Unlock()

	if _, busy := s.placing[cartID]; busy {
		return ports.PlaceOrderInput{}, domain.ErrCheckoutInProgress
	}
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return ports.PlaceOrderInput{}, err
	}
	if cart.IsEmpty() {
		return ports.PlaceOrderInput{}, domain.ErrEmptyCart
	}
	key := cart.BeginCheckout(s.newKey)
	if err := s.carts.Save(ctx, cart); err != nil {
		return ports.PlaceOrderInput{}, err
	}
	s.placing[cartID] = struct{}{}
	return ports.PlaceOrderInput{
		CartID:       cart.ID,
		Lines:        cart.Lines(),
		CustomerName: input.CustomerName,
		CheckoutKey:  key,
	}, nil
}

// finishCheckout releases the cart and, when an order was placed, empties it.
func (s *Service) finishCheckout(ctx context.Context, cartID string, order *domain.Order) {
	s.cartMu.Lock()
	defer s.cartMu.Unlock()

	delete(s.placing, cartID)
	if order == nil {
		return
	}
	cart, err := s.carts.Get(ctx, cartID)
	if err == nil {
		cart.Clear()
		err = s.carts.Save(ctx, cart)
	}
	if err != nil {
		// The order exists; a stale cart is recoverable by the cashier.
		s.logger.WarnContext(ctx, "failed to clear cart after checkout",
			slog.String("cart.id", cartID), slog.String("order.id", order.ID), slog.String("error", err.Error()))
	}
}

// PlaceOrder prices the snapshot, allocates an id unique in the store and
// records the order. A snapshot whose checkout key is already stored returns
// that order unchanged. Checkout calls it inline; durable workflows call it from
// an activity.
func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	if len(input.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	s.orderMu.Lock()
	defer s.orderMu.Unlock()

	if input.CheckoutKey != "" {
		existing, err := s.repo.GetByCheckoutKey(ctx, input.CheckoutKey)
		if err == nil {
			s.logger.InfoContext(ctx, "checkout already placed",
				slog.String("checkout.key", input.CheckoutKey), slog.String("order.id", existing.ID))
			return existing, nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return nil, err
		}
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.ids.NewID()
		if err != nil {
			return nil, err
		}
		taken, err := s.repo.Exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}
		order, err := domain.NewOrder(id, input.Lines, s.rate, s.now(), input.CustomerName)
		if err != nil {
			return nil, mapError(err)
		}
		order.CheckoutKey = input.CheckoutKey
		saved, err := s.repo.Create(ctx, order)
		if errors.Is(err, ports.ErrDuplicateID) {
			continue
		}
		if errors.Is(err, ports.ErrDuplicateCheckout) {
			return s.repo.GetByCheckoutKey(ctx, input.CheckoutKey)
		}
		if err != nil {
			return nil, err
		}
		s.publish(ctx, domain.OrderPlaced{
			BaseEvent: domain.BaseEvent{Timestamp: saved.CreatedAt},
			OrderID:   saved.ID,
			Total:     saved.Total,
			ItemNames: saved.ItemNames(),
		})
		return saved, nil
	}
	return nil, ErrIdentifierCollision
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

// ListOrders returns orders newest first, optionally only those in status.
func (s *Service) ListOrders(ctx context.Context, status *domain.Status) ([]*domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return orders, nil
	}
	filtered := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == *status {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// OrderBoard groups orders by status for the fulfillment board. Every status has an entry.
func (s *Service) OrderBoard(ctx context.Context) (map[domain.Status][]*domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	board := make(map[domain.Status][]*domain.Order, len(domain.Statuses))
	for _, status := range domain.Statuses {
		board[status] = []*domain.Order{}
	}
	for _, o := range orders {
		board[o.Status] = append(board[o.Status], o)
	}
	return board, nil
}

// AdvanceOrder moves the order to the successor of current. current must match
// the stored status.
func (s *Service) AdvanceOrder(ctx context.Context, id string, current domain.Status) (*domain.Order, error) {
	if !current.Valid() {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	return s.transition(ctx, id, func(order *domain.Order) error {
		_, err := order.AdvanceFrom(current)
		return err
	})
}

// TransitionOrder sets target when it is exactly the next status.
func (s *Service) TransitionOrder(ctx context.Context, id string, target domain.Status) (*domain.Order, error) {
	return s.transition(ctx, id, func(order *domain.Order) error {
		return order.TransitionTo(target)
	})
}

// Dashboard summarises all orders. recent caps RecentOrders; values below 1 mean 5.
func (s *Service) Dashboard(ctx context.Context, recent int) (*ports.Dashboard, error) {
	if recent < 1 {
		recent = 5
	}
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	dash := &ports.Dashboard{
		OrderCount:   len(orders),
		StatusCounts: make(map[domain.Status]int, len(domain.Statuses)),
	}
	for _, status := range domain.Statuses {
		dash.StatusCounts[status] = 0
	}
	sales := map[string]*ports.ItemSales{}
	for _, o := range orders {
		dash.TotalRevenue += o.Total
		dash.StatusCounts[o.Status]++
		for _, line := range o.Lines {
			entry, ok := sales[line.ItemID]
			if !ok {
				entry = &ports.ItemSales{ItemID: line.ItemID, Name: line.Name}
				sales[line.ItemID] = entry
			}
			entry.Quantity += line.Quantity
			entry.Revenue += line.LineTotal()
		}
	}
	dash.BestSeller = bestSeller(sales)
	if len(orders) > recent {
		orders = orders[:recent]
	}
	dash.RecentOrders = orders
	return dash, nil
}

func bestSeller(sales map[string]*ports.ItemSales) *ports.ItemSales {
	ranked := make([]*ports.ItemSales, 0, len(sales))
	for _, entry := range sales {
		ranked = append(ranked, entry)
	}
	if len(ranked) == 0 {
		return nil
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].Name < ranked[j].Name
	})
	best := *ranked[0]
	return &best
}

func (s *Service) transition(ctx context.Context, id string, apply func(*domain.Order) error) (*domain.Order, error) {
	s.orderMu.Lock()
	defer s.orderMu.Unlock()

	order, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	from := order.Status
	if err := apply(order); err != nil {
		return nil, mapError(err)
	}
	updated, err := s.repo.UpdateStatus(ctx, order.ID, from, order.Status)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.OrderStatusChanged{
		BaseEvent:  domain.BaseEvent{Timestamp: s.now()},
		OrderID:    updated.ID,
		FromStatus: from,
		ToStatus:   updated.Status,
	})
	return updated, nil
}

func (s *Service) mutateCart(ctx context.Context, cartID string, apply func(*domain.Cart) error) (*ports.CartView, error) {
	s.cartMu.Lock()
	defer s.cartMu.Unlock()

	if _, busy := s.placing[cartID]; busy {
		return nil, domain.ErrCheckoutInProgress
	}
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := apply(cart); err != nil {
		return nil, mapError(err)
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

func (s *Service) view(cart *domain.Cart) *ports.CartView {
	return &ports.CartView{ID: cart.ID, Lines: cart.Lines(), Totals: cart.Totals(s.rate)}
}

func (s *Service) publish(ctx context.Context, event domain.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish ordering event",
			slog.String("event", event.EventName()), slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
var _ ports.OrderPlacer = (*Service)(nil)
