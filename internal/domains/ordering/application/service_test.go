package application

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/singgah-pos/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/singgah-pos/internal/domains/catalog/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/memory"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

var fixedNow = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

type sequenceIDs struct {
	ids []string
	n   int
}

func (s *sequenceIDs) NewID() (string, error) {
	if s.n >= len(s.ids) {
		return "", errors.New("sequence exhausted")
	}
	id := s.ids[s.n]
	s.n++
	return id, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func menuItem(t *testing.T, id string) catalogdomain.MenuItem {
	t.Helper()
	item, err := catalogmemory.NewDefaultCatalog().GetByID(context.Background(), id)
	require.NoError(t, err)
	return item
}

func newTestService(opts ...Option) (*Service, *memory.Repository) {
	repo := memory.NewRepository()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(repo, memory.NewCartStore(), opts...), repo
}

func TestCheckout_ReferenceScenario(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc, _ := newTestService(WithEventPublisher(publisher))

	cart, err := svc.OpenCart(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, cart.ID, menuItem(t, "1"))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, cart.ID, menuItem(t, "1"))
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, cart.ID, menuItem(t, "2"))
	require.NoError(t, err)
	require.Equal(t, domain.Totals{Subtotal: 91000, Tax: 9100, Total: 100100}, view.Totals)

	order, err := svc.Checkout(ctx, cart.ID, ports.CheckoutInput{CustomerName: "Raka"})
	require.NoError(t, err)
	require.Equal(t, int64(91000), order.Subtotal)
	require.Equal(t, int64(9100), order.Tax)
	require.Equal(t, int64(100100), order.Total)
	require.Equal(t, domain.StatusPending, order.Status)
	require.Equal(t, fixedNow, order.CreatedAt)
	require.Equal(t, "Raka", order.CustomerName)
	require.Len(t, order.Lines, 2)

	after, err := svc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Empty(t, after.Lines)
	require.Equal(t, domain.Totals{}, after.Totals)

	advanced, err := svc.TransitionOrder(ctx, order.ID, domain.StatusBrewing)
	require.NoError(t, err)
	require.Equal(t, domain.StatusBrewing, advanced.Status)
	advanced, err = svc.AdvanceOrder(ctx, order.ID, domain.StatusBrewing)
	require.NoError(t, err)
	require.Equal(t, domain.StatusDone, advanced.Status)

	_, err = svc.AdvanceOrder(ctx, order.ID, domain.StatusDone)
	require.ErrorIs(t, err, domain.ErrTerminalStatus)

	require.Len(t, publisher.events, 3)
	placed, ok := publisher.events[0].(domain.OrderPlaced)
	require.True(t, ok)
	require.Equal(t, order.ID, placed.OrderID)
	require.Equal(t, []string{"Iced Gula Aren Latte", "Caramel Macchiato"}, placed.ItemNames)
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	cart, err := svc.OpenCart(ctx)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, cart.ID, ports.CheckoutInput{})
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	require.ErrorIs(t, err, domain.ErrInvalidOperation)

	orders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCheckout_UnknownCart(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Checkout(context.Background(), "nope", ports.CheckoutInput{})
	require.ErrorIs(t, err, ports.ErrCartNotFound)
}

func TestCheckout_OrderIsSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	cart, err := svc.OpenCart(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, cart.ID, menuItem(t, "3"))
	require.NoError(t, err)
	order, err := svc.Checkout(ctx, cart.ID, ports.CheckoutInput{})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, cart.ID, menuItem(t, "3"))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, cart.ID, menuItem(t, "4"))
	require.NoError(t, err)

	stored, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.Lines, stored.Lines)
	require.Len(t, stored.Lines, 1)
	require.Equal(t, 1, stored.Lines[0].Quantity)
	require.Equal(t, int64(35200), stored.Total)
}

func TestCartOperations(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	cart, err := svc.OpenCart(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, cart.ID, menuItem(t, "6"))
	require.NoError(t, err)

	view, err := svc.IncrementQuantity(ctx, cart.ID, "6", -1)
	require.NoError(t, err)
	require.Equal(t, 1, view.Lines[0].Quantity)

	view, err = svc.SetQuantity(ctx, cart.ID, "6", 3)
	require.NoError(t, err)
	require.Equal(t, int64(75000), view.Totals.Subtotal)

	_, err = svc.SetQuantity(ctx, cart.ID, "6", 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.IncrementQuantity(ctx, cart.ID, "7", 1)
	require.ErrorIs(t, err, domain.ErrLineNotFound)

	view, err = svc.RemoveItem(ctx, cart.ID, "6")
	require.NoError(t, err)
	require.Empty(t, view.Lines)

	_, err = svc.AddItem(ctx, cart.ID, menuItem(t, "8"))
	require.NoError(t, err)
	view, err = svc.ClearCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Empty(t, view.Lines)
}

func TestPlaceOrder_UniqueIDsUnderLoad(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	lines := []domain.CartLine{{ItemID: "6", Name: "Americano", UnitPrice: 25000, Quantity: 1}}

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		order, err := svc.PlaceOrder(ctx, ports.PlaceOrderInput{Lines: lines})
		require.NoError(t, err)
		_, dup := seen[order.ID]
		require.False(t, dup, "duplicate id %s", order.ID)
		seen[order.ID] = struct{}{}
	}
	orders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 10000)
}

func TestPlaceOrder_RegeneratesOnCollision(t *testing.T) {
	ctx := context.Background()
	ids := &sequenceIDs{ids: []string{"AAAAAA", "AAAAAA", "AAAAAA", "BBBBBB"}}
	svc, _ := newTestService(WithIDGenerator(ids))
	lines := []domain.CartLine{{ItemID: "6", Name: "Americano", UnitPrice: 25000, Quantity: 1}}

	first, err := svc.PlaceOrder(ctx, ports.PlaceOrderInput{Lines: lines})
	require.NoError(t, err)
	require.Equal(t, "AAAAAA", first.ID)

	second, err := svc.PlaceOrder(ctx, ports.PlaceOrderInput{Lines: lines})
	require.NoError(t, err)
	require.Equal(t, "BBBBBB", second.ID)
}

func TestPlaceOrder_GivesUpAfterRepeatedCollisions(t *testing.T) {
	ctx := context.Background()
	same := make([]string, maxIDAttempts+1)
	for i := range same {
		same[i] = "AAAAAA"
	}
	svc, _ := newTestService(WithIDGenerator(&sequenceIDs{ids: same}))
	lines := []domain.CartLine{{ItemID: "6", Name: "Americano", UnitPrice: 25000, Quantity: 1}}

	_, err := svc.PlaceOrder(ctx, ports.PlaceOrderInput{Lines: lines})
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, ports.PlaceOrderInput{Lines: lines})
	require.ErrorIs(t, err, ErrIdentifierCollision)
}

func TestTransitionOrder_RejectsSkippingAhead(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	order, err := svc.PlaceOrder(ctx, ports.PlaceOrderInput{Lines: []domain.CartLine{{ItemID: "1", Name: "Latte", UnitPrice: 28000, Quantity: 1}}})
	require.NoError(t, err)

	_, err = svc.TransitionOrder(ctx, order.ID, domain.StatusDone)
	require.ErrorIs(t, err, domain.ErrIllegalTransition)

	_, err = svc.AdvanceOrder(ctx, order.ID, domain.StatusBrewing)
	require.ErrorIs(t, err, domain.ErrStatusMismatch)

	_, err = svc.AdvanceOrder(ctx, order.ID, domain.Status("Served"))
	require.ErrorIs(t, err, ErrInvalidInput)

	stored, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, stored.Status)

	_, err = svc.TransitionOrder(ctx, "missing", domain.StatusBrewing)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListOrders_NewestFirstAndBoard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(WithIDGenerator(&sequenceIDs{ids: []string{"ORD001", "ORD002", "ORD003"}}))
	lines := []domain.CartLine{{ItemID: "6", Name: "Americano", UnitPrice: 25000, Quantity: 1}}
	for i := 0; i < 3; i++ {
		_, err := svc.PlaceOrder(ctx, ports.PlaceOrderInput{Lines: lines})
		require.NoError(t, err)
	}
	_, err := svc.AdvanceOrder(ctx, "ORD002", domain.StatusPending)
	require.NoError(t, err)

	all, err := svc.ListOrders(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "ORD003", all[0].ID)
	require.Equal(t, "ORD001", all[2].ID)

	brewing := domain.StatusBrewing
	filtered, err := svc.ListOrders(ctx, &brewing)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "ORD002", filtered[0].ID)

	board, err := svc.OrderBoard(ctx)
	require.NoError(t, err)
	require.Len(t, board[domain.StatusPending], 2)
	require.Len(t, board[domain.StatusBrewing], 1)
	require.NotNil(t, board[domain.StatusDone])
	require.Empty(t, board[domain.StatusDone])
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	empty, err := svc.Dashboard(ctx, 5)
	require.NoError(t, err)
	require.Zero(t, empty.OrderCount)
	require.Nil(t, empty.BestSeller)

	place := func(lines ...domain.CartLine) {
		_, err := svc.PlaceOrder(ctx, ports.PlaceOrderInput{Lines: lines})
		require.NoError(t, err)
	}
	latte := domain.CartLine{ItemID: "1", Name: "Iced Gula Aren Latte", UnitPrice: 28000}
	americano := domain.CartLine{ItemID: "6", Name: "Americano", UnitPrice: 25000}
	for i := 0; i < 6; i++ {
		l := latte
		l.Quantity = 1
		place(l)
	}
	a := americano
	a.Quantity = 3
	place(a)

	dash, err := svc.Dashboard(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 7, dash.OrderCount)
	require.Equal(t, int64(6*30800+82500), dash.TotalRevenue)
	require.NotNil(t, dash.BestSeller)
	require.Equal(t, "1", dash.BestSeller.ItemID)
	require.Equal(t, 6, dash.BestSeller.Quantity)
	require.Len(t, dash.RecentOrders, 5)
	require.Equal(t, "Americano", dash.RecentOrders[0].Lines[0].Name)
	require.Equal(t, 7, dash.StatusCounts[domain.StatusPending])
}

type stubPlacer struct {
	calls int
	err   error
}

func (p *stubPlacer) PlaceOrder(_ context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return domain.NewOrder("WF0001", input.Lines, domain.DefaultTaxRate, fixedNow, input.CustomerName)
}

func TestCheckout_UsesConfiguredPlacer(t *testing.T) {
	ctx := context.Background()
	placer := &stubPlacer{}
	svc, _ := newTestService(WithOrderPlacer(placer))

	cart, err := svc.OpenCart(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, cart.ID, menuItem(t, "5"))
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, cart.ID, ports.CheckoutInput{})
	require.NoError(t, err)
	require.Equal(t, "WF0001", order.ID)
	require.Equal(t, 1, placer.calls)

	placer.err = errors.New("workflow unavailable")
	_, err = svc.AddItem(ctx, cart.ID, menuItem(t, "5"))
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, cart.ID, ports.CheckoutInput{})
	require.Error(t, err)
	view, err := svc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1, "failed checkout keeps the cart")
}

// ackLossRepository commits the next Create and then reports a failure, as a
// dropped connection after COMMIT would.
type ackLossRepository struct {
	*memory.Repository
	failNext bool
}

func (r *ackLossRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	saved, err := r.Repository.Create(ctx, order)
	if err == nil && r.failNext {
		r.failNext = false
		return nil, errors.New("connection reset after commit")
	}
	return saved, err
}

func TestCheckout_RetryAfterLostAcknowledgementPlacesOnce(t *testing.T) {
	ctx := context.Background()
	repo := &ackLossRepository{Repository: memory.NewRepository(), failNext: true}
	svc := NewService(repo, memory.NewCartStore(), WithClock(func() time.Time { return fixedNow }))

	cart, err := svc.OpenCart(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, cart.ID, menuItem(t, "6"))
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, cart.ID, ports.CheckoutInput{})
	require.EqualError(t, err, "connection reset after commit")
	view, err := svc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)

	order, err := svc.Checkout(ctx, cart.ID, ports.CheckoutInput{})
	require.NoError(t, err)
	orders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, orders[0].ID, order.ID)

	view, err = svc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Empty(t, view.Lines)

	_, err = svc.AddItem(ctx, cart.ID, menuItem(t, "6"))
	require.NoError(t, err)
	next, err := svc.Checkout(ctx, cart.ID, ports.CheckoutInput{})
	require.NoError(t, err)
	require.NotEqual(t, order.ID, next.ID)
}

func TestPlaceOrder_SameCheckoutKeyReturnsStoredOrder(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc, repo := newTestService(WithEventPublisher(publisher))
	input := ports.PlaceOrderInput{
		CartID:      "cart-1",
		Lines:       []domain.CartLine{{ItemID: "6", Name: "Americano", UnitPrice: 25000, Quantity: 1}},
		CheckoutKey: "cart-1:k1",
	}

	first, err := svc.PlaceOrder(ctx, input)
	require.NoError(t, err)
	second, err := svc.PlaceOrder(ctx, input)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "cart-1:k1", second.CheckoutKey)

	orders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, publisher.events, 1)
}

type blockingPlacer struct {
	entered chan struct{}
	release chan struct{}
}

func (p *blockingPlacer) PlaceOrder(_ context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	p.entered <- struct{}{}
	<-p.release
	return domain.NewOrder("SLOW01", input.Lines, domain.DefaultTaxRate, fixedNow, input.CustomerName)
}

func TestCheckout_WaitingPlacerDoesNotBlockOtherCarts(t *testing.T) {
	ctx := context.Background()
	placer := &blockingPlacer{entered: make(chan struct{}), release: make(chan struct{})}
	svc, _ := newTestService(WithOrderPlacer(placer))

	cartA, err := svc.OpenCart(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, cartA.ID, menuItem(t, "1"))
	require.NoError(t, err)
	cartB, err := svc.OpenCart(ctx)
	require.NoError(t, err)

	type result struct {
		order *domain.Order
		err   error
	}
	done := make(chan result, 1)
	go func() {
		order, err := svc.Checkout(ctx, cartA.ID, ports.CheckoutInput{})
		done <- result{order, err}
	}()
	<-placer.entered

	macchiato := menuItem(t, "2")
	added := make(chan error, 1)
	go func() {
		_, err := svc.AddItem(ctx, cartB.ID, macchiato)
		added <- err
	}()
	select {
	case err := <-added:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("AddItem on another cart waited for the pending checkout")
	}

	_, err = svc.AddItem(ctx, cartA.ID, menuItem(t, "2"))
	require.ErrorIs(t, err, domain.ErrCheckoutInProgress)
	_, err = svc.Checkout(ctx, cartA.ID, ports.CheckoutInput{})
	require.ErrorIs(t, err, domain.ErrCheckoutInProgress)
	require.ErrorIs(t, svc.DiscardCart(ctx, cartA.ID), domain.ErrCheckoutInProgress)

	close(placer.release)
	res := <-done
	require.NoError(t, res.err)
	require.Equal(t, "SLOW01", res.order.ID)

	view, err := svc.GetCart(ctx, cartA.ID)
	require.NoError(t, err)
	require.Empty(t, view.Lines)
	_, err = svc.AddItem(ctx, cartA.ID, menuItem(t, "2"))
	require.NoError(t, err)
}

func TestDiscardCart(t *testing.T) {
	ctx := context.Background()
	carts := memory.NewCartStore()
	svc := NewService(memory.NewRepository(), carts)

	cart, err := svc.OpenCart(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, carts.Len())

	require.NoError(t, svc.DiscardCart(ctx, cart.ID))
	require.Equal(t, 0, carts.Len())
	_, err = svc.GetCart(ctx, cart.ID)
	require.ErrorIs(t, err, ports.ErrCartNotFound)
	require.ErrorIs(t, svc.DiscardCart(ctx, cart.ID), ports.ErrCartNotFound)
}

func TestRandomIDGenerator_Format(t *testing.T) {
	gen, err := NewRandomIDGenerator(DefaultIDLength)
	require.NoError(t, err)
	pattern := regexp.MustCompile(`^[0-9A-Z]{6}$`)
	for i := 0; i < 100; i++ {
		id, err := gen.NewID()
		require.NoError(t, err)
		require.Regexp(t, pattern, id)
	}
	_, err = NewRandomIDGenerator(2)
	require.Error(t, err)
}
