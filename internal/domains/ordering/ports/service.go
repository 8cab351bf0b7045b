package ports

import (
	"context"

	catalogdomain "github.com/Apurer/singgah-pos/internal/domains/catalog/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
)

// CartView is a cart with its derived totals.
type CartView struct {
	ID     string
	Lines  []domain.CartLine
	Totals domain.Totals
}

// CheckoutInput carries optional order details collected at the till.
type CheckoutInput struct {
	CustomerName string
}

// ItemSales aggregates sold quantity for one menu item.
type ItemSales struct {
	ItemID   string
	Name     string
	Quantity int
	Revenue  int64
}

// Dashboard summarises sales for the admin view.
type Dashboard struct {
	TotalRevenue int64
	OrderCount   int
	BestSeller   *ItemSales
	StatusCounts map[domain.Status]int
	RecentOrders []*domain.Order
}

// Service exposes cart, checkout and order lifecycle use cases to adapters.
type Service interface {
	OpenCart(ctx context.Context) (*CartView, error)
	GetCart(ctx context.Context, cartID string) (*CartView, error)
	AddItem(ctx context.Context, cartID string, item catalogdomain.MenuItem) (*CartView, error)
	SetQuantity(ctx context.Context, cartID, itemID string, quantity int) (*CartView, error)
	IncrementQuantity(ctx context.Context, cartID, itemID string, delta int) (*CartView, error)
	RemoveItem(ctx context.Context, cartID, itemID string) (*CartView, error)
	ClearCart(ctx context.Context, cartID string) (*CartView, error)
	DiscardCart(ctx context.Context, cartID string) error
	Checkout(ctx context.Context, cartID string, input CheckoutInput) (*domain.Order, error)

	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, status *domain.Status) ([]*domain.Order, error)
	OrderBoard(ctx context.Context) (map[domain.Status][]*domain.Order, error)
	AdvanceOrder(ctx context.Context, id string, current domain.Status) (*domain.Order, error)
	TransitionOrder(ctx context.Context, id string, target domain.Status) (*domain.Order, error)
	Dashboard(ctx context.Context, recent int) (*Dashboard, error)
}
