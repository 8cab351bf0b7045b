package ports

import (
	"context"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
)

// PlaceOrderInput is a frozen cart snapshot ready to become an order.
type PlaceOrderInput struct {
	CartID       string
	Lines        []domain.CartLine
	CustomerName string
	// CheckoutKey is stable across retries of one checkout. Placing twice with
	// the same key yields the order stored by the first attempt.
	CheckoutKey string
}

// OrderPlacer turns a cart snapshot into a stored order. The application
// service places inline by default; a durable workflow engine can take over.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
}
