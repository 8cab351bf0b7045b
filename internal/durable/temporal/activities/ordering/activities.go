package ordering

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/application"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

const (
	// PlaceOrderActivityName prices a cart snapshot and stores it as a Pending order.
	PlaceOrderActivityName = "ordering.activities.PlaceOrder"

	errTypeRejected = "OrderRejected"
)

// Activities groups activities that operate on the ordering bounded context.
type Activities struct {
	placer ports.OrderPlacer
}

// NewActivities wires the placer the worker persists orders through. It must
// place inline; handing it a workflow-backed placer would loop.
func NewActivities(placer ports.OrderPlacer) *Activities {
	return &Activities{placer: placer}
}

// PlaceOrder stores the snapshot. Business rejections are returned as
// non-retryable so the workflow fails fast instead of retrying them.
func (a *Activities) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.placer == nil {
		logger.Error("place order activity not initialized", "cartId", input.CartID)
		return nil, errors.New("place order activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "cartId", input.CartID, "lines", len(input.Lines))
	order, err := a.placer.PlaceOrder(ctx, input)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "cartId", input.CartID, "error", err)
		if errors.Is(err, domain.ErrInvalidOperation) || errors.Is(err, application.ErrInvalidInput) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), errTypeRejected, err)
		}
		return nil, err
	}
	logger.Info("PlaceOrder activity completed", "orderId", order.ID, "total", order.Total)
	return order, nil
}
