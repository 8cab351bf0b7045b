package checkout

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
	"github.com/Apurer/singgah-pos/internal/durable/temporal/sequences"
)

const (
	// CheckoutWorkflowName is the public identifier for registering the workflow.
	CheckoutWorkflowName = "ordering.workflows.Checkout"
	// CheckoutTaskQueue is the queue consumed by the worker placing orders.
	CheckoutTaskQueue = "ORDER_CHECKOUT"
)

// CheckoutWorkflowInput carries the frozen cart snapshot.
type CheckoutWorkflowInput struct {
	Order   ports.PlaceOrderInput
	TraceID string
}

// CheckoutWorkflow places one order from a cart snapshot.
func CheckoutWorkflow(ctx workflow.Context, input CheckoutWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("CheckoutWorkflow started", withTraceID(input.TraceID, "cartId", input.Order.CartID)...)
	order, err := sequences.RunOrderPlacementSequence(ctx, input.Order)
	if err != nil {
		logger.Error("CheckoutWorkflow failed", withTraceID(input.TraceID, "cartId", input.Order.CartID, "error", err)...)
		return nil, err
	}
	logger.Info("CheckoutWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID)...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
