package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
	checkoutworkflows "github.com/Apurer/singgah-pos/internal/durable/temporal/workflows/checkout"
)

var _ ports.OrderPlacer = (*TemporalCheckoutWorkflows)(nil)

// WorkflowStarter is the slice of the Temporal client used to start checkouts.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalCheckoutWorkflows places orders through the checkout workflow and waits for the result.
type TemporalCheckoutWorkflows struct {
	client    WorkflowStarter
	taskQueue string
}

func NewTemporalCheckoutWorkflows(c WorkflowStarter) *TemporalCheckoutWorkflows {
	return &TemporalCheckoutWorkflows{client: c, taskQueue: checkoutworkflows.CheckoutTaskQueue}
}

func (o *TemporalCheckoutWorkflows) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal checkout workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	options := client.StartWorkflowOptions{
		ID:        checkoutWorkflowID(input, traceComponent),
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		checkoutworkflows.CheckoutWorkflowName,
		checkoutworkflows.CheckoutWorkflowInput{Order: input, TraceID: traceComponent},
	)
	if err != nil {
		return nil, err
	}
	var order domain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// checkoutWorkflowID derives the workflow id from the checkout key, so a
// retried checkout attaches to the run still in flight rather than starting
// another.
func checkoutWorkflowID(input ports.PlaceOrderInput, traceComponent string) string {
	if input.CheckoutKey != "" {
		return "order-checkout-" + input.CheckoutKey
	}
	return fmt.Sprintf("order-checkout-%s-%s", input.CartID, traceComponent)
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
