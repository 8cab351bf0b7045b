package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	catalogdomain "github.com/Apurer/singgah-pos/internal/domains/catalog/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

const tracerName = "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/observability/service"

// Service decorates the ordering service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core ordering service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) OpenCart(ctx context.Context) (*ports.CartView, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.OpenCart")
	defer span.End()

	result, err := s.inner.OpenCart(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to open cart")
	}
	span.SetAttributes(attribute.String("cart.id", result.ID))
	s.logInfo(ctx, "cart opened", slog.String("cart.id", result.ID))
	return result, nil
}

func (s *Service) GetCart(ctx context.Context, cartID string) (*ports.CartView, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.GetCart", attribute.String("cart.id", cartID))
	defer span.End()

	result, err := s.inner.GetCart(ctx, cartID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load cart", slog.String("cart.id", cartID))
	}
	return result, nil
}

func (s *Service) AddItem(ctx context.Context, cartID string, item catalogdomain.MenuItem) (*ports.CartView, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.AddItem",
		attribute.String("cart.id", cartID), attribute.String("item.id", item.ID))
	defer span.End()

	s.logInfo(ctx, "adding item to cart", slog.String("cart.id", cartID), slog.String("item.id", item.ID))
	result, err := s.inner.AddItem(ctx, cartID, item)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add item", slog.String("cart.id", cartID), slog.String("item.id", item.ID))
	}
	s.cartAttributes(span, result)
	return result, nil
}

func (s *Service) SetQuantity(ctx context.Context, cartID, itemID string, quantity int) (*ports.CartView, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.SetQuantity",
		attribute.String("cart.id", cartID), attribute.String("item.id", itemID), attribute.Int("item.quantity", quantity))
	defer span.End()

	result, err := s.inner.SetQuantity(ctx, cartID, itemID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set quantity", slog.String("cart.id", cartID), slog.String("item.id", itemID))
	}
	s.cartAttributes(span, result)
	return result, nil
}

func (s *Service) IncrementQuantity(ctx context.Context, cartID, itemID string, delta int) (*ports.CartView, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.IncrementQuantity",
		attribute.String("cart.id", cartID), attribute.String("item.id", itemID), attribute.Int("item.delta", delta))
	defer span.End()

	result, err := s.inner.IncrementQuantity(ctx, cartID, itemID, delta)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to change quantity", slog.String("cart.id", cartID), slog.String("item.id", itemID))
	}
	s.cartAttributes(span, result)
	return result, nil
}

func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) (*ports.CartView, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.RemoveItem",
		attribute.String("cart.id", cartID), attribute.String("item.id", itemID))
	defer span.End()

	result, err := s.inner.RemoveItem(ctx, cartID, itemID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to remove item", slog.String("cart.id", cartID), slog.String("item.id", itemID))
	}
	s.cartAttributes(span, result)
	return result, nil
}

func (s *Service) ClearCart(ctx context.Context, cartID string) (*ports.CartView, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.ClearCart", attribute.String("cart.id", cartID))
	defer span.End()

	result, err := s.inner.ClearCart(ctx, cartID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to clear cart", slog.String("cart.id", cartID))
	}
	s.logInfo(ctx, "cart cleared", slog.String("cart.id", cartID))
	return result, nil
}

func (s *Service) DiscardCart(ctx context.Context, cartID string) error {
	ctx, span := s.startSpan(ctx, "OrderingService.DiscardCart", attribute.String("cart.id", cartID))
	defer span.End()

	if err := s.inner.DiscardCart(ctx, cartID); err != nil {
		return s.handleError(ctx, span, err, "failed to discard cart", slog.String("cart.id", cartID))
	}
	s.logInfo(ctx, "cart discarded", slog.String("cart.id", cartID))
	return nil
}

func (s *Service) Checkout(ctx context.Context, cartID string, input ports.CheckoutInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.Checkout", attribute.String("cart.id", cartID))
	defer span.End()

	s.logInfo(ctx, "checking out cart", slog.String("cart.id", cartID))
	result, err := s.inner.Checkout(ctx, cartID, input)
	if err != nil {
		s.metrics.recordCheckoutRejected(ctx, err)
		return nil, s.handleError(ctx, span, err, "checkout failed", slog.String("cart.id", cartID))
	}
	s.metrics.recordPlaced(ctx, result)
	s.orderAttributes(span, result)
	s.logInfo(ctx, "cart checked out",
		slog.String("cart.id", cartID), slog.String("order.id", result.ID), slog.Int64("order.total", result.Total))
	return result, nil
}

func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.PlaceOrder",
		attribute.String("cart.id", input.CartID), attribute.Int("order.lines", len(input.Lines)))
	defer span.End()

	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("cart.id", input.CartID))
	}
	s.metrics.recordPlaced(ctx, result)
	s.orderAttributes(span, result)
	s.logInfo(ctx, "order placed", slog.String("order.id", result.ID), slog.Int64("order.total", result.Total))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.GetOrder", attribute.String("order.id", id))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", id))
	}
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context, status *domain.Status) ([]*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.ListOrders")
	defer span.End()
	if status != nil {
		span.SetAttributes(attribute.String("order.status", string(*status)))
	}

	result, err := s.inner.ListOrders(ctx, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) OrderBoard(ctx context.Context) (map[domain.Status][]*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.OrderBoard")
	defer span.End()

	result, err := s.inner.OrderBoard(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to build order board")
	}
	return result, nil
}

func (s *Service) AdvanceOrder(ctx context.Context, id string, current domain.Status) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.AdvanceOrder",
		attribute.String("order.id", id), attribute.String("order.status.current", string(current)))
	defer span.End()

	s.logInfo(ctx, "advancing order", slog.String("order.id", id), slog.String("status", string(current)))
	result, err := s.inner.AdvanceOrder(ctx, id, current)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to advance order", slog.String("order.id", id))
	}
	s.metrics.recordTransition(ctx, current, result.Status)
	s.logInfo(ctx, "order advanced", slog.String("order.id", id), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) TransitionOrder(ctx context.Context, id string, target domain.Status) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.TransitionOrder",
		attribute.String("order.id", id), attribute.String("order.status.target", string(target)))
	defer span.End()

	s.logInfo(ctx, "transitioning order", slog.String("order.id", id), slog.String("target", string(target)))
	result, err := s.inner.TransitionOrder(ctx, id, target)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to transition order", slog.String("order.id", id))
	}
	s.metrics.recordTransition(ctx, "", result.Status)
	return result, nil
}

func (s *Service) Dashboard(ctx context.Context, recent int) (*ports.Dashboard, error) {
	ctx, span := s.startSpan(ctx, "OrderingService.Dashboard")
	defer span.End()

	result, err := s.inner.Dashboard(ctx, recent)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to build dashboard")
	}
	span.SetAttributes(attribute.Int("orders.count", result.OrderCount), attribute.Int64("orders.revenue", result.TotalRevenue))
	return result, nil
}

func (s *Service) cartAttributes(span trace.Span, cart *ports.CartView) {
	if cart == nil {
		return
	}
	span.SetAttributes(attribute.Int("cart.lines", len(cart.Lines)), attribute.Int64("cart.total", cart.Totals.Total))
}

func (s *Service) orderAttributes(span trace.Span, order *domain.Order) {
	if order == nil {
		return
	}
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("order.status", string(order.Status)),
		attribute.Int64("order.total", order.Total),
	)
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersPlaced      metric.Int64Counter
	revenue           metric.Int64Counter
	statusTransitions metric.Int64Counter
	checkoutRejected  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("ordering.service.orders_placed", metric.WithDescription("Number of orders placed"))
	revenue, _ := m.Int64Counter("ordering.service.revenue", metric.WithDescription("Order totals placed, in rupiah"), metric.WithUnit("IDR"))
	transitions, _ := m.Int64Counter("ordering.service.status_transitions", metric.WithDescription("Number of order status transitions"))
	rejected, _ := m.Int64Counter("ordering.service.checkout_rejected", metric.WithDescription("Number of rejected checkouts"))
	return serviceMetrics{
		ordersPlaced:      ordersPlaced,
		revenue:           revenue,
		statusTransitions: transitions,
		checkoutRejected:  rejected,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, order *domain.Order) {
	addCounter(ctx, m.ordersPlaced, 1)
	addCounter(ctx, m.revenue, order.Total)
}

func (m serviceMetrics) recordTransition(ctx context.Context, from, to domain.Status) {
	attrs := []attribute.KeyValue{attribute.String("order.status", string(to))}
	if from != "" {
		attrs = append(attrs, attribute.String("order.status.from", string(from)))
	}
	addCounter(ctx, m.statusTransitions, 1, attrs...)
}

func (m serviceMetrics) recordCheckoutRejected(ctx context.Context, err error) {
	reason := "error"
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		reason = "empty_cart"
	case errors.Is(err, ports.ErrCartNotFound):
		reason = "cart_not_found"
	}
	addCounter(ctx, m.checkoutRejected, 1, attribute.String("reason", reason))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
