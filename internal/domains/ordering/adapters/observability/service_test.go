package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	catalogmemory "github.com/Apurer/singgah-pos/internal/domains/catalog/adapters/memory"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/memory"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/application"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestService_RecordsCheckoutMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	svc := New(
		application.NewService(memory.NewRepository(), memory.NewCartStore()),
		WithMeter(provider.Meter("test")),
	)

	cart, err := svc.OpenCart(ctx)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, cart.ID, ports.CheckoutInput{})
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	require.Equal(t, int64(1), counterTotal(t, reader, "ordering.service.checkout_rejected"))

	item, err := catalogmemory.NewDefaultCatalog().GetByID(ctx, "6")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, cart.ID, item)
	require.NoError(t, err)
	order, err := svc.Checkout(ctx, cart.ID, ports.CheckoutInput{})
	require.NoError(t, err)
	require.Equal(t, int64(1), counterTotal(t, reader, "ordering.service.orders_placed"))
	require.Equal(t, int64(27500), counterTotal(t, reader, "ordering.service.revenue"))

	_, err = svc.AdvanceOrder(ctx, order.ID, domain.StatusPending)
	require.NoError(t, err)
	_, err = svc.TransitionOrder(ctx, order.ID, domain.StatusDone)
	require.NoError(t, err)
	require.Equal(t, int64(2), counterTotal(t, reader, "ordering.service.status_transitions"))
}

func TestService_PassesErrorsThrough(t *testing.T) {
	svc := New(application.NewService(memory.NewRepository(), memory.NewCartStore()), WithLogger(nil), WithTracer(nil))

	_, err := svc.GetOrder(context.Background(), "MISSING")
	require.ErrorIs(t, err, ports.ErrNotFound)
}
