package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

// LogPublisher writes events to the structured log. It is the fallback when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) error {
	env, err := NewEnvelope(event)
	if err != nil {
		return err
	}
	attrs := []slog.Attr{
		slog.String("event", env.Event),
		slog.String("order.id", env.OrderID),
	}
	if env.ToStatus != "" {
		attrs = append(attrs, slog.String("from", env.FromStatus), slog.String("to", env.ToStatus))
	} else {
		attrs = append(attrs, slog.Int64("order.total", env.Total), slog.Any("items", env.ItemNames))
	}
	p.logger.LogAttrs(ctx, slog.LevelInfo, "ordering event", attrs...)
	return nil
}

// Fanout publishes to every publisher and joins their errors.
type Fanout []ports.EventPublisher

func (f Fanout) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ ports.EventPublisher = (*LogPublisher)(nil)
	_ ports.EventPublisher = Fanout(nil)
)
