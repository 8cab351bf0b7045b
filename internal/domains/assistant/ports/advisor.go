package ports

import (
	"context"
	"time"

	"github.com/Apurer/singgah-pos/internal/domains/assistant/domain"
)

// Generator talks to the text-generation backend. Calls may fail or time out.
type Generator interface {
	Recommend(ctx context.Context, query string, menu []domain.MenuEntry) ([]domain.Suggestion, error)
	Advise(ctx context.Context, orders []domain.OrderSummary) ([]string, error)
}

// Cache stores generated recommendations. Get returns "" on a miss.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	GenerateKey(operation, key string) string
}

// Advisor is what the rest of the system calls. Both operations always return
// a usable value: Recommend an empty list and Advise fallback tips on failure.
type Advisor interface {
	Recommend(ctx context.Context, query string, menu []domain.MenuEntry) []domain.Suggestion
	Advise(ctx context.Context, orders []domain.OrderSummary) []string
}
