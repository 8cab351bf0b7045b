package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Apurer/singgah-pos/internal/domains/assistant/domain"
	"github.com/Apurer/singgah-pos/internal/domains/assistant/ports"
)

const (
	DefaultTimeout  = 8 * time.Second
	DefaultCacheTTL = 10 * time.Minute
)

// Service wraps a Generator with a deadline, an optional cache and fallbacks.
// Generator errors never reach callers.
type Service struct {
	generator ports.Generator
	cache     ports.Cache
	cacheTTL  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

type Option func(*Service)

func WithCache(cache ports.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService builds the advisor. A nil generator disables generation and
// every call returns its fallback.
func NewService(generator ports.Generator, opts ...Option) *Service {
	s := &Service{
		generator: generator,
		cacheTTL:  DefaultCacheTTL,
		timeout:   DefaultTimeout,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Recommend suggests menu items for a free-text query.
func (s *Service) Recommend(ctx context.Context, query string, menu []domain.MenuEntry) []domain.Suggestion {
	query = strings.TrimSpace(query)
	if query == "" || s.generator == nil {
		return []domain.Suggestion{}
	}
	key := ""
	if s.cache != nil {
		key = s.cache.GenerateKey("recommend", fingerprint(strings.ToLower(query), menu))
		if cached, ok := s.cachedSuggestions(ctx, key); ok {
			return cached
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	suggestions, err := s.generator.Recommend(callCtx, query, menu)
	if err != nil {
		s.logger.WarnContext(ctx, "recommendation failed, returning no suggestions",
			slog.String("error", err.Error()))
		return []domain.Suggestion{}
	}
	suggestions = domain.CleanSuggestions(suggestions)
	if key != "" && len(suggestions) > 0 {
		s.store(ctx, key, suggestions)
	}
	return suggestions
}

// Advise returns short business tips for the given orders.
func (s *Service) Advise(ctx context.Context, orders []domain.OrderSummary) []string {
	if s.generator == nil {
		return domain.FallbackTips()
	}
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	tips, err := s.generator.Advise(callCtx, orders)
	if err != nil {
		s.logger.WarnContext(ctx, "business advice failed, returning fallback tips",
			slog.String("error", err.Error()), slog.Int("orders", len(orders)))
		return domain.FallbackTips()
	}
	tips = domain.CleanTips(tips)
	if len(tips) == 0 {
		return domain.FallbackTips()
	}
	return tips
}

func (s *Service) cachedSuggestions(ctx context.Context, key string) ([]domain.Suggestion, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "recommendation cache read failed", slog.String("error", err.Error()))
		return nil, false
	}
	if raw == "" {
		return nil, false
	}
	var suggestions []domain.Suggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, false
	}
	return suggestions, true
}

func (s *Service) store(ctx context.Context, key string, suggestions []domain.Suggestion) {
	raw, err := json.Marshal(suggestions)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "recommendation cache write failed", slog.String("error", err.Error()))
	}
}

// fingerprint keys the cache on the query and the menu it was answered against.
func fingerprint(query string, menu []domain.MenuEntry) string {
	h := sha256.New()
	h.Write([]byte(query))
	for _, entry := range menu {
		h.Write([]byte{0})
		h.Write([]byte(entry.Name))
	}
	return hex.EncodeToString(h.Sum(nil)[:12])
}

var _ ports.Advisor = (*Service)(nil)
