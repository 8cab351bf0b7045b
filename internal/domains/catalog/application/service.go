package application

import (
	"context"
	"strings"

	"github.com/Apurer/singgah-pos/internal/domains/catalog/domain"
	"github.com/Apurer/singgah-pos/internal/domains/catalog/ports"
)

// Service serves menu browsing use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// List returns menu items matching the category (zero value means all) and a
// case-insensitive substring of the item name.
func (s *Service) List(ctx context.Context, filter ports.Filter) ([]domain.MenuItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]domain.MenuItem, 0, len(items))
	for _, item := range items {
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.MenuItem, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

var _ ports.Service = (*Service)(nil)
