package memory

import (
	"context"

	"github.com/Apurer/singgah-pos/internal/domains/catalog/domain"
	"github.com/Apurer/singgah-pos/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Catalog)(nil)

// Catalog serves a fixed menu. It never mutates after construction.
type Catalog struct {
	items []domain.MenuItem
	index map[string]int
}

// NewCatalog builds a catalog from the given items, keeping their order.
// Later duplicates of an id are ignored.
func NewCatalog(items ...domain.MenuItem) *Catalog {
	c := &Catalog{index: make(map[string]int, len(items))}
	for _, item := range items {
		if _, ok := c.index[item.ID]; ok {
			continue
		}
		c.index[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c
}

// NewDefaultCatalog returns the outlet's house menu.
func NewDefaultCatalog() *Catalog {
	return NewCatalog(DefaultMenu()...)
}

func (c *Catalog) List(_ context.Context) ([]domain.MenuItem, error) {
	out := make([]domain.MenuItem, len(c.items))
	copy(out, c.items)
	return out, nil
}

func (c *Catalog) GetByID(_ context.Context, id string) (domain.MenuItem, error) {
	i, ok := c.index[id]
	if !ok {
		return domain.MenuItem{}, ports.ErrNotFound
	}
	return c.items[i], nil
}

// DefaultMenu lists the Singgah Kita Coffee drinks.
func DefaultMenu() []domain.MenuItem {
	return []domain.MenuItem{
		{
			ID:          "1",
			Name:        "Iced Gula Aren Latte",
			Price:       28000,
			Category:    domain.CategoryCoffee,
			Description: "Signature espresso with fresh milk and traditional palm sugar.",
			ImageURL:    "https://images.unsplash.com/photo-1541167760496-162955ed8a9f?w=400&h=400&fit=crop",
		},
		{
			ID:          "2",
			Name:        "Caramel Macchiato",
			Price:       35000,
			Category:    domain.CategoryCoffee,
			Description: "Freshly steamed milk with vanilla-flavored syrup marked with espresso.",
			ImageURL:    "https://images.unsplash.com/photo-1485808191679-5f86510681a2?w=400&h=400&fit=crop",
		},
		{
			ID:          "3",
			Name:        "Matcha Latte",
			Price:       32000,
			Category:    domain.CategoryNonCoffee,
			Description: "Premium Uji Matcha whisked with creamy steamed milk.",
			ImageURL:    "https://images.unsplash.com/photo-1515823064-d6e0c04616a7?w=400&h=400&fit=crop",
		},
		{
			ID:          "4",
			Name:        "Red Velvet Latte",
			Price:       30000,
			Category:    domain.CategoryNonCoffee,
			Description: "Creamy and sweet beverage with the iconic flavor of red velvet cake.",
			ImageURL:    "https://images.unsplash.com/photo-1570968915860-54d5c301fa9f?w=400&h=400&fit=crop",
		},
		{
			ID:          "5",
			Name:        "Manual Brew V60",
			Price:       30000,
			Category:    domain.CategoryCoffee,
			Description: "Seasonal single-origin beans brewed with precision for clarity.",
			ImageURL:    "https://images.unsplash.com/photo-1752027865387-13cb24356599?q=80&w=735&auto=format&fit=crop",
		},
		{
			ID:          "6",
			Name:        "Americano",
			Price:       25000,
			Category:    domain.CategoryCoffee,
			Description: "A classic rich espresso diluted with hot water for a smooth finish.",
			ImageURL:    "https://images.unsplash.com/premium_photo-1670469009826-db07ab733925?q=80&w=686&auto=format&fit=crop",
		},
		{
			ID:          "7",
			Name:        "Spanish Latte",
			Price:       34000,
			Category:    domain.CategoryCoffee,
			Description: "A creamy coffee beverage sweetened with condensed milk.",
			ImageURL:    "https://images.unsplash.com/photo-1461023058943-07fcbe16d735?w=400&h=400&fit=crop",
		},
		{
			ID:          "8",
			Name:        "Lychee Tea",
			Price:       26000,
			Category:    domain.CategoryNonCoffee,
			Description: "Refreshing brewed tea infused with sweet lychee fruit.",
			ImageURL:    "https://images.unsplash.com/photo-1556679343-c7306c1976bc?w=400&h=400&fit=crop",
		},
	}
}
