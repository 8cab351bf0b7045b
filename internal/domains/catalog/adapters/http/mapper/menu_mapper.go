package mapper

import (
	catalogdomain "github.com/Apurer/singgah-pos/internal/domains/catalog/domain"
	orderingdomain "github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
)

// MenuItem is the HTTP representation of a catalog entry.
type MenuItem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	PriceFormatted string `json:"priceFormatted"`
	Category       string `json:"category"`
	Description    string `json:"description,omitempty"`
	ImageURL       string `json:"image,omitempty"`
}

func FromDomainMenuItem(item catalogdomain.MenuItem) MenuItem {
	return MenuItem{
		ID:             item.ID,
		Name:           item.Name,
		Price:          item.Price,
		PriceFormatted: orderingdomain.FormatIDR(item.Price),
		Category:       string(item.Category),
		Description:    item.Description,
		ImageURL:       item.ImageURL,
	}
}

func FromDomainMenu(items []catalogdomain.MenuItem) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromDomainMenuItem(item))
	}
	return out
}
