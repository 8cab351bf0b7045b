package domain

import (
	"errors"
	"strings"
)

// Category groups menu items on the POS screen.
type Category string

const (
	CategoryCoffee    Category = "Coffee"
	CategoryNonCoffee Category = "Non-Coffee"
)

var (
	ErrEmptyID         = errors.New("menu item id is required")
	ErrEmptyName       = errors.New("menu item name is required")
	ErrNegativePrice   = errors.New("menu item price must be greater or equal to zero")
	ErrUnknownCategory = errors.New("menu item category is invalid")
)

// MenuItem is a purchasable product. Prices are whole rupiah.
type MenuItem struct {
	ID          string
	Name        string
	Price       int64
	Category    Category
	Description string
	ImageURL    string
}

// NewMenuItem validates and constructs a MenuItem.
func NewMenuItem(id, name string, price int64, category Category, description, imageURL string) (MenuItem, error) {
	item := MenuItem{
		ID:          strings.TrimSpace(id),
		Name:        strings.TrimSpace(name),
		Price:       price,
		Category:    category,
		Description: description,
		ImageURL:    imageURL,
	}
	if err := item.Validate(); err != nil {
		return MenuItem{}, err
	}
	return item, nil
}

// Validate enforces catalog invariants.
func (m MenuItem) Validate() error {
	if m.ID == "" {
		return ErrEmptyID
	}
	if m.Name == "" {
		return ErrEmptyName
	}
	if m.Price < 0 {
		return ErrNegativePrice
	}
	if !m.Category.Valid() {
		return ErrUnknownCategory
	}
	return nil
}

// Valid reports whether the category is one the outlet sells.
func (c Category) Valid() bool {
	switch c {
	case CategoryCoffee, CategoryNonCoffee:
		return true
	default:
		return false
	}
}

// ParseCategory accepts the display labels case-insensitively. "All" and the
// empty string map to the zero Category, meaning no filter.
func ParseCategory(raw string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return "", nil
	case "coffee":
		return CategoryCoffee, nil
	case "non-coffee", "noncoffee", "non_coffee":
		return CategoryNonCoffee, nil
	default:
		return "", ErrUnknownCategory
	}
}
