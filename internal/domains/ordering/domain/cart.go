package domain

import (
	"errors"

	catalogdomain "github.com/Apurer/singgah-pos/internal/domains/catalog/domain"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrLineNotFound    = errors.New("cart line not found")
)

// CartLine is a menu item snapshot plus a quantity.
type CartLine struct {
	ItemID      string
	Name        string
	UnitPrice   int64
	Category    catalogdomain.Category
	Description string
	ImageURL    string
	Quantity    int
}

// LineTotal is unit price times quantity.
func (l CartLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Cart holds the lines of an order that has not been placed yet. Lines keep
// insertion order and there is at most one line per item id.
//
// A cart that has started checkout carries a checkout key until its lines
// change. Retrying checkout on an unchanged cart reuses the key, so the order
// store can recognise the retry.
type Cart struct {
	ID          string
	lines       []CartLine
	checkoutKey string
}

// NewCart returns an empty cart.
func NewCart(id string) *Cart {
	return &Cart{ID: id}
}

// RestoreCart rebuilds a cart from stored lines and its pending checkout key, if any.
func RestoreCart(id string, lines []CartLine, checkoutKey string) *Cart {
	return &Cart{ID: id, lines: cloneLines(lines), checkoutKey: checkoutKey}
}

// CheckoutKey is the key of the checkout started on the current lines, or "".
func (c *Cart) CheckoutKey() string {
	return c.checkoutKey
}

// BeginCheckout returns the pending checkout key, drawing one from newKey when
// the lines changed since the last attempt.
func (c *Cart) BeginCheckout(newKey func() string) string {
	if c.checkoutKey == "" {
		c.checkoutKey = c.ID + ":" + newKey()
	}
	return c.checkoutKey
}

// AddItem increments the line for item, or appends a new line at quantity 1.
func (c *Cart) AddItem(item catalogdomain.MenuItem) {
	c.checkoutKey = ""
	if i := c.indexOf(item.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, CartLine{
		ItemID:      item.ID,
		Name:        item.Name,
		UnitPrice:   item.Price,
		Category:    item.Category,
		Description: item.Description,
		ImageURL:    item.ImageURL,
		Quantity:    1,
	})
}

// SetQuantity replaces the quantity of an existing line. Zero or negative
// quantities are rejected; use RemoveItem to drop a line.
func (c *Cart) SetQuantity(itemID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	i := c.indexOf(itemID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.lines[i].Quantity = quantity
	c.checkoutKey = ""
	return nil
}

// IncrementQuantity adds delta to a line's quantity. A decrement that would
// take the quantity below 1 leaves the line untouched.
func (c *Cart) IncrementQuantity(itemID string, delta int) error {
	i := c.indexOf(itemID)
	if i < 0 {
		return ErrLineNotFound
	}
	next := c.lines[i].Quantity + delta
	if next < 1 {
		return nil
	}
	c.lines[i].Quantity = next
	c.checkoutKey = ""
	return nil
}

// RemoveItem deletes the line for itemID whatever its quantity. Missing lines are ignored.
func (c *Cart) RemoveItem(itemID string) {
	i := c.indexOf(itemID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.checkoutKey = ""
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
	c.checkoutKey = ""
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []CartLine {
	return cloneLines(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Totals prices the current lines.
func (c *Cart) Totals(rate TaxRate) Totals {
	return ComputeTotals(pricedLines(c.lines), rate)
}

func (c *Cart) indexOf(itemID string) int {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

func pricedLines(lines []CartLine) []PricedLine {
	priced := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		priced = append(priced, PricedLine{UnitPrice: line.UnitPrice, Quantity: line.Quantity})
	}
	return priced
}

func cloneLines(lines []CartLine) []CartLine {
	if len(lines) == 0 {
		return nil
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
