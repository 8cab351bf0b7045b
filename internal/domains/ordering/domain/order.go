package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status tracks preparation progress of an order.
type Status string

const (
	StatusPending Status = "Pending"
	StatusBrewing Status = "Brewing"
	StatusDone    Status = "Done"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusBrewing, StatusDone}

var (
	// ErrInvalidOperation is the parent of every rejected command on a cart or order.
	ErrInvalidOperation = errors.New("invalid operation")

	ErrEmptyCart         = fmt.Errorf("%w: cart is empty", ErrInvalidOperation)
	ErrIllegalTransition = fmt.Errorf("%w: status transition not allowed", ErrInvalidOperation)
	ErrTerminalStatus    = fmt.Errorf("%w: order is already done", ErrInvalidOperation)
	ErrStatusMismatch    = fmt.Errorf("%w: order status has changed", ErrInvalidOperation)
	// ErrCheckoutInProgress rejects changes to a cart while its order is being placed.
	ErrCheckoutInProgress = fmt.Errorf("%w: checkout already in progress", ErrInvalidOperation)

	ErrInvalidStatus = errors.New("order status is invalid")
	ErrEmptyOrderID  = errors.New("order id is required")
)

// Next returns the successor status. Done has none.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusPending:
		return StatusBrewing, true
	case StatusBrewing:
		return StatusDone, true
	default:
		return "", false
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusBrewing, StatusDone:
		return true
	default:
		return false
	}
}

// ParseStatus accepts status names case-insensitively.
func ParseStatus(raw string) (Status, error) {
	for _, s := range Statuses {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Order is a placed cart. Everything except Status is frozen at checkout.
type Order struct {
	ID           string
	Lines        []CartLine
	Subtotal     int64
	Tax          int64
	Total        int64
	Status       Status
	CustomerName string
	CreatedAt    time.Time
	// CheckoutKey identifies the checkout that placed the order; empty for orders placed directly.
	CheckoutKey string
}

// NewOrder prices lines with rate and returns a Pending order. Lines are copied.
func NewOrder(id string, lines []CartLine, rate TaxRate, createdAt time.Time, customerName string) (*Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyOrderID
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}
	totals := ComputeTotals(pricedLines(lines), rate)
	return &Order{
		ID:           id,
		Lines:        cloneLines(lines),
		Subtotal:     totals.Subtotal,
		Tax:          totals.Tax,
		Total:        totals.Total,
		Status:       StatusPending,
		CustomerName: strings.TrimSpace(customerName),
		CreatedAt:    createdAt,
	}, nil
}

// Advance moves the order one step along Pending, Brewing, Done.
func (o *Order) Advance() (Status, error) {
	next, ok := o.Status.Next()
	if !ok {
		return o.Status, ErrTerminalStatus
	}
	o.Status = next
	return next, nil
}

// AdvanceFrom advances only when the caller's view of the current status is
// still accurate, so two operators pressing "next" at once move the order once.
func (o *Order) AdvanceFrom(current Status) (Status, error) {
	if current != o.Status {
		return o.Status, ErrStatusMismatch
	}
	return o.Advance()
}

// TransitionTo sets target only when it is the immediate successor of the current status.
func (o *Order) TransitionTo(target Status) error {
	if !target.Valid() {
		return ErrInvalidStatus
	}
	next, ok := o.Status.Next()
	if !ok {
		return ErrTerminalStatus
	}
	if target != next {
		return ErrIllegalTransition
	}
	o.Status = target
	return nil
}

// ItemNames lists the name of each line, in line order.
func (o *Order) ItemNames() []string {
	names := make([]string, 0, len(o.Lines))
	for _, line := range o.Lines {
		names = append(names, line.Name)
	}
	return names
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = cloneLines(o.Lines)
	return &clone
}
