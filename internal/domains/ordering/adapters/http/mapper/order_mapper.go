package mapper

import (
	"time"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

// AddItemRequest adds one unit of a menu item to a cart.
type AddItemRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

// QuantityRequest either sets an absolute quantity or applies a delta. Exactly one must be present.
type QuantityRequest struct {
	Quantity *int `json:"quantity,omitempty"`
	Delta    *int `json:"delta,omitempty"`
}

type CheckoutRequest struct {
	CustomerName string `json:"customerName,omitempty"`
}

// AdvanceRequest carries the status the client saw, guarding against double taps.
type AdvanceRequest struct {
	CurrentStatus string `json:"currentStatus" binding:"required"`
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// Money pairs an integer rupiah amount with its display form.
type Money struct {
	Amount    int64  `json:"amount"`
	Formatted string `json:"formatted"`
}

func NewMoney(amount int64) Money {
	return Money{Amount: amount, Formatted: domain.FormatIDR(amount)}
}

type Totals struct {
	Subtotal Money `json:"subtotal"`
	Tax      Money `json:"tax"`
	Total    Money `json:"total"`
}

type Line struct {
	ItemID    string `json:"itemId"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	UnitPrice Money  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal Money  `json:"lineTotal"`
}

type Cart struct {
	ID     string `json:"id"`
	Lines  []Line `json:"lines"`
	Totals Totals `json:"totals"`
}

type Order struct {
	ID           string    `json:"id"`
	Status       string    `json:"status"`
	CustomerName string    `json:"customerName,omitempty"`
	Lines        []Line    `json:"lines"`
	Totals       Totals    `json:"totals"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Board lists orders per status column, always with all three columns.
type Board struct {
	Pending []Order `json:"Pending"`
	Brewing []Order `json:"Brewing"`
	Done    []Order `json:"Done"`
}

type ItemSales struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Revenue  Money  `json:"revenue"`
}

type Dashboard struct {
	TotalRevenue Money          `json:"totalRevenue"`
	OrderCount   int            `json:"orderCount"`
	BestSeller   *ItemSales     `json:"bestSeller"`
	StatusCounts map[string]int `json:"statusCounts"`
	RecentOrders []Order        `json:"recentOrders"`
}

func fromTotals(t domain.Totals) Totals {
	return Totals{Subtotal: NewMoney(t.Subtotal), Tax: NewMoney(t.Tax), Total: NewMoney(t.Total)}
}

func fromLines(lines []domain.CartLine) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, Line{
			ItemID:    l.ItemID,
			Name:      l.Name,
			Category:  string(l.Category),
			UnitPrice: NewMoney(l.UnitPrice),
			Quantity:  l.Quantity,
			LineTotal: NewMoney(l.LineTotal()),
		})
	}
	return out
}

// FromCartView converts a cart view to the transport representation.
func FromCartView(view *ports.CartView) Cart {
	if view == nil {
		return Cart{Lines: []Line{}}
	}
	return Cart{ID: view.ID, Lines: fromLines(view.Lines), Totals: fromTotals(view.Totals)}
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{Lines: []Line{}}
	}
	return Order{
		ID:           order.ID,
		Status:       string(order.Status),
		CustomerName: order.CustomerName,
		Lines:        fromLines(order.Lines),
		Totals:       fromTotals(domain.Totals{Subtotal: order.Subtotal, Tax: order.Tax, Total: order.Total}),
		CreatedAt:    order.CreatedAt,
	}
}

func FromDomainOrders(orders []*domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromDomainOrder(o))
	}
	return out
}

func FromBoard(board map[domain.Status][]*domain.Order) Board {
	return Board{
		Pending: FromDomainOrders(board[domain.StatusPending]),
		Brewing: FromDomainOrders(board[domain.StatusBrewing]),
		Done:    FromDomainOrders(board[domain.StatusDone]),
	}
}

func FromDashboard(d *ports.Dashboard) Dashboard {
	if d == nil {
		return Dashboard{StatusCounts: map[string]int{}, RecentOrders: []Order{}}
	}
	out := Dashboard{
		TotalRevenue: NewMoney(d.TotalRevenue),
		OrderCount:   d.OrderCount,
		StatusCounts: make(map[string]int, len(d.StatusCounts)),
		RecentOrders: FromDomainOrders(d.RecentOrders),
	}
	for status, n := range d.StatusCounts {
		out.StatusCounts[string(status)] = n
	}
	if d.BestSeller != nil {
		out.BestSeller = &ItemSales{
			ItemID:   d.BestSeller.ItemID,
			Name:     d.BestSeller.Name,
			Quantity: d.BestSeller.Quantity,
			Revenue:  NewMoney(d.BestSeller.Revenue),
		}
	}
	return out
}
