package domain

import "strings"

// ShopName is how the assistant refers to the outlet in prompts.
const ShopName = "Singgah Kita Coffee"

// MenuEntry is the slice of a menu item the recommender sees.
type MenuEntry struct {
	Name        string `json:"name"`
	Description string `json:"desc"`
}

// Suggestion is one recommended menu item with a short serving tip.
type Suggestion struct {
	ItemName   string `json:"itemName"`
	BaristaTip string `json:"baristaTip"`
}

// OrderSummary is the per-order input to business advice.
type OrderSummary struct {
	Total     int64    `json:"total"`
	ItemNames []string `json:"items"`
}

var fallbackTips = []string{
	"Keep serving great coffee!",
	"Monitor your peak hours.",
	"Try seasonal bundles.",
}

// FallbackTips returns the generic advice used when no generated tips are available.
func FallbackTips() []string {
	return append([]string(nil), fallbackTips...)
}

// CleanSuggestions drops entries without an item name and trims whitespace.
func CleanSuggestions(in []Suggestion) []Suggestion {
	out := make([]Suggestion, 0, len(in))
	for _, s := range in {
		s.ItemName = strings.TrimSpace(s.ItemName)
		s.BaristaTip = strings.TrimSpace(s.BaristaTip)
		if s.ItemName == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// CleanTips drops blank tips.
func CleanTips(in []string) []string {
	out := make([]string, 0, len(in))
	for _, tip := range in {
		if tip = strings.TrimSpace(tip); tip != "" {
			out = append(out, tip)
		}
	}
	return out
}
