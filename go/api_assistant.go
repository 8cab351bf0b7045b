package posserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	assistantdomain "github.com/Apurer/singgah-pos/internal/domains/assistant/domain"
	assistantports "github.com/Apurer/singgah-pos/internal/domains/assistant/ports"
	catalogports "github.com/Apurer/singgah-pos/internal/domains/catalog/ports"
	orderingports "github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

// RecommendationRequest is a customer's free-text craving.
type RecommendationRequest struct {
	Query string `json:"query"`
}

// RecommendationResponse lists suggested drinks; empty when the assistant is unavailable.
type RecommendationResponse struct {
	Suggestions []assistantdomain.Suggestion `json:"suggestions"`
}

type AdviceResponse struct {
	Tips []string `json:"tips"`
}

// AssistantAPI exposes menu recommendations and business tips. It never fails
// because the generator is unavailable; the advisor falls back instead.
type AssistantAPI struct {
	advisor assistantports.Advisor
	catalog catalogports.Service
	orders  orderingports.Service
}

func NewAssistantAPI(advisor assistantports.Advisor, catalog catalogports.Service, orders orderingports.Service) AssistantAPI {
	return AssistantAPI{advisor: advisor, catalog: catalog, orders: orders}
}

// Post /v1/assistant/recommendations
func (api *AssistantAPI) Recommend(c *gin.Context) {
	var payload RecommendationRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	items, err := api.catalog.List(ctx, catalogports.Filter{})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	menu := make([]assistantdomain.MenuEntry, 0, len(items))
	for _, item := range items {
		menu = append(menu, assistantdomain.MenuEntry{Name: item.Name, Description: item.Description})
	}
	suggestions := api.advisor.Recommend(ctx, payload.Query, menu)
	if suggestions == nil {
		suggestions = []assistantdomain.Suggestion{}
	}
	c.JSON(http.StatusOK, RecommendationResponse{Suggestions: suggestions})
}

// Get /v1/assistant/advice
func (api *AssistantAPI) GetAdvice(c *gin.Context) {
	ctx := c.Request.Context()
	orders, err := api.orders.ListOrders(ctx, nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	summaries := make([]assistantdomain.OrderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, assistantdomain.OrderSummary{Total: order.Total, ItemNames: order.ItemNames()})
	}
	c.JSON(http.StatusOK, AdviceResponse{Tips: api.advisor.Advise(ctx, summaries)})
}
