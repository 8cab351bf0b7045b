package posserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/http/mapper"
	orderingdomain "github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	orderingports "github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

// OrderAPI serves order history and the fulfillment board.
type OrderAPI struct {
	orders orderingports.Service
}

func NewOrderAPI(orders orderingports.Service) OrderAPI {
	return OrderAPI{orders: orders}
}

// Get /v1/orders
// Lists orders newest first, optionally filtered by status
func (api *OrderAPI) ListOrders(c *gin.Context) {
	var filter *orderingdomain.Status
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := orderingdomain.ParseStatus(raw)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		filter = &status
	}
	orders, err := api.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrders(orders))
}

// Get /v1/orders/board
func (api *OrderAPI) GetBoard(c *gin.Context) {
	board, err := api.orders.OrderBoard(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromBoard(board))
}

// Get /v1/orders/:orderId
func (api *OrderAPI) GetOrder(c *gin.Context) {
	order, err := api.orders.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Post /v1/orders/:orderId/advance
// Moves the order one step along Pending, Brewing, Done
func (api *OrderAPI) AdvanceOrder(c *gin.Context) {
	var payload orderhttpmapper.AdvanceRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	current, err := orderingdomain.ParseStatus(payload.CurrentStatus)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	order, err := api.orders.AdvanceOrder(c.Request.Context(), c.Param("orderId"), current)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Put /v1/orders/:orderId/status
// Sets an explicit status; only the immediate successor is accepted
func (api *OrderAPI) UpdateStatus(c *gin.Context) {
	var payload orderhttpmapper.TransitionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	target, err := orderingdomain.ParseStatus(payload.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	order, err := api.orders.TransitionOrder(c.Request.Context(), c.Param("orderId"), target)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}
