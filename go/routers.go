package posserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// Roles restricts the route to the listed POS roles. Empty means any caller.
	Roles []Role
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	MenuAPI      MenuAPI
	CartAPI      CartAPI
	OrderAPI     OrderAPI
	DashboardAPI DashboardAPI
	AssistantAPI AssistantAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the POS routes to an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{route.HandlerFunc}
		if len(route.Roles) > 0 {
			handlers = append([]gin.HandlerFunc{RequireRole(route.Roles...)}, handlers...)
		}
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc is the default handler for routes without an implementation.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

var staff = []Role{RoleCashier, RoleAdmin}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"ListMenu", http.MethodGet, "/v1/menu", nil, handleFunctions.MenuAPI.ListMenu},

		{"OpenCart", http.MethodPost, "/v1/carts", staff, handleFunctions.CartAPI.OpenCart},
		{"GetCart", http.MethodGet, "/v1/carts/:cartId", staff, handleFunctions.CartAPI.GetCart},
		{"ClearCart", http.MethodDelete, "/v1/carts/:cartId", staff, handleFunctions.CartAPI.ClearCart},
		{"AddCartItem", http.MethodPost, "/v1/carts/:cartId/items", staff, handleFunctions.CartAPI.AddItem},
		{"UpdateCartItem", http.MethodPatch, "/v1/carts/:cartId/items/:itemId", staff, handleFunctions.CartAPI.UpdateItem},
		{"RemoveCartItem", http.MethodDelete, "/v1/carts/:cartId/items/:itemId", staff, handleFunctions.CartAPI.RemoveItem},
		{"Checkout", http.MethodPost, "/v1/carts/:cartId/checkout", staff, handleFunctions.CartAPI.Checkout},
		{"DiscardCart", http.MethodPost, "/v1/carts/:cartId/discard", staff, handleFunctions.CartAPI.DiscardCart},

		{"ListOrders", http.MethodGet, "/v1/orders", staff, handleFunctions.OrderAPI.ListOrders},
		{"GetOrderBoard", http.MethodGet, "/v1/orders/board", staff, handleFunctions.OrderAPI.GetBoard},
		{"GetOrder", http.MethodGet, "/v1/orders/:orderId", staff, handleFunctions.OrderAPI.GetOrder},
		{"AdvanceOrder", http.MethodPost, "/v1/orders/:orderId/advance", staff, handleFunctions.OrderAPI.AdvanceOrder},
		{"UpdateOrderStatus", http.MethodPut, "/v1/orders/:orderId/status", staff, handleFunctions.OrderAPI.UpdateStatus},

		{"GetDashboard", http.MethodGet, "/v1/dashboard", []Role{RoleAdmin}, handleFunctions.DashboardAPI.GetDashboard},

		{"Recommend", http.MethodPost, "/v1/assistant/recommendations", nil, handleFunctions.AssistantAPI.Recommend},
		{"GetAdvice", http.MethodGet, "/v1/assistant/advice", []Role{RoleAdmin}, handleFunctions.AssistantAPI.GetAdvice},
	}
}
