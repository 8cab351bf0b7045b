package posserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogports "github.com/Apurer/singgah-pos/internal/domains/catalog/ports"
	orderhttpmapper "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/http/mapper"
	orderingports "github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

// CartAPI drives the cashier's cart and checkout.
type CartAPI struct {
	orders  orderingports.Service
	catalog catalogports.Service
}

func NewCartAPI(orders orderingports.Service, catalog catalogports.Service) CartAPI {
	return CartAPI{orders: orders, catalog: catalog}
}

// Post /v1/carts
// Opens an empty cart
func (api *CartAPI) OpenCart(c *gin.Context) {
	view, err := api.orders.OpenCart(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromCartView(view))
}

// Get /v1/carts/:cartId
func (api *CartAPI) GetCart(c *gin.Context) {
	view, err := api.orders.GetCart(c.Request.Context(), c.Param("cartId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromCartView(view))
}

// Post /v1/carts/:cartId/items
// Adds one unit of a menu item
func (api *CartAPI) AddItem(c *gin.Context) {
	var payload orderhttpmapper.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	item, err := api.catalog.GetByID(ctx, payload.ItemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	view, err := api.orders.AddItem(ctx, c.Param("cartId"), item)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromCartView(view))
}

// Patch /v1/carts/:cartId/items/:itemId
// Sets a quantity or applies a delta
func (api *CartAPI) UpdateItem(c *gin.Context) {
	var payload orderhttpmapper.QuantityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	if (payload.Quantity == nil) == (payload.Delta == nil) {
		respondBindError(c, errors.New("exactly one of quantity or delta is required"))
		return
	}
	ctx := c.Request.Context()
	cartID, itemID := c.Param("cartId"), c.Param("itemId")
	var (
		view *orderingports.CartView
		err  error
	)
	if payload.Quantity != nil {
		view, err = api.orders.SetQuantity(ctx, cartID, itemID, *payload.Quantity)
	} else {
		view, err = api.orders.IncrementQuantity(ctx, cartID, itemID, *payload.Delta)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromCartView(view))
}

// Delete /v1/carts/:cartId/items/:itemId
func (api *CartAPI) RemoveItem(c *gin.Context) {
	view, err := api.orders.RemoveItem(c.Request.Context(), c.Param("cartId"), c.Param("itemId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromCartView(view))
}

// Delete /v1/carts/:cartId
// Empties the cart; the cart id stays valid
func (api *CartAPI) ClearCart(c *gin.Context) {
	view, err := api.orders.ClearCart(c.Request.Context(), c.Param("cartId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromCartView(view))
}

// Post /v1/carts/:cartId/discard
// Closes the till session; the cart id stops resolving
func (api *CartAPI) DiscardCart(c *gin.Context) {
	if err := api.orders.DiscardCart(c.Request.Context(), c.Param("cartId")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /v1/carts/:cartId/checkout
// Places the cart as a Pending order
func (api *CartAPI) Checkout(c *gin.Context) {
	var payload orderhttpmapper.CheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondBindError(c, err)
			return
		}
	}
	order, err := api.orders.Checkout(c.Request.Context(), c.Param("cartId"), orderingports.CheckoutInput{
		CustomerName: payload.CustomerName,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainOrder(order))
}
