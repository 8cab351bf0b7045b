package posserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/singgah-pos/internal/domains/ordering/adapters/http/mapper"
	orderingports "github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

const defaultRecentOrders = 5

// DashboardAPI serves the admin sales summary.
type DashboardAPI struct {
	orders orderingports.Service
}

func NewDashboardAPI(orders orderingports.Service) DashboardAPI {
	return DashboardAPI{orders: orders}
}

// Get /v1/dashboard
func (api *DashboardAPI) GetDashboard(c *gin.Context) {
	recent := defaultRecentOrders
	if raw := c.Query("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondBindError(c, errors.New("recent must be a positive integer"))
			return
		}
		recent = n
	}
	dash, err := api.orders.Dashboard(c.Request.Context(), recent)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDashboard(dash))
}
