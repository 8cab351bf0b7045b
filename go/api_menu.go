package posserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	menuhttpmapper "github.com/Apurer/singgah-pos/internal/domains/catalog/adapters/http/mapper"
	catalogdomain "github.com/Apurer/singgah-pos/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/singgah-pos/internal/domains/catalog/ports"
)

// MenuAPI serves the product catalog.
type MenuAPI struct {
	catalog catalogports.Service
}

func NewMenuAPI(catalog catalogports.Service) MenuAPI {
	return MenuAPI{catalog: catalog}
}

// Get /v1/menu
// Lists menu items, optionally by category and name search
func (api *MenuAPI) ListMenu(c *gin.Context) {
	category, err := catalogdomain.ParseCategory(c.Query("category"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	items, err := api.catalog.List(c.Request.Context(), catalogports.Filter{Category: category, Query: c.Query("q")})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, menuhttpmapper.FromDomainMenu(items))
}
