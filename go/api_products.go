package vendiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogdomain "github.com/vendibd/vendi-server/internal/domains/catalog/domain"
	catalogports "github.com/vendibd/vendi-server/internal/domains/catalog/ports"
)

// ProductAPI wires HTTP transport with the catalog bounded context service.
type ProductAPI struct {
	service catalogports.Service
}

// NewProductAPI creates a ProductAPI backed by the provided service.
func NewProductAPI(service catalogports.Service) ProductAPI {
	return ProductAPI{service: service}
}

// ProductView is the wire representation of a catalog entry.
type ProductView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Available bool   `json:"available"`
}

// Get /v1/products
// List the product catalog
func (api *ProductAPI) ListProducts(c *gin.Context) {
	products, err := api.service.ListProducts(c.Request.Context())
	if err != nil {
		ordersResponder.RespondError(c, err)
		return
	}
	views := make([]ProductView, 0, len(products))
	for _, product := range products {
		views = append(views, fromProduct(product))
	}
	c.JSON(http.StatusOK, views)
}

func fromProduct(product *catalogdomain.Product) ProductView {
	return ProductView{
		ID:        product.ID,
		Name:      product.Name,
		Price:     product.Price.StringFixed(2),
		Available: product.Available,
	}
}
