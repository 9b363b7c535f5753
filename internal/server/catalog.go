package server

import (
	"github.com/gin-gonic/gin"

	"github.com/skintellect/storefront/internal/catalog"
	errx "github.com/skintellect/storefront/internal/core/error"
	"github.com/skintellect/storefront/internal/model"
)

const productNotFoundMessage = "Product not found"

// ListProducts handles GET /api/catalog/products?q=&ingredient=.
func ListProducts(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok(c, cat.Search(catalog.Query{
			Text:        c.Query("q"),
			Ingredients: c.QueryArray("ingredient"),
		}))
	}
}

func GetProduct(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, found := cat.Detail(c.Param("id"))
		if !found {
			fail(c, errx.NotFound(productNotFoundMessage))
			return
		}
		ok(c, detail)
	}
}

// lookupProduct resolves the :productId path parameter, writing a 404 when unknown.
func lookupProduct(c *gin.Context, cat *catalog.Catalog) (model.Product, bool) {
	p, found := cat.Get(c.Param("productId"))
	if !found {
		fail(c, errx.NotFound(productNotFoundMessage))
	}
	return p, found
}
