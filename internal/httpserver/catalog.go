package httpserver

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	productsvc "storefront/internal/service/product"
)

type catalogHandlers struct {
	products   productService
	categories categoryService
	logger     *log.Logger
}

// listProducts supports ?category=<key>&q=<text>&limit=&offset=.
func (h *catalogHandlers) listProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context(), productsvc.ListFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	limit, offset := parsePaging(c)
	c.JSON(http.StatusOK, paginate(products, limit, offset))
}

func (h *catalogHandlers) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid product id")
		return
	}
	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *catalogHandlers) listCategories(c *gin.Context) {
	cats, err := h.categories.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	limit, offset := parsePaging(c)
	c.JSON(http.StatusOK, paginate(cats, limit, offset))
}
