package httpserver

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	promosvc "storefront/internal/service/promo"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

// pagedList is the envelope for collection responses.
type pagedList[T any] struct {
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`
	Count   int `json:"count"`
	Total   int `json:"total"`
	Results []T `json:"results"`
}

func paginate[T any](items []T, limit, offset int) pagedList[T] {
	total := len(items)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := items[offset:end]
	if page == nil {
		page = []T{}
	}
	return pagedList[T]{Limit: limit, Offset: offset, Count: len(page), Total: total, Results: page}
}

func parsePaging(c *gin.Context) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// writeError maps service errors to status codes.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	var verrs checkoutsvc.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verrs})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, cartsvc.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, cartsvc.ErrProductRequired), errors.Is(err, promosvc.ErrEmptyCode):
		badRequest(c, err.Error())
	case errors.Is(err, checkoutsvc.ErrStaleSnapshot),
		errors.Is(err, checkoutsvc.ErrInvalidTransition),
		errors.Is(err, checkoutsvc.ErrEmptyCart),
		errors.Is(err, cartrepo.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Printf("http: %s %s error=%v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
