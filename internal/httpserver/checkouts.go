package httpserver

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	checkoutsvc "storefront/internal/service/checkout"
)

type checkoutHandlers struct {
	svc    checkoutService
	logger *log.Logger
}

func (h *checkoutHandlers) respond(c *gin.Context, status int, view checkoutsvc.View, err error) {
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(status, view)
}

func (h *checkoutHandlers) begin(c *gin.Context) {
	view, err := h.svc.Begin(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusCreated, view, err)
}

func (h *checkoutHandlers) get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, view, err)
}

func (h *checkoutHandlers) setShipping(c *gin.Context) {
	var in domain.ShippingInfo
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid json body")
		return
	}
	view, err := h.svc.SetShipping(c.Request.Context(), c.Param("id"), in)
	h.respond(c, http.StatusOK, view, err)
}

func (h *checkoutHandlers) setPayment(c *gin.Context) {
	var in checkoutsvc.PaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid json body")
		return
	}
	view, err := h.svc.SetPayment(c.Request.Context(), c.Param("id"), in)
	h.respond(c, http.StatusOK, view, err)
}

func (h *checkoutHandlers) next(c *gin.Context)   { h.step(c, h.svc.Next) }
func (h *checkoutHandlers) back(c *gin.Context)   { h.step(c, h.svc.Back) }
func (h *checkoutHandlers) submit(c *gin.Context) { h.step(c, h.svc.Submit) }

func (h *checkoutHandlers) refresh(c *gin.Context) { h.step(c, h.svc.Refresh) }

func (h *checkoutHandlers) step(c *gin.Context, fn func(ctx context.Context, id string) (checkoutsvc.View, error)) {
	view, err := fn(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, view, err)
}
