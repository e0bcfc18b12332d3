package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	cartsvc "storefront/internal/service/cart"
)

type cartHandlers struct {
	svc    cartService
	logger *log.Logger
}

func (h *cartHandlers) respond(c *gin.Context, status int, view *cartsvc.View, err error) {
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(status, view)
}

func (h *cartHandlers) create(c *gin.Context) {
	view, err := h.svc.Create(c.Request.Context())
	h.respond(c, http.StatusCreated, view, err)
}

func (h *cartHandlers) get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, view, err)
}

func (h *cartHandlers) addItem(c *gin.Context) {
	var in cartsvc.AddItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid json body")
		return
	}
	view, err := h.svc.AddItem(c.Request.Context(), c.Param("id"), in)
	h.respond(c, http.StatusOK, view, err)
}

func (h *cartHandlers) setQuantity(c *gin.Context) {
	var in cartsvc.SetQuantityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid json body")
		return
	}
	view, err := h.svc.SetQuantity(c.Request.Context(), c.Param("id"), c.Param("lineId"), in.Quantity)
	h.respond(c, http.StatusOK, view, err)
}

func (h *cartHandlers) increment(c *gin.Context) {
	view, err := h.svc.Increment(c.Request.Context(), c.Param("id"), c.Param("lineId"))
	h.respond(c, http.StatusOK, view, err)
}

func (h *cartHandlers) decrement(c *gin.Context) {
	view, err := h.svc.Decrement(c.Request.Context(), c.Param("id"), c.Param("lineId"))
	h.respond(c, http.StatusOK, view, err)
}

func (h *cartHandlers) removeItem(c *gin.Context) {
	view, err := h.svc.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("lineId"))
	h.respond(c, http.StatusOK, view, err)
}

func (h *cartHandlers) clear(c *gin.Context) {
	view, err := h.svc.Clear(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, view, err)
}

func (h *cartHandlers) applyPromo(c *gin.Context) {
	var in cartsvc.ApplyPromoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid json body")
		return
	}
	view, err := h.svc.ApplyPromo(c.Request.Context(), c.Param("id"), in.Code)
	h.respond(c, http.StatusOK, view, err)
}
