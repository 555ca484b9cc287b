package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// bindQuantity reads an optional {"quantity": n} body.
func bindQuantity(c *gin.Context) (int, bool) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, failureMsg("invalid_request", "quantity must be an integer"))
		return 0, false
	}
	return req.Quantity, true
}

func (h *handlers) viewCart(c *gin.Context) {
	user, _ := userFromContext(c.Request.Context())
	cart, err := h.deps.Carts.View(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart.Lines, "cartTotal": cart.Total(), "itemCount": cart.ItemCount()})
}

func (h *handlers) addToCart(c *gin.Context) {
	qty, ok := bindQuantity(c)
	if !ok {
		return
	}
	user, _ := userFromContext(c.Request.Context())
	cart, err := h.deps.Carts.Add(c.Request.Context(), user.ID, c.Param("productId"), qty)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cartCount": cart.ItemCount()})
}

func (h *handlers) updateCart(c *gin.Context) {
	qty, ok := bindQuantity(c)
	if !ok {
		return
	}
	user, _ := userFromContext(c.Request.Context())
	cart, err := h.deps.Carts.Update(c.Request.Context(), user.ID, c.Param("productId"), qty)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cartCount": cart.ItemCount(), "cartTotal": cart.Total()})
}

func (h *handlers) removeFromCart(c *gin.Context) {
	user, _ := userFromContext(c.Request.Context())
	cart, err := h.deps.Carts.Remove(c.Request.Context(), user.ID, c.Param("productId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cartCount": cart.ItemCount(), "cartTotal": cart.Total()})
}
