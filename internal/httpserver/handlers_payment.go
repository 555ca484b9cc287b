package httpserver

import (
	"errors"
	"net/http"

	"garud-store/internal/domain"
	"garud-store/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

func (h *handlers) checkoutSummary(c *gin.Context) {
	user, _ := userFromContext(c.Request.Context())
	sum, err := h.deps.Checkout.CheckoutSummary(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *handlers) createOrder(c *gin.Context) {
	var addr domain.ShippingAddress
	if err := c.ShouldBindJSON(&addr); err != nil {
		c.JSON(http.StatusBadRequest, failureMsg("invalid_request", "malformed shipping address"))
		return
	}
	user, _ := userFromContext(c.Request.Context())
	po, err := h.deps.Checkout.CreatePaymentOrder(c.Request.Context(), user.ID, addr)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

func (h *handlers) verifyPayment(c *gin.Context) {
	var in checkout.VerifyInput
	if err := c.ShouldBindJSON(&in); err != nil || in.OrderID == "" {
		c.JSON(http.StatusBadRequest, failureMsg("invalid_request", "order_id is required"))
		return
	}
	user, _ := userFromContext(c.Request.Context())
	res, err := h.deps.Checkout.VerifyAndFinalize(c.Request.Context(), user.ID, in)
	if errors.Is(err, domain.ErrAlreadyFinalized) {
		c.JSON(http.StatusOK, gin.H{"success": true, "reason": checkout.ReasonAlreadyFinalized, "orderId": in.OrderID})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reason": checkout.ReasonOK, "orderId": res.OrderID})
}

func (h *handlers) orderSuccess(c *gin.Context) {
	user, _ := userFromContext(c.Request.Context())
	order, err := h.deps.Checkout.GetOrder(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *handlers) myOrders(c *gin.Context) {
	user, _ := userFromContext(c.Request.Context())
	orders, err := h.deps.Checkout.ListOrders(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
