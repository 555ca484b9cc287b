package httpserver

import (
	"errors"
	"net/http"

	"garud-store/internal/domain"
	"garud-store/internal/service/account"
	"garud-store/internal/service/checkout"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func failure(reason string) gin.H {
	return gin.H{"success": false, "reason": reason}
}

func failureMsg(reason, msg string) gin.H {
	return gin.H{"success": false, "reason": reason, "error": msg}
}

// writeError maps service errors to a status code and a stable reason.
// Messages are only echoed for client errors.
func (h *handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, failureMsg("invalid_request", err.Error()))
	case errors.Is(err, account.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, failureMsg("invalid_credentials", err.Error()))
	case errors.Is(err, account.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, failure("unauthorized"))
	case errors.Is(err, account.ErrEmailTaken), errors.Is(err, account.ErrUsernameTaken),
		errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, failureMsg("conflict", err.Error()))
	case errors.Is(err, domain.ErrOutOfStock):
		c.JSON(http.StatusConflict, failureMsg("out_of_stock", err.Error()))
	default:
		h.writeOutcome(c, err)
	}
}

// writeOutcome renders the checkout result classification.
func (h *handlers) writeOutcome(c *gin.Context, err error) {
	res := checkout.Outcome(err)
	status := http.StatusOK
	switch res.Reason {
	case checkout.ReasonOK, checkout.ReasonAlreadyFinalized:
	case checkout.ReasonEmptyCart, checkout.ReasonSignatureMismatch:
		status = http.StatusBadRequest
	case checkout.ReasonNotFound:
		status = http.StatusNotFound
	case checkout.ReasonInsufficientStock, checkout.ReasonAttemptClosed:
		status = http.StatusConflict
	case checkout.ReasonGatewayError:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
	}
	c.JSON(status, res)
}
