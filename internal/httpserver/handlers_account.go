package httpserver

import (
	"net/http"

	"garud-store/internal/service/account"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	// Login accepts a username or an email address.
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) register(c *gin.Context) {
	var req account.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failureMsg("invalid_request", "malformed body"))
		return
	}
	user, err := h.deps.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failureMsg("invalid_request", "login and password are required"))
		return
	}
	user, token, err := h.deps.Accounts.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"accessToken": token,
		"tokenType":   "Bearer",
		"expiresIn":   h.deps.Accounts.AccessTTLSeconds(),
		"user":        user,
	})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.deps.Accounts.Logout(c.Request.Context(), tokenFromContext(c.Request.Context())); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) profile(c *gin.Context) {
	user, _ := userFromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *handlers) updateProfile(c *gin.Context) {
	var req account.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failureMsg("invalid_request", "malformed body"))
		return
	}
	user, _ := userFromContext(c.Request.Context())
	updated, err := h.deps.Accounts.UpdateProfile(c.Request.Context(), user.ID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": updated})
}
