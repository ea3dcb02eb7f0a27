package handler

import (
	"net/http"

	"storefront-chat/internal/services"
	"storefront-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req httpdto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	token, err := h.auth.AdminLogin(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.TokenResponse{Token: token}))
}

// CustomerToken issues the identity token a visitor needs before opening
// a room. There is no password; the email is the identity.
func (h *AuthHandler) CustomerToken(c *gin.Context) {
	var req httpdto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	token, err := h.auth.IssueCustomerToken(req.CustomerEmail, req.CustomerName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.TokenResponse{Token: token}))
}
