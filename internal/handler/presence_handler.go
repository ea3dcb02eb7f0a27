package handler

import (
	"net/http"

	"storefront-chat/internal/middleware"
	"storefront-chat/internal/services"
	"storefront-chat/internal/transport/httpdto"
	chat_errors "storefront-chat/pkg/errors"

	"github.com/gin-gonic/gin"
)

type PresenceHandler struct {
	tracker *services.PresenceTracker
}

func NewPresenceHandler(tracker *services.PresenceTracker) *PresenceHandler {
	return &PresenceHandler{tracker: tracker}
}

func (h *PresenceHandler) Online(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, chat_errors.ErrUnauthorized)
		return
	}

	var req httpdto.PresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.Request.UserAgent()
	}

	if err := h.tracker.SetOnline(c.Request.Context(), identity.Email, req.RoomID, userAgent); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"online": true}))
}

// Offline is best-effort: page unload beacons land here but are not
// guaranteed to, so staleness remains the authoritative offline signal.
func (h *PresenceHandler) Offline(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, chat_errors.ErrUnauthorized)
		return
	}

	if err := h.tracker.SetOffline(c.Request.Context(), identity.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"online": false}))
}
