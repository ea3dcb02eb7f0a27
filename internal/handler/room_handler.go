package handler

import (
	"net/http"

	"storefront-chat/internal/middleware"
	"storefront-chat/internal/services"
	"storefront-chat/internal/transport/httpdto"
	chat_errors "storefront-chat/pkg/errors"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	rooms        *services.RoomService
	companyEmail string
}

func NewRoomHandler(rooms *services.RoomService, companyEmail string) *RoomHandler {
	return &RoomHandler{rooms: rooms, companyEmail: companyEmail}
}

// CreateOrGet resolves the caller's room against the company, creating it
// on first contact.
func (h *RoomHandler) CreateOrGet(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, chat_errors.ErrUnauthorized)
		return
	}

	rm, err := h.rooms.CreateOrGetRoom(c.Request.Context(), identity.Email, identity.Name, h.companyEmail)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(rm))
}

func (h *RoomHandler) Get(c *gin.Context) {
	roomID, err := parseUUID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid room id")
		return
	}

	rm, err := h.rooms.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(rm))
}
