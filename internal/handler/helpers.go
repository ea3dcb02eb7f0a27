package handler

import (
	"errors"
	"net/http"

	"storefront-chat/internal/middleware"
	"storefront-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, errors.New("missing id")
	}
	return uuid.Parse(value)
}

func respondError(c *gin.Context, err error) {
	status, code := middleware.StatusForError(err)
	c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(msg, "INVALID_REQUEST"))
}
