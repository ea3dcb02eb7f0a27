package middleware

import (
	"errors"
	"net/http"

	"storefront-chat/internal/transport/httpdto"
	chat_errors "storefront-chat/pkg/errors"
	"storefront-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.Errorf("request error: %s", err.Error())
		}

		status, code := StatusForError(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
	}
}

// StatusForError maps the error taxonomy onto HTTP statuses.
func StatusForError(err error) (int, string) {
	switch {
	case errors.Is(err, chat_errors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, chat_errors.ErrMessageTooLong):
		return http.StatusBadRequest, "MESSAGE_TOO_LONG"
	case errors.Is(err, chat_errors.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
	case errors.Is(err, chat_errors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, chat_errors.ErrUploadFailed):
		return http.StatusBadGateway, "UPLOAD_FAILED"
	case errors.Is(err, chat_errors.ErrAlreadyExists), errors.Is(err, chat_errors.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, chat_errors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, chat_errors.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, chat_errors.ErrStoreUnavailable), errors.Is(err, chat_errors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
