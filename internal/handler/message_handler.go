package handler

import (
	"io"
	"net/http"

	"storefront-chat/internal/middleware"
	"storefront-chat/internal/services"
	"storefront-chat/internal/transport/httpdto"
	chat_errors "storefront-chat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) Send(c *gin.Context) {
	roomID, err := parseUUID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid room id")
		return
	}

	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	from, ok := senderFrom(c)
	if !ok {
		respondError(c, chat_errors.ErrUnauthorized)
		return
	}

	msg, err := h.messages.SendMessage(c.Request.Context(), roomID, req.Content, from)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(msg))
}

// SendFile accepts a multipart upload, pushes it through the provider
// chain, then appends the file message.
func (h *MessageHandler) SendFile(c *gin.Context) {
	roomID, err := parseUUID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid room id")
		return
	}

	from, ok := senderFrom(c)
	if !ok {
		respondError(c, chat_errors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		respondError(c, err)
		return
	}

	msg, err := h.messages.SendFileMessage(c.Request.Context(), roomID, services.FileUpload{
		FileName:    fileHeader.Filename,
		FileSize:    fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        body,
	}, from)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(msg))
}

func (h *MessageHandler) SendEnquiry(c *gin.Context) {
	roomID, err := parseUUID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid room id")
		return
	}

	var req httpdto.EnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	from, ok := senderFrom(c)
	if !ok {
		respondError(c, chat_errors.ErrUnauthorized)
		return
	}

	msg, err := h.messages.AddEnquiryMessage(c.Request.Context(), roomID, req.ToDomain(), from)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(msg))
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	roomID, err := parseUUID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid room id")
		return
	}

	var req httpdto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.MessageIDs))
	for _, raw := range req.MessageIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid message id")
			return
		}
		ids = append(ids, id)
	}

	if err := h.messages.MarkMessagesAsRead(c.Request.Context(), roomID, ids); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"marked": len(ids)}))
}

func (h *MessageHandler) UnreadCount(c *gin.Context) {
	roomID, err := parseUUID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid room id")
		return
	}

	from, ok := senderFrom(c)
	if !ok {
		respondError(c, chat_errors.ErrUnauthorized)
		return
	}

	count, err := h.messages.UnreadCount(c.Request.Context(), roomID, from)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"unread": count}))
}

func senderFrom(c *gin.Context) (services.Sender, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return services.Sender{}, false
	}
	return services.Sender{
		Email:   identity.Email,
		Name:    identity.Name,
		IsAdmin: identity.IsAdmin,
	}, true
}
