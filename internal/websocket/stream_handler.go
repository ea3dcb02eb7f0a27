package websocket

import (
	"context"
	"net/http"
	"time"

	"storefront-chat/internal/middleware"
	"storefront-chat/internal/services"
	chat_errors "storefront-chat/pkg/errors"
	"storefront-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// StreamHandler upgrades subscription requests and forwards each snapshot
// emission as one JSON frame. Closing the socket cancels the subscription,
// so switching rooms in a client tears the old feed down before the new
// one starts.
type StreamHandler struct {
	rooms    *services.RoomService
	messages *services.MessageService
	presence *services.PresenceTracker
	log      *logger.Logger
}

func NewStreamHandler(rooms *services.RoomService, messages *services.MessageService, presence *services.PresenceTracker, log *logger.Logger) *StreamHandler {
	return &StreamHandler{rooms: rooms, messages: messages, presence: presence, log: log}
}

// Rooms streams the company's room list, ordered by last activity.
// Routed behind AdminOnly.
func (h *StreamHandler) Rooms(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": chat_errors.ErrUnauthorized.Error()})
		return
	}
	companyEmail := c.Query("company")
	if companyEmail == "" {
		companyEmail = identity.Email
	}

	h.stream(c, func(ctx context.Context) (<-chan interface{}, error) {
		feed, err := h.rooms.SubscribeRoomsForCompany(ctx, companyEmail)
		if err != nil {
			return nil, err
		}
		return wrap(ctx, feed), nil
	})
}

// Messages streams the full ordered log of one room.
func (h *StreamHandler) Messages(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	h.stream(c, func(ctx context.Context) (<-chan interface{}, error) {
		feed, err := h.messages.SubscribeMessages(ctx, roomID)
		if err != nil {
			return nil, err
		}
		return wrap(ctx, feed), nil
	})
}

// Presence streams the derived online boolean for one email.
func (h *StreamHandler) Presence(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	h.stream(c, func(ctx context.Context) (<-chan interface{}, error) {
		feed, err := h.presence.SubscribePresence(ctx, email)
		if err != nil {
			return nil, err
		}
		out := make(chan interface{}, 1)
		go func() {
			defer close(out)
			for v := range feed {
				select {
				case out <- gin.H{"online": v}:
				case <-ctx.Done():
					return
				}
			}
		}()
		return out, nil
	})
}

func (h *StreamHandler) stream(c *gin.Context, subscribe func(ctx context.Context) (<-chan interface{}, error)) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	feed, err := subscribe(ctx)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Reader goroutine: consume control frames, cancel on close.
	go func() {
		defer cancel()
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case snapshot, ok := <-feed:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		}
	}
}

func wrap[T any](ctx context.Context, in <-chan T) <-chan interface{} {
	out := make(chan interface{}, 1)
	go func() {
		defer close(out)
		for v := range in {
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
