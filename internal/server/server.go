package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-chat/config"
	"storefront-chat/internal/handler"
	"storefront-chat/internal/middleware"
	"storefront-chat/internal/services"
	"storefront-chat/internal/transport/httpdto"
	"storefront-chat/internal/websocket"
	"storefront-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	onShutdown []func()
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Room     *handler.RoomHandler
	Message  *handler.MessageHandler
	Presence *handler.PresenceHandler
	Stream   *websocket.StreamHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// OnShutdown registers a hook run after the HTTP listener has drained.
func (s *Server) OnShutdown(fn func()) {
	s.onShutdown = append(s.onShutdown, fn)
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	auth := s.engine.Group("/v1/auth")
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
		auth.POST("/customer", handlers.Auth.CustomerToken)
	}

	authed := s.engine.Group("/v1", middleware.AuthMiddleware(authService))
	{
		authed.POST("/rooms", handlers.Room.CreateOrGet)
		authed.GET("/rooms/:id", handlers.Room.Get)

		authed.POST("/rooms/:id/messages", handlers.Message.Send)
		authed.POST("/rooms/:id/files", handlers.Message.SendFile)
		authed.POST("/rooms/:id/enquiries", handlers.Message.SendEnquiry)
		authed.POST("/rooms/:id/read", handlers.Message.MarkRead)
		authed.GET("/rooms/:id/unread", handlers.Message.UnreadCount)

		authed.POST("/presence/online", handlers.Presence.Online)
		authed.POST("/presence/offline", handlers.Presence.Offline)

		authed.GET("/ws/rooms", middleware.AdminOnly(), handlers.Stream.Rooms)
		authed.GET("/ws/rooms/:id/messages", handlers.Stream.Messages)
		authed.GET("/ws/presence", handlers.Stream.Presence)
	}
}

func (s *Server) Start() error {
	go func() {
		s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("Error in starting the server: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit
	s.logger.Infof("Quitting signal received, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Errorf("graceful shutdown failed: %s", err)
		return err
	}

	for _, fn := range s.onShutdown {
		fn()
	}

	s.logger.Infof("Server stopped gracefully")
	return nil
}
