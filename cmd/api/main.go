package main

import (
	"context"
	"log"

	"storefront-chat/config"
	"storefront-chat/internal/handler"
	appredis "storefront-chat/internal/redis"
	"storefront-chat/internal/repository"
	"storefront-chat/internal/server"
	"storefront-chat/internal/services"
	"storefront-chat/internal/storage"
	"storefront-chat/internal/notify"
	"storefront-chat/internal/websocket"
	"storefront-chat/pkg/database"
	"storefront-chat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	redisClient := appredis.NewClient(appredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	publisher := appredis.NewPublisher(redisClient)
	subscriber := appredis.NewSubscriber(redisClient)
	presenceStore := appredis.NewPresenceStore(redisClient, publisher)

	ctx := context.Background()
	providers := make([]storage.Provider, 0, len(cfg.Upload.Providers))
	for _, pc := range cfg.Upload.Providers {
		p, err := storage.NewS3Provider(ctx, pc)
		if err != nil {
			l.Warnf("skipping storage provider %s: %v", pc.Name, err)
			continue
		}
		providers = append(providers, p)
	}
	chain := storage.NewChain(l, providers...)

	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpiryMin, cfg.AdminEmail, cfg.AdminPasswordHash)
	roomService := services.NewRoomService(roomRepo, publisher, subscriber, l)
	uploadService := services.NewUploadService(chain, cfg.Upload.MaxBytes)
	notifier := notify.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SenderMail, cfg.CompanyName)
	messageService := services.NewMessageService(messageRepo, roomService, uploadService, notifier, publisher, subscriber, l, cfg.Chat.MaxMessageLength)
	presenceTracker := services.NewPresenceTracker(presenceStore, subscriber, services.PresenceConfig{
		HeartbeatInterval: cfg.Presence.HeartbeatInterval,
		StalenessWindow:   cfg.Presence.StalenessWindow,
		ReevalInterval:    cfg.Presence.ReevalInterval,
	}, l)

	srv := server.New(cfg, l)
	srv.OnShutdown(presenceTracker.Close)
	srv.SetupRoutes(&server.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Room:     handler.NewRoomHandler(roomService, cfg.CompanyEmail),
		Message:  handler.NewMessageHandler(messageService),
		Presence: handler.NewPresenceHandler(presenceTracker),
		Stream:   websocket.NewStreamHandler(roomService, messageService, presenceTracker, l),
	}, authService)

	if err := srv.Start(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
