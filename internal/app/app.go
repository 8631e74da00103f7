package app

import (
	"log"

	"festapp/chat_backend/internal/config"
	"festapp/chat_backend/internal/handler"
	"festapp/chat_backend/internal/model"
	"festapp/chat_backend/internal/repository"
	"festapp/chat_backend/internal/service"
	"festapp/chat_backend/internal/ws"
)

func Run(cfg *config.Config) {
	db, err := repository.NewDB(cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(
		&model.ChatMessage{},
		&model.ChatAttachment{},
		&model.Notification{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	rdb, err := repository.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}

	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	presenceRepo := repository.NewPresenceRepository(rdb)

	chatService := service.NewChatService(messageRepo)
	notificationService := service.NewNotificationService(notificationRepo)

	fileService, err := service.NewFileService(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// Единственный экземпляр хаба на процесс: socket-обработчик и
	// HTTP-обработчик уведомлений публикуют через него же
	hub := ws.NewHub()
	defer hub.Shutdown()

	socketHandler := ws.NewSocketHandler(hub, chatService, presenceRepo, cfg.ExternalBaseURL)

	chatHandler := handler.NewChatHandler(chatService, presenceRepo, cfg.ExternalBaseURL)
	notificationHandler := handler.NewNotificationHandler(notificationService, hub)
	uploadHandler := handler.NewUploadHandler(fileService, cfg.ExternalBaseURL)

	server := NewServer(chatHandler, notificationHandler, uploadHandler, socketHandler, fileService)
	server.Run(cfg.ServerPort)
}
