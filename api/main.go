// @title Festival Chat Backend
// @version 0.1
// @description Group chat and notification fan-out service for the festival platform.

// @host localhost:8080
// @BasePath /api
// @query.collection.format multi
// @schemes http

package main

import (
	"log"

	_ "festapp/chat_backend/docs"
	"festapp/chat_backend/internal/app"
	"festapp/chat_backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	app.Run(cfg)
}
