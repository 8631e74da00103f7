package ws

import (
	"net/http"
	"os"
	"slices"

	"github.com/gorilla/websocket"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Список разрешенных origins
		allowedOrigins := []string{
			"http://localhost:3000",
			"http://localhost:8080",
		}

		// Для разработки разрешаем все
		if os.Getenv("ENVIRONMENT") == "development" {
			return true
		}

		return slices.Contains(allowedOrigins, origin)
	},
}
