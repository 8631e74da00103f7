package app

import (
	"log"
	"net/http"
	"time"

	"festapp/chat_backend/internal/handler"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	router *mux.Router
}

func NewServer(
	chatHandler *handler.ChatHandler,
	notificationHandler *handler.NotificationHandler,
	uploadHandler *handler.UploadHandler,
	socketHandler http.Handler,
	storage handler.HealthChecker,
) *Server {
	router := mux.NewRouter()

	// Routes
	chatHandler.RegisterRoutes(router)
	notificationHandler.RegisterRoutes(router)
	uploadHandler.RegisterRoutes(router)

	router.Handle("/ws", socketHandler)

	router.HandleFunc("/ping", handler.Ping).Methods("GET")
	router.HandleFunc("/health", handler.Health(storage)).Methods("GET")

	// Настройка Swagger
	swaggerHandler := httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // Важно: относительный путь
	)

	router.PathPrefix("/swagger/").Handler(swaggerHandler)

	return &Server{router: router}
}

func (s *Server) Run(port string) {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
	)

	srv := &http.Server{
		Handler:      cors(s.router),
		Addr:         ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(srv.ListenAndServe())
}
