package handler

import (
	"context"
	"net/http"
	"time"

	"festapp/chat_backend/internal/pkg/httputils"
)

type PongResponse struct {
	Message string `json:"message"`
}

// Ping
// @Summary Пингануть сервер
// @Description Пингануть сервер
// @Tags system
// @Produce json
// @Success 200 {object} PongResponse
// @Failure 404
// @Router /ping [get]
func Ping(w http.ResponseWriter, r *http.Request) {
	httputils.ResponseJSON(w, 200, PongResponse{Message: "Pong"})
}

// HealthChecker проверка доступности внешней зависимости
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Health
// @Summary Проверка живости сервера
// @Description Отвечает OK, когда сервер и файловое хранилище доступны
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func Health(storage HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "OK"
		code := http.StatusOK

		if err := storage.HealthCheck(r.Context()); err != nil {
			status = "DEGRADED"
			code = http.StatusServiceUnavailable
		}

		httputils.ResponseJSON(w, code, HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
		})
	}
}
