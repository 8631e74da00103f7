package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"festapp/chat_backend/internal/model"
	"festapp/chat_backend/internal/pkg/httputils"
	"festapp/chat_backend/internal/repository"
	"festapp/chat_backend/internal/service"
	"festapp/chat_backend/internal/ws"

	"github.com/gorilla/mux"
)

// NotificationHandler создает уведомления и публикует их получателям через
// общий хаб — тот же экземпляр, которым пользуется socket-обработчик
type NotificationHandler struct {
	notificationService service.NotificationService
	hub                 *ws.Hub
}

func NewNotificationHandler(notificationService service.NotificationService, hub *ws.Hub) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		hub:                 hub,
	}
}

func (h *NotificationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/notification/read-all", h.markAllRead).Methods("PATCH", "OPTIONS")
	router.HandleFunc("/api/notification/clear", h.clearAll).Methods("DELETE", "OPTIONS")
	router.HandleFunc("/api/notification/{notificationId}/read", h.markRead).Methods("PATCH", "OPTIONS")
	router.HandleFunc("/api/notification/{type}", h.createNotifications).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/notification", h.getNotifications).Methods("GET", "OPTIONS")
}

type createNotificationsRequest struct {
	Data       json.RawMessage `json:"data"`
	ListUserID []uint          `json:"list_user_id"`
}

// @Summary Create notifications
// @Description Render the template for the type and create one notification per user, then push to live connections
// @ID create-notifications
// @Tags notification
// @Accept json
// @Produce json
// @Param type path string true "Notification type"
// @Param body body createNotificationsRequest true "Recipients and template data"
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /notification/{type} [post]
func (h *NotificationHandler) createNotifications(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	notificationType := vars["type"]

	var request createNotificationsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if len(request.ListUserID) == 0 {
		httputils.ResponseError(w, http.StatusBadRequest, "list_user_id must be a non-empty array")
		return
	}

	created, err := h.notificationService.CreateMany(r.Context(), request.ListUserID, notificationType, request.Data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedNotificationType):
			httputils.ResponseError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported notification type: %s", notificationType))
		case errors.Is(err, service.ErrInvalidNotificationData):
			httputils.ResponseError(w, http.StatusBadRequest, "Notification data must be a JSON object")
		default:
			httputils.ResponseError(w, http.StatusInternalServerError, "Failed to create notifications")
		}
		return
	}

	// Fan-out строго после успешной записи
	payloads := make([]model.NotificationPayload, 0, len(created))
	for _, n := range created {
		payload := model.NewNotificationPayload(n)
		h.hub.PublishToUser(n.UserID, fmt.Sprintf("notification-%d", n.UserID), payload)
		payloads = append(payloads, payload)
	}

	httputils.ResponseSuccess(w, http.StatusCreated, payloads)
}

type notificationsPage struct {
	Notifications []model.NotificationPayload `json:"notifications"`
	Pagination    notificationPagination      `json:"pagination"`
}

type notificationPagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

// @Summary List notifications
// @Description Paginated notifications for a user, newest first
// @ID get-notifications
// @Tags notification
// @Produce json
// @Param user_id query int true "User ID"
// @Param page query int false "Page, starting from 1"
// @Param limit query int false "Page size, max 200"
// @Param is_read query bool false "Filter by read flag"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /notification [get]
func (h *NotificationHandler) getNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil || userID <= 0 {
		httputils.ResponseError(w, http.StatusBadRequest, "user_id is required and must be a number")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}

	var isRead *bool
	if raw := r.URL.Query().Get("is_read"); raw != "" {
		value := raw == "true"
		isRead = &value
	}

	notifications, total, err := h.notificationService.GetByUser(r.Context(), uint(userID), page, limit, isRead)
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "Failed to get notifications")
		return
	}

	payloads := make([]model.NotificationPayload, 0, len(notifications))
	for _, n := range notifications {
		payloads = append(payloads, model.NewNotificationPayload(n))
	}

	httputils.ResponseSuccess(w, http.StatusOK, notificationsPage{
		Notifications: payloads,
		Pagination: notificationPagination{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasMore: int64(page*limit) < total,
		},
	})
}

type userIDRequest struct {
	UserID uint `json:"user_id"`
}

// @Summary Mark notification read
// @Description Flip is_read for a single notification owned by the user
// @ID mark-notification-read
// @Tags notification
// @Accept json
// @Produce json
// @Param notificationId path int true "Notification ID"
// @Param body body userIDRequest true "Owning user"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /notification/{notificationId}/read [patch]
func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	notificationID, err := strconv.Atoi(vars["notificationId"])
	if err != nil || notificationID <= 0 {
		httputils.ResponseError(w, http.StatusBadRequest, "Failed to parse notification ID")
		return
	}

	var request userIDRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == 0 {
		httputils.ResponseError(w, http.StatusBadRequest, "user_id must be a number")
		return
	}

	updated, err := h.notificationService.MarkRead(r.Context(), uint(notificationID), request.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			httputils.ResponseError(w, http.StatusNotFound, "Notification not found for this user")
			return
		}
		httputils.ResponseError(w, http.StatusInternalServerError, "Failed to mark as read")
		return
	}

	httputils.ResponseSuccess(w, http.StatusOK, model.NewNotificationPayload(*updated))
}

type markAllReadData struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

// @Summary Mark all notifications read
// @ID mark-all-notifications-read
// @Tags notification
// @Accept json
// @Produce json
// @Param body body userIDRequest true "Owning user"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /notification/read-all [patch]
func (h *NotificationHandler) markAllRead(w http.ResponseWriter, r *http.Request) {
	var request userIDRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == 0 {
		httputils.ResponseError(w, http.StatusBadRequest, "user_id must be a number")
		return
	}

	affected, err := h.notificationService.MarkAllRead(r.Context(), request.UserID)
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "Failed to mark all as read")
		return
	}

	// Безусловный UPDATE непрочитанных: matched и modified совпадают
	httputils.ResponseSuccess(w, http.StatusOK, markAllReadData{
		Matched:  affected,
		Modified: affected,
	})
}

// @Summary Clear notifications
// @Description Delete every notification belonging to the user
// @ID clear-notifications
// @Tags notification
// @Accept json
// @Produce json
// @Param body body userIDRequest true "Owning user"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /notification/clear [delete]
func (h *NotificationHandler) clearAll(w http.ResponseWriter, r *http.Request) {
	var request userIDRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == 0 {
		httputils.ResponseError(w, http.StatusBadRequest, "user_id must be a number")
		return
	}

	deleted, err := h.notificationService.ClearAll(r.Context(), request.UserID)
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "Failed to clear notifications")
		return
	}

	httputils.ResponseSuccess(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
