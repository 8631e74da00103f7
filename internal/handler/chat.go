package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"festapp/chat_backend/internal/model"
	"festapp/chat_backend/internal/pkg/auth"
	"festapp/chat_backend/internal/pkg/httputils"
	"festapp/chat_backend/internal/pkg/urlutil"
	"festapp/chat_backend/internal/repository"
	"festapp/chat_backend/internal/service"

	"github.com/gorilla/mux"
)

type ChatHandler struct {
	chatService service.ChatService
	presence    repository.PresenceRepository
	baseURL     string
}

func NewChatHandler(chatService service.ChatService, presence repository.PresenceRepository, baseURL string) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		presence:    presence,
		baseURL:     baseURL,
	}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/chat/messages/{groupId}", h.getMessages).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/chat/latest-messages", h.getLatestMessages).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/chat/send", h.sendMessage).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/chat/messages/{messageId}", h.deleteMessage).Methods("DELETE", "OPTIONS")
	router.HandleFunc("/api/chat/group-files", h.getGroupFiles).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/chat/stats/{groupId}", h.getGroupStats).Methods("GET", "OPTIONS")
}

type messagesPage struct {
	Messages   []model.MessagePayload `json:"messages"`
	Pagination pagination             `json:"pagination"`
}

type pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

func (h *ChatHandler) messagePayloads(messages []model.ChatMessage) []model.MessagePayload {
	payloads := make([]model.MessagePayload, 0, len(messages))
	for i := range messages {
		urlutil.ResolveMessageURLs(h.baseURL, &messages[i])
		payloads = append(payloads, model.NewMessagePayload(messages[i]))
	}
	return payloads
}

// @Summary Get group messages
// @Description Paginated message history for a group, newest first
// @ID get-group-messages
// @Tags chat
// @Produce json
// @Param groupId path int true "Group ID"
// @Param page query int false "Page, starting from 1"
// @Param limit query int false "Page size, max 100"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /chat/messages/{groupId} [get]
func (h *ChatHandler) getMessages(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	groupID, err := strconv.Atoi(vars["groupId"])
	if err != nil || groupID <= 0 {
		httputils.ResponseError(w, http.StatusBadRequest, "Failed to parse group ID")
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
	// Лимит зажимается здесь же: hasMore считается от фактического размера страницы
	if limit > 100 {
		limit = 100
	}

	messages, err := h.chatService.GetMessages(r.Context(), uint(groupID), page, limit)
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "Failed to get messages")
		return
	}

	httputils.ResponseSuccess(w, http.StatusOK, messagesPage{
		Messages: h.messagePayloads(messages),
		Pagination: pagination{
			Page:    page,
			Limit:   limit,
			HasMore: len(messages) == limit,
		},
	})
}

// @Summary Latest messages per group
// @Description Most recent message for each of the requested groups
// @ID get-latest-messages
// @Tags chat
// @Produce json
// @Param groupIds query string true "Comma-separated group IDs"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /chat/latest-messages [get]
func (h *ChatHandler) getLatestMessages(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("groupIds")
	if raw == "" {
		httputils.ResponseError(w, http.StatusBadRequest, "Group IDs are required")
		return
	}

	latest := make([]model.MessagePayload, 0)
	for _, part := range strings.Split(raw, ",") {
		groupID, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || groupID <= 0 {
			httputils.ResponseError(w, http.StatusBadRequest, "Failed to parse group IDs")
			return
		}

		msg, err := h.chatService.GetLatestMessage(r.Context(), uint(groupID))
		if err != nil {
			if errors.Is(err, repository.ErrMessageNotFound) {
				continue // у группы еще нет сообщений
			}
			httputils.ResponseError(w, http.StatusInternalServerError, "Failed to get latest messages")
			return
		}

		urlutil.ResolveMessageURLs(h.baseURL, msg)
		latest = append(latest, model.NewMessagePayload(*msg))
	}

	httputils.ResponseSuccess(w, http.StatusOK, latest)
}

type sendMessageRequest struct {
	GroupID     uint   `json:"groupId"`
	MessageType string `json:"messageType"`
	ContentText string `json:"contentText"`
	SenderName  string `json:"senderName"`
}

// @Summary Send message
// @Description Persist a chat message on behalf of the authenticated user
// @ID send-message
// @Tags chat
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param messageData body sendMessageRequest true "Message data"
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /chat/send [post]
func (h *ChatHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.FromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "Invalid authentication token")
		return
	}

	var request sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if request.SenderName == "" {
		httputils.ResponseError(w, http.StatusBadRequest, "Sender name is required")
		return
	}

	msg, err := h.chatService.SendMessage(
		r.Context(),
		request.GroupID, claims.UserID, request.SenderName,
		request.MessageType, request.ContentText,
	)
	if err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, err.Error())
		return
	}

	urlutil.ResolveMessageURLs(h.baseURL, msg)
	httputils.ResponseSuccess(w, http.StatusCreated, model.NewMessagePayload(*msg))
}

// @Summary Delete message
// @Description Rewrite a message to a deletion tombstone, sender only
// @ID delete-message
// @Tags chat
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param messageId path int true "Message ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /chat/messages/{messageId} [delete]
func (h *ChatHandler) deleteMessage(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.FromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "Invalid authentication token")
		return
	}

	vars := mux.Vars(r)
	messageID, err := strconv.Atoi(vars["messageId"])
	if err != nil || messageID <= 0 {
		httputils.ResponseError(w, http.StatusBadRequest, "Failed to parse message ID")
		return
	}

	_, err = h.chatService.DeleteMessage(r.Context(), uint(messageID), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMessageNotFound):
			httputils.ResponseError(w, http.StatusNotFound, "Message not found")
		case errors.Is(err, repository.ErrNotMessageOwner):
			httputils.ResponseError(w, http.StatusForbidden, "Not authorized to delete this message")
		default:
			httputils.ResponseError(w, http.StatusInternalServerError, "Failed to delete message")
		}
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Message deleted successfully",
	})
}

type groupFile struct {
	AttachmentID     uint      `json:"attachmentId"`
	MessageID        uint      `json:"messageId"`
	SenderID         uint      `json:"senderId"`
	FileName         string    `json:"fileName"`
	FileURL          string    `json:"fileUrl"`
	FileType         string    `json:"fileType"`
	FileSize         int64     `json:"fileSize"`
	AttachmentType   string    `json:"attachmentType"`
	UploadedAt       time.Time `json:"uploadedAt"`
	MessageCreatedAt time.Time `json:"messageCreatedAt"`
}

type groupFilesData struct {
	GroupID     uint                   `json:"groupId"`
	TotalFiles  int                    `json:"totalFiles"`
	Files       []groupFile            `json:"files"`
	FilesByType map[string][]groupFile `json:"filesByType"`
	Statistics  groupFilesStats        `json:"statistics"`
}

type groupFilesStats struct {
	TotalImages    int   `json:"totalImages"`
	TotalDocuments int   `json:"totalDocuments"`
	TotalSize      int64 `json:"totalSize"`
}

// @Summary Group files
// @Description Every attachment shared in a group, grouped by file type
// @ID get-group-files
// @Tags chat
// @Produce json
// @Param groupId query int true "Group ID"
// @Param fileType query string false "Filter: image or document"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /chat/group-files [get]
func (h *ChatHandler) getGroupFiles(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.Atoi(r.URL.Query().Get("groupId"))
	if err != nil || groupID <= 0 {
		httputils.ResponseError(w, http.StatusBadRequest, "Group ID is required")
		return
	}

	fileType := r.URL.Query().Get("fileType")

	messages, err := h.chatService.GetGroupFiles(r.Context(), uint(groupID), fileType)
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "Failed to get group files")
		return
	}

	files := make([]groupFile, 0)
	filesByType := make(map[string][]groupFile)
	var totalSize int64

	for _, msg := range messages {
		for _, a := range msg.Attachments {
			f := groupFile{
				AttachmentID:     a.ID,
				MessageID:        msg.ID,
				SenderID:         msg.SenderID,
				FileName:         a.FileName,
				FileURL:          urlutil.ResolveFileURL(h.baseURL, a.FileURL),
				FileType:         a.FileType,
				FileSize:         a.FileSize,
				AttachmentType:   a.AttachmentType,
				UploadedAt:       a.CreatedAt,
				MessageCreatedAt: msg.CreatedAt,
			}
			files = append(files, f)
			filesByType[a.FileType] = append(filesByType[a.FileType], f)
			totalSize += a.FileSize
		}
	}

	httputils.ResponseSuccess(w, http.StatusOK, groupFilesData{
		GroupID:     uint(groupID),
		TotalFiles:  len(files),
		Files:       files,
		FilesByType: filesByType,
		Statistics: groupFilesStats{
			TotalImages:    len(filesByType[model.FileTypeImage]),
			TotalDocuments: len(filesByType[model.FileTypeDocument]),
			TotalSize:      totalSize,
		},
	})
}

type groupStatsData struct {
	TotalMessages  int64            `json:"totalMessages"`
	MessagesByType map[string]int64 `json:"messagesByType"`
	LatestMessage  *time.Time       `json:"latestMessage"`
	OldestMessage  *time.Time       `json:"oldestMessage"`
	ActiveUsers    int64            `json:"activeUsers"`
	OnlineUserIDs  []uint           `json:"onlineUserIds"`
}

// @Summary Group statistics
// @Description Message counts per type plus online member count
// @ID get-group-stats
// @Tags chat
// @Produce json
// @Param groupId path int true "Group ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /chat/stats/{groupId} [get]
func (h *ChatHandler) getGroupStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	groupID, err := strconv.Atoi(vars["groupId"])
	if err != nil || groupID <= 0 {
		httputils.ResponseError(w, http.StatusBadRequest, "Failed to parse group ID")
		return
	}

	stats, err := h.chatService.GetGroupStats(r.Context(), uint(groupID))
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "Failed to get statistics")
		return
	}

	// Статистика присутствия вторична, не валим весь ответ
	activeUsers, err := h.presence.CountOnline(r.Context(), uint(groupID))
	if err != nil {
		activeUsers = 0
	}

	onlineUsers, err := h.presence.GetOnlineUsers(r.Context(), uint(groupID))
	if err != nil {
		onlineUsers = []uint{}
	}

	httputils.ResponseSuccess(w, http.StatusOK, groupStatsData{
		TotalMessages:  stats.TotalMessages,
		MessagesByType: stats.MessagesByType,
		LatestMessage:  stats.LatestMessage,
		OldestMessage:  stats.OldestMessage,
		ActiveUsers:    activeUsers,
		OnlineUserIDs:  onlineUsers,
	})
}
