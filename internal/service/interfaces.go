package service

import (
	"context"
	"encoding/json"

	"festapp/chat_backend/internal/model"
	"festapp/chat_backend/internal/repository"
)

// AttachmentInput входные данные вложения при отправке сообщения
type AttachmentInput struct {
	AttachmentType string `json:"attachmentType"`
	FileType       string `json:"fileType"`
	FileName       string `json:"fileName"`
	FileURL        string `json:"fileUrl"`
	FileSize       int64  `json:"fileSize"`
}

type ChatService interface {
	SendMessage(ctx context.Context, groupID, senderID uint, senderName, messageType, contentText string) (*model.ChatMessage, error)
	SendMessageWithAttachment(ctx context.Context, groupID, senderID uint, senderName, messageType, contentText string, attachment AttachmentInput) (*model.ChatMessage, error)
	GetMessages(ctx context.Context, groupID uint, page, limit int) ([]model.ChatMessage, error)
	GetLatestMessage(ctx context.Context, groupID uint) (*model.ChatMessage, error)
	DeleteMessage(ctx context.Context, messageID, byUserID uint) (*model.ChatMessage, error)
	GetGroupFiles(ctx context.Context, groupID uint, fileType string) ([]model.ChatMessage, error)
	GetGroupStats(ctx context.Context, groupID uint) (*repository.GroupStats, error)
}

type NotificationService interface {
	CreateMany(ctx context.Context, userIDs []uint, notificationType string, data json.RawMessage) ([]model.Notification, error)
	GetByUser(ctx context.Context, userID uint, page, limit int, isRead *bool) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, notificationID, userID uint) (*model.Notification, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	ClearAll(ctx context.Context, userID uint) (int64, error)
}
