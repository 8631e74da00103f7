package model

import (
	"encoding/json"
	"time"
)

// MessagePayload форма сообщения, уходящая наружу — и в событие new_message,
// и в ответы REST. URL вложений должны быть преобразованы в абсолютные до сборки.
type MessagePayload struct {
	MessageID   uint                `json:"messageId"`
	GroupID     uint                `json:"groupId"`
	SenderID    uint                `json:"senderId"`
	SenderName  string              `json:"senderName"`
	MessageType string              `json:"messageType"`
	ContentText string              `json:"contentText"`
	Attachments []AttachmentPayload `json:"attachments"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// AttachmentPayload форма вложения для клиента
type AttachmentPayload struct {
	AttachmentID   uint      `json:"attachmentId"`
	MessageID      uint      `json:"messageId"`
	AttachmentType string    `json:"attachmentType"`
	FileType       string    `json:"fileType"`
	FileName       string    `json:"fileName"`
	FileURL        string    `json:"fileUrl"`
	FileSize       int64     `json:"fileSize"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NotificationPayload форма уведомления для клиента
type NotificationPayload struct {
	NotificationID uint            `json:"notificationId"`
	UserID         uint            `json:"userId"`
	Type           string          `json:"type"`
	Content        string          `json:"content"`
	Data           json.RawMessage `json:"data"`
	IsRead         bool            `json:"isRead"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// NewMessagePayload собирает payload из модели
func NewMessagePayload(m ChatMessage) MessagePayload {
	attachments := make([]AttachmentPayload, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, AttachmentPayload{
			AttachmentID:   a.ID,
			MessageID:      a.MessageID,
			AttachmentType: a.AttachmentType,
			FileType:       a.FileType,
			FileName:       a.FileName,
			FileURL:        a.FileURL,
			FileSize:       a.FileSize,
			CreatedAt:      a.CreatedAt,
		})
	}

	return MessagePayload{
		MessageID:   m.ID,
		GroupID:     m.GroupID,
		SenderID:    m.SenderID,
		SenderName:  m.SenderName,
		MessageType: m.MessageType,
		ContentText: m.ContentText,
		Attachments: attachments,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// NewNotificationPayload собирает payload из модели
func NewNotificationPayload(n Notification) NotificationPayload {
	return NotificationPayload{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Content:        n.Content,
		Data:           json.RawMessage(n.Data),
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt,
	}
}
