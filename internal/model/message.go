package model

import (
	"time"

	"gorm.io/gorm"
)

// Типы сообщений
const (
	MessageTypeUserText  = "user_text"
	MessageTypeAIText    = "ai_text"
	MessageTypeUserImage = "user_img"
	MessageTypeAIImage   = "ai_img"
	MessageTypeDeleted   = "deleted"
)

// Типы вложений
const (
	AttachmentTypeUserUpload  = "user_upload"
	AttachmentTypeAIGenerated = "ai_generated"
)

// Типы файлов
const (
	FileTypeImage    = "image"
	FileTypeDocument = "document"
)

const (
	// Текст, которым затирается содержимое удаленного сообщения
	DeletedMessageText = "[Message deleted]"

	MaxContentLength = 5000
	MaxFileSize      = 100 << 20 // 100 MiB
)

// ChatMessage сообщение группового чата.
// SenderName денормализован: фиксируется на момент отправки и не обновляется.
type ChatMessage struct {
	gorm.Model
	GroupID     uint             `json:"group_id" gorm:"index:idx_group_created,priority:1;not null"`
	SenderID    uint             `json:"sender_id" gorm:"index;not null"`
	SenderName  string           `json:"sender_name" gorm:"size:100;not null"`
	MessageType string           `json:"message_type" gorm:"size:32;not null;default:user_text"`
	ContentText string           `json:"content_text" gorm:"size:5000"`
	Attachments []ChatAttachment `json:"attachments" gorm:"foreignKey:MessageID"`
}

// ChatAttachment файл, прикрепленный к сообщению. Создается после сообщения,
// не изменяется и отдельно не удаляется.
type ChatAttachment struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	MessageID      uint      `json:"message_id" gorm:"index;not null"`
	AttachmentType string    `json:"attachment_type" gorm:"size:32;not null;default:user_upload"`
	FileType       string    `json:"file_type" gorm:"size:16;not null;default:image"`
	FileName       string    `json:"file_name" gorm:"size:255"`
	FileURL        string    `json:"file_url" gorm:"size:1024;not null"`
	FileSize       int64     `json:"file_size"`
	CreatedAt      time.Time `json:"created_at"`
}

// ValidMessageType проверяет, входит ли тип в известное множество
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeUserText, MessageTypeAIText, MessageTypeUserImage, MessageTypeAIImage, MessageTypeDeleted:
		return true
	}
	return false
}
