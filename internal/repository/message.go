package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"festapp/chat_backend/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrMessageNotFound сообщение с таким ID не существует
	ErrMessageNotFound = errors.New("message not found")
	// ErrNotMessageOwner действие доступно только отправителю сообщения
	ErrNotMessageOwner = errors.New("not the message owner")
)

// GroupStats агрегированная статистика сообщений группы
type GroupStats struct {
	TotalMessages  int64
	MessagesByType map[string]int64
	LatestMessage  *time.Time
	OldestMessage  *time.Time
}

// MessageRepository хранилище сообщений чата. Единственный источник истины:
// рассылка по комнатам выполняется только после успешной записи сюда.
type MessageRepository interface {
	Create(ctx context.Context, msg *model.ChatMessage) error
	CreateAttachment(ctx context.Context, attachment *model.ChatAttachment) error
	GetByGroup(ctx context.Context, groupID uint, page, limit int) ([]model.ChatMessage, error)
	GetLatestByGroup(ctx context.Context, groupID uint) (*model.ChatMessage, error)
	MarkDeleted(ctx context.Context, messageID, byUserID uint) (*model.ChatMessage, error)
	GetGroupFiles(ctx context.Context, groupID uint, fileType string) ([]model.ChatMessage, error)
	GetGroupStats(ctx context.Context, groupID uint) (*GroupStats, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository создает новый экземпляр MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// CreateAttachment сохраняет вложение. Родительское сообщение обязано существовать.
func (r *messageRepository) CreateAttachment(ctx context.Context, attachment *model.ChatAttachment) error {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Where("id = ?", attachment.MessageID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check parent message: %w", err)
	}

	if count == 0 {
		return ErrMessageNotFound
	}

	return r.db.WithContext(ctx).Create(attachment).Error
}

// GetByGroup возвращает страницу сообщений группы, новые первыми
func (r *messageRepository) GetByGroup(ctx context.Context, groupID uint, page, limit int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage

	err := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepository) GetLatestByGroup(ctx context.Context, groupID uint) (*model.ChatMessage, error) {
	var msg model.ChatMessage
	err := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	return &msg, nil
}

// MarkDeleted затирает содержимое сообщения тумбстоуном. Разрешено только отправителю.
func (r *messageRepository) MarkDeleted(ctx context.Context, messageID, byUserID uint) (*model.ChatMessage, error) {
	var msg model.ChatMessage

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&msg, messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMessageNotFound
			}
			return err
		}

		if msg.SenderID != byUserID {
			return ErrNotMessageOwner
		}

		return tx.Model(&msg).Updates(map[string]any{
			"content_text": model.DeletedMessageText,
			"message_type": model.MessageTypeDeleted,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &msg, nil
}

// GetGroupFiles возвращает сообщения группы, у которых есть вложения,
// с опциональным фильтром по типу файла
func (r *messageRepository) GetGroupFiles(ctx context.Context, groupID uint, fileType string) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage

	preload := func(db *gorm.DB) *gorm.DB {
		if fileType != "" {
			return db.Where("file_type = ?", fileType)
		}
		return db
	}

	err := r.db.WithContext(ctx).
		Preload("Attachments", preload).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepository) GetGroupStats(ctx context.Context, groupID uint) (*GroupStats, error) {
	stats := &GroupStats{MessagesByType: make(map[string]int64)}

	type typeCount struct {
		MessageType string
		Count       int64
	}

	var counts []typeCount
	err := r.db.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Select("message_type, count(*) as count").
		Where("group_id = ?", groupID).
		Group("message_type").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	for _, c := range counts {
		stats.MessagesByType[c.MessageType] = c.Count
		stats.TotalMessages += c.Count
	}

	if stats.TotalMessages == 0 {
		return stats, nil
	}

	type bounds struct {
		Latest time.Time
		Oldest time.Time
	}

	var b bounds
	err = r.db.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Select("max(created_at) as latest, min(created_at) as oldest").
		Where("group_id = ?", groupID).
		Scan(&b).Error
	if err != nil {
		return nil, err
	}

	stats.LatestMessage = &b.Latest
	stats.OldestMessage = &b.Oldest

	return stats, nil
}
