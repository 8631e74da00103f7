package repository

import (
	"context"
	"errors"

	"festapp/chat_backend/internal/model"

	"gorm.io/gorm"
)

// ErrNotificationNotFound уведомление не найдено или принадлежит другому пользователю
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository хранилище персональных уведомлений
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*model.Notification) error
	GetByUser(ctx context.Context, userID uint, page, limit int, isRead *bool) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, notificationID, userID uint) (*model.Notification, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	ClearAll(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository создает новый экземпляр NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return errors.New("notifications batch cannot be empty")
	}

	return r.db.WithContext(ctx).Create(notifications).Error
}

// GetByUser возвращает страницу уведомлений пользователя, новые первыми,
// с опциональным фильтром по флагу прочтения. Вторым значением — общее число.
func (r *notificationRepository) GetByUser(ctx context.Context, userID uint, page, limit int, isRead *bool) ([]model.Notification, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ?", userID)

	if isRead != nil {
		query = query.Where("is_read = ?", *isRead)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []model.Notification
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// MarkRead помечает уведомление прочитанным в рамках владельца
func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, userID uint) (*model.Notification, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrNotificationNotFound
	}

	var notification model.Notification
	if err := r.db.WithContext(ctx).First(&notification, notificationID).Error; err != nil {
		return nil, err
	}

	return &notification, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)

	return result.RowsAffected, result.Error
}

func (r *notificationRepository) ClearAll(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Notification{})

	return result.RowsAffected, result.Error
}
