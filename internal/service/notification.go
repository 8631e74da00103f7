package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"festapp/chat_backend/internal/model"
	"festapp/chat_backend/internal/repository"

	"gorm.io/datatypes"
)

var (
	// ErrUnsupportedNotificationType тип не зарегистрирован в реестре шаблонов
	ErrUnsupportedNotificationType = errors.New("unsupported notification type")
	// ErrEmptyUserList список получателей пуст
	ErrEmptyUserList = errors.New("user list cannot be empty")
	// ErrInvalidNotificationData payload шаблона не является JSON-объектом
	ErrInvalidNotificationData = errors.New("invalid notification data")
)

// notificationService реализация NotificationService
type notificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService создает новый экземпляр NotificationService
func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

// CreateMany рендерит контент по шаблону типа один раз и создает по
// уведомлению на каждого получателя. Возвращенная пачка уходит в fan-out.
func (s *notificationService) CreateMany(ctx context.Context, userIDs []uint, notificationType string, data json.RawMessage) ([]model.Notification, error) {
	if len(userIDs) == 0 {
		return nil, ErrEmptyUserList
	}

	var payload map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNotificationData, err)
		}
	}

	content, err := RenderTemplate(notificationType, payload)
	if err != nil {
		return nil, err
	}

	batch := make([]*model.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		if userID == 0 {
			return nil, errors.New("userID cannot be zero")
		}
		batch = append(batch, &model.Notification{
			UserID:  userID,
			Type:    notificationType,
			Data:    datatypes.JSON(data),
			Content: content,
			IsRead:  false,
		})
	}

	if err := s.notificationRepo.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}

	created := make([]model.Notification, 0, len(batch))
	for _, n := range batch {
		created = append(created, *n)
	}

	return created, nil
}

func (s *notificationService) GetByUser(ctx context.Context, userID uint, page, limit int, isRead *bool) ([]model.Notification, int64, error) {
	if userID == 0 {
		return nil, 0, errors.New("userID cannot be zero")
	}

	if page <= 0 {
		page = 1
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	return s.notificationRepo.GetByUser(ctx, userID, page, limit, isRead)
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID uint) (*model.Notification, error) {
	if notificationID == 0 || userID == 0 {
		return nil, errors.New("notificationID and userID cannot be zero")
	}

	return s.notificationRepo.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, errors.New("userID cannot be zero")
	}

	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *notificationService) ClearAll(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, errors.New("userID cannot be zero")
	}

	return s.notificationRepo.ClearAll(ctx, userID)
}
