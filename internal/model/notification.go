package model

import (
	"time"

	"gorm.io/datatypes"
)

// Notification персональное уведомление пользователя.
// Content рендерится по шаблону один раз при создании и больше не пересчитывается,
// меняться может только флаг IsRead.
type Notification struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	UserID    uint           `json:"user_id" gorm:"index:idx_user_created,priority:1;not null"`
	Type      string         `json:"type" gorm:"size:64;not null"`
	Data      datatypes.JSON `json:"data"`
	Content   string         `json:"content" gorm:"size:1024"`
	IsRead    bool           `json:"is_read" gorm:"not null;default:false"`
	CreatedAt time.Time      `json:"created_at" gorm:"index:idx_user_created,priority:2,sort:desc"`
}
