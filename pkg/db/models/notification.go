package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercaline/mercaline-backend/pkg/enums"
)

// Notification stores payment-update messages delivered to the order's buyer.
type Notification struct {
	ID        uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID                 `gorm:"column:order_id;type:uuid;not null;index"`
	UserID    uuid.UUID                 `gorm:"column:user_id;type:uuid;not null"`
	Channel   enums.NotificationChannel `gorm:"column:channel;type:notification_channel;not null;default:'in_app'"`
	Message   string                    `gorm:"column:message;type:text;not null"`
	ReadAt    *time.Time                `gorm:"column:read_at;type:timestamptz"`
	CreatedAt time.Time                 `gorm:"column:created_at;type:timestamptz;default:now()"`
}
