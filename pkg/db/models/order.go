package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercaline/mercaline-backend/pkg/enums"
)

// Order is the payments core's view of a marketplace order. The wider order
// domain owns the row; this core reads the authoritative total and reports
// status plus the paid timestamp back.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Currency    enums.Currency    `gorm:"column:currency;type:varchar(3);not null;default:'USD'"`
	Status      enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaidAt      *time.Time        `gorm:"column:paid_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
