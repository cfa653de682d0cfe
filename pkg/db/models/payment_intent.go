package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercaline/mercaline-backend/pkg/enums"
)

// PaymentIntent tracks one attempt to collect payment for one order. The
// unique index on order_id is what guarantees at most one intent per order
// under concurrent creation.
type PaymentIntent struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_payment_intents_order_id"`
	Method            enums.PaymentMethod `gorm:"column:method;type:payment_method;not null;default:'credit_card'"`
	Status            enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'created'"`
	Amount            decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency          enums.Currency      `gorm:"column:currency;type:varchar(3);not null;default:'USD'"`
	Provider          *string             `gorm:"column:provider"`
	ExternalReference *string             `gorm:"column:external_reference"`
	CardBrand         *enums.CardBrand    `gorm:"column:card_brand;type:card_brand"`
	CardLast4         *string             `gorm:"column:card_last4;type:varchar(4)"`
	Requires3DSecure  bool                `gorm:"column:requires_3d_secure;not null;default:false"`
	InstallmentCount  *int                `gorm:"column:installment_count"`
	InstallmentAmount *decimal.Decimal    `gorm:"column:installment_amount;type:numeric(12,2)"`
	RefundedAmount    decimal.Decimal     `gorm:"column:refunded_amount;type:numeric(12,2);not null;default:0"`
	FailureReason     *string             `gorm:"column:failure_reason"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// RemainingAmount returns how much of the captured amount is still refundable.
func (p PaymentIntent) RemainingAmount() decimal.Decimal {
	return p.Amount.Sub(p.RefundedAmount)
}
