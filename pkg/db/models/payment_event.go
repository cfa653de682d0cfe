package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mercaline/mercaline-backend/pkg/enums"
)

// PaymentEvent records an immutable audit entry for one payment transition.
// Rows are append-only; nothing in the codebase updates or deletes them.
// Ordering is by created_at with id as the insertion tiebreaker.
type PaymentEvent struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IntentID  uuid.UUID              `gorm:"column:intent_id;type:uuid;not null;index"`
	Type      enums.PaymentEventType `gorm:"column:type;type:payment_event_type;not null"`
	Payload   json.RawMessage        `gorm:"column:payload;type:jsonb"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
