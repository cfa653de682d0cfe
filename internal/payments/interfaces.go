package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercaline/mercaline-backend/pkg/db/models"
	"github.com/mercaline/mercaline-backend/pkg/enums"
	"github.com/mercaline/mercaline-backend/pkg/pagination"
)

// Repository defines persistence operations for payment intents.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentIntent, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PaymentIntent, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.PaymentIntent, error)
}

// Service is the payment intent state machine and refund ledger.
type Service interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*IntentView, error)
	GetByID(ctx context.Context, intentID uuid.UUID) (*IntentView, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*IntentView, error)
	Authorize(ctx context.Context, intentID uuid.UUID) (*IntentView, error)
	Capture(ctx context.Context, intentID uuid.UUID) (*IntentView, error)
	Cancel(ctx context.Context, intentID uuid.UUID, reason *string) (*IntentView, error)
	Fail(ctx context.Context, intentID uuid.UUID, reason string) (*IntentView, error)
	Refund(ctx context.Context, input RefundInput) (*RefundView, error)
	Confirm3DSecure(ctx context.Context, intentID uuid.UUID, outcome ThreeDSOutcome) (*IntentView, error)
	ExpirePending(ctx context.Context, intentID uuid.UUID) error
	SimulateOutcome(ctx context.Context, intentID uuid.UUID, outcome SimulatedOutcome) (*IntentView, error)
	ListStalePending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	GetEvents(ctx context.Context, intentID uuid.UUID, params pagination.Params) (*EventList, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderDirectory is the slice of the order domain the payment core needs:
// read the authoritative total, report payment outcomes back.
type OrderDirectory interface {
	Fetch(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error)
	SetStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, status enums.OrderStatus, paidAt *time.Time) error
}

// Notifier informs the buyer about payment outcomes. Implementations must
// persist in the supplied transaction so a rolled-back transition never
// leaves a stray notification behind.
type Notifier interface {
	SendPaymentUpdate(ctx context.Context, tx *gorm.DB, orderID, userID uuid.UUID, message string) error
}

// EventRecorder appends one audit entry per transition inside the
// transition's own transaction.
type EventRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, intentID uuid.UUID, eventType enums.PaymentEventType, payload any) (*models.PaymentEvent, error)
	ListPage(ctx context.Context, intentID uuid.UUID, params pagination.Params) ([]models.PaymentEvent, *string, error)
}
