package payments

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercaline/mercaline-backend/pkg/db/models"
	"github.com/mercaline/mercaline-backend/pkg/enums"
)

// ThreeDSOutcome is the result the cardholder's bank reports after a 3-D
// Secure challenge.
type ThreeDSOutcome string

const (
	ThreeDSOutcomeSuccess ThreeDSOutcome = "success"
	ThreeDSOutcomeFailure ThreeDSOutcome = "failure"
)

// ParseThreeDSOutcome converts raw input into a ThreeDSOutcome.
func ParseThreeDSOutcome(value string) (ThreeDSOutcome, error) {
	switch ThreeDSOutcome(value) {
	case ThreeDSOutcomeSuccess, ThreeDSOutcomeFailure:
		return ThreeDSOutcome(value), nil
	}
	return "", fmt.Errorf("invalid 3ds outcome %q", value)
}

// SimulatedOutcome selects which terminal path a sandbox simulation drives.
type SimulatedOutcome string

const (
	SimulatedOutcomeSuccess SimulatedOutcome = "success"
	SimulatedOutcomeFailure SimulatedOutcome = "failure"
)

// ParseSimulatedOutcome converts raw input into a SimulatedOutcome.
func ParseSimulatedOutcome(value string) (SimulatedOutcome, error) {
	switch SimulatedOutcome(value) {
	case SimulatedOutcomeSuccess, SimulatedOutcomeFailure:
		return SimulatedOutcome(value), nil
	}
	return "", fmt.Errorf("invalid simulated outcome %q", value)
}

// CreateIntentInput carries everything a caller may submit when opening a
// payment flow. The amount is intentionally absent: it comes from the order
// row, never from the caller. Currency is accepted for caller convenience but
// the order's currency is authoritative; a count of one is valid and simply
// records no installment plan.
type CreateIntentInput struct {
	OrderID          uuid.UUID           `json:"order_id" validate:"required"`
	Method           enums.PaymentMethod `json:"method" validate:"required"`
	Currency         string              `json:"currency,omitempty"`
	CardNumber       string              `json:"card_number,omitempty"`
	InstallmentCount *int                `json:"installment_count,omitempty" validate:"omitempty,gte=1"`
}

// RefundInput carries a refund request. A nil amount refunds whatever is
// still outstanding.
type RefundInput struct {
	IntentID uuid.UUID
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Reason   *string          `json:"reason,omitempty"`
}

// IntentView is the external representation of a payment intent.
type IntentView struct {
	ID                uuid.UUID           `json:"id"`
	OrderID           uuid.UUID           `json:"order_id"`
	Method            enums.PaymentMethod `json:"method"`
	Status            enums.PaymentStatus `json:"status"`
	Amount            decimal.Decimal     `json:"amount"`
	Currency          enums.Currency      `json:"currency"`
	Provider          *string             `json:"provider,omitempty"`
	ExternalReference *string             `json:"external_reference,omitempty"`
	CardBrand         *enums.CardBrand    `json:"card_brand,omitempty"`
	CardLast4         *string             `json:"card_last4,omitempty"`
	Requires3DSecure  bool                `json:"requires_3d_secure"`
	InstallmentCount  *int                `json:"installment_count,omitempty"`
	InstallmentAmount *decimal.Decimal    `json:"installment_amount,omitempty"`
	RefundedAmount    decimal.Decimal     `json:"refunded_amount"`
	RemainingAmount   decimal.Decimal     `json:"remaining_amount"`
	FailureReason     *string             `json:"failure_reason,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// RefundView reports the outcome of one refund request: the amount refunded
// by this call, the cumulative total, and what is still refundable.
type RefundView struct {
	IntentID            uuid.UUID           `json:"intent_id"`
	RefundedAmount      decimal.Decimal     `json:"refunded_amount"`
	TotalRefundedAmount decimal.Decimal     `json:"total_refunded_amount"`
	RemainingAmount     decimal.Decimal     `json:"remaining_amount"`
	Status              enums.PaymentStatus `json:"status"`
}

// EventView is the external representation of one audit log entry.
type EventView struct {
	ID        uuid.UUID              `json:"id"`
	IntentID  uuid.UUID              `json:"intent_id"`
	Type      enums.PaymentEventType `json:"type"`
	Payload   json.RawMessage        `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// EventList is a cursor page of audit log entries in append order.
type EventList struct {
	Items      []EventView `json:"items"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}

func intentToView(intent *models.PaymentIntent) *IntentView {
	if intent == nil {
		return nil
	}
	return &IntentView{
		ID:                intent.ID,
		OrderID:           intent.OrderID,
		Method:            intent.Method,
		Status:            intent.Status,
		Amount:            intent.Amount,
		Currency:          intent.Currency,
		Provider:          intent.Provider,
		ExternalReference: intent.ExternalReference,
		CardBrand:         intent.CardBrand,
		CardLast4:         intent.CardLast4,
		Requires3DSecure:  intent.Requires3DSecure,
		InstallmentCount:  intent.InstallmentCount,
		InstallmentAmount: intent.InstallmentAmount,
		RefundedAmount:    intent.RefundedAmount,
		RemainingAmount:   intent.RemainingAmount(),
		FailureReason:     intent.FailureReason,
		CreatedAt:         intent.CreatedAt,
		UpdatedAt:         intent.UpdatedAt,
	}
}

func eventToView(event models.PaymentEvent) EventView {
	return EventView{
		ID:        event.ID,
		IntentID:  event.IntentID,
		Type:      event.Type,
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt,
	}
}
