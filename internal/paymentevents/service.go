package paymentevents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercaline/mercaline-backend/pkg/db/models"
	"github.com/mercaline/mercaline-backend/pkg/enums"
	pkgerrors "github.com/mercaline/mercaline-backend/pkg/errors"
	"github.com/mercaline/mercaline-backend/pkg/pagination"
)

// Service appends and reads the immutable payment audit log.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, intentID uuid.UUID, eventType enums.PaymentEventType, payload any) (*models.PaymentEvent, error)
	ListByIntentID(ctx context.Context, intentID uuid.UUID) ([]models.PaymentEvent, error)
	ListPage(ctx context.Context, intentID uuid.UUID, params pagination.Params) ([]models.PaymentEvent, *string, error)
}

type service struct {
	repo Repository
}

// NewService builds the audit log service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment events repository required")
	}
	return &service{repo: repo}, nil
}

// Record appends one entry inside the caller's transaction. Callers record
// exactly one event per successful transition; passing the transition's tx
// guarantees the entry commits or rolls back with the state change.
func (s *service) Record(ctx context.Context, tx *gorm.DB, intentID uuid.UUID, eventType enums.PaymentEventType, payload any) (*models.PaymentEvent, error) {
	if intentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}
	if !eventType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment event type")
	}

	var raw json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode event payload")
		}
		raw = encoded
	}

	event := &models.PaymentEvent{
		IntentID: intentID,
		Type:     eventType,
		Payload:  raw,
	}
	created, err := s.repo.WithTx(tx).Create(ctx, event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append payment event")
	}
	return created, nil
}

func (s *service) ListByIntentID(ctx context.Context, intentID uuid.UUID) ([]models.PaymentEvent, error) {
	if intentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}
	events, err := s.repo.ListByIntentID(ctx, intentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment events")
	}
	return events, nil
}

// ListPage returns one cursor page in append order plus the cursor for the
// next page, or nil when the log is exhausted.
func (s *service) ListPage(ctx context.Context, intentID uuid.UUID, params pagination.Params) ([]models.PaymentEvent, *string, error) {
	if intentID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	events, err := s.repo.ListPage(ctx, intentID, limit+1, cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment events")
	}

	var next *string
	if len(events) > limit {
		events = events[:limit]
		last := events[limit-1]
		encoded := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		next = &encoded
	}
	return events, next, nil
}
