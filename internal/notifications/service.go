package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercaline/mercaline-backend/pkg/db/models"
	"github.com/mercaline/mercaline-backend/pkg/enums"
	pkgerrors "github.com/mercaline/mercaline-backend/pkg/errors"
)

// Service delivers payment updates to buyers. Delivery today means one
// in-app notification row; email and SMS channels reuse the same table.
type Service interface {
	SendPaymentUpdate(ctx context.Context, tx *gorm.DB, orderID, userID uuid.UUID, message string) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Notification, error)
}

type service struct {
	repo Repository
}

// NewService builds the notification service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{repo: repo}, nil
}

// SendPaymentUpdate persists one notification inside the caller's
// transaction. Rolling the payment transition back rolls the notification
// back with it, which is what keeps delivery exactly-once per transition.
func (s *service) SendPaymentUpdate(ctx context.Context, tx *gorm.DB, orderID, userID uuid.UUID, message string) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if strings.TrimSpace(message) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification message required")
	}

	notification := &models.Notification{
		OrderID: orderID,
		UserID:  userID,
		Channel: enums.NotificationChannelInApp,
		Message: message,
	}
	if _, err := s.repo.WithTx(tx).Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist notification")
	}
	return nil
}

func (s *service) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Notification, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	notifications, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return notifications, nil
}
