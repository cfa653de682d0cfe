package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mercaline/mercaline-backend/pkg/db/models"
	"github.com/mercaline/mercaline-backend/pkg/enums"
	pkgerrors "github.com/mercaline/mercaline-backend/pkg/errors"
)

// CreateOrderInput carries what is needed to seed an order for checkout.
type CreateOrderInput struct {
	UserID      uuid.UUID       `json:"user_id" validate:"required"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"required"`
	Currency    string          `json:"currency,omitempty"`
}

// Service owns the slice of the order domain the payment core touches. The
// wider order lifecycle (fulfillment, shipping) lives elsewhere.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)

	// Fetch and SetStatus run inside a caller-owned transaction so payment
	// transitions and their order side effects commit atomically.
	Fetch(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error)
	SetStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, status enums.OrderStatus, paidAt *time.Time) error
}

type service struct {
	repo Repository
}

// NewService builds the order service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.TotalAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total amount must not be negative")
	}

	currency := enums.CurrencyUSD
	if input.Currency != "" {
		parsed, err := enums.ParseCurrency(input.Currency)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
		}
		currency = parsed
	}

	order := &models.Order{
		UserID:      input.UserID,
		TotalAmount: input.TotalAmount,
		Currency:    currency,
		Status:      enums.OrderStatusPending,
	}
	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) Fetch(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.WithTx(tx).FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) SetStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, status enums.OrderStatus, paidAt *time.Time) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if err := s.repo.WithTx(tx).UpdateStatus(ctx, orderID, status, paidAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	return nil
}
