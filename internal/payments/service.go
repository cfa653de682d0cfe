package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mercaline/mercaline-backend/pkg/config"
	"github.com/mercaline/mercaline-backend/pkg/db"
	"github.com/mercaline/mercaline-backend/pkg/db/models"
	"github.com/mercaline/mercaline-backend/pkg/enums"
	pkgerrors "github.com/mercaline/mercaline-backend/pkg/errors"
	"github.com/mercaline/mercaline-backend/pkg/metrics"
	"github.com/mercaline/mercaline-backend/pkg/pagination"
)

const (
	failureReasonCancelled  = "cancelled by buyer"
	failureReason3DSFailed  = "3D Secure authentication failed"
	failureReason3DSExpired = "3D Secure authentication timed out"
	failureReasonSimulated  = "simulated payment failure"
)

// transitionPayload is the audit log entry body written for each transition.
type transitionPayload struct {
	Operation Operation            `json:"operation"`
	From      *enums.PaymentStatus `json:"from,omitempty"`
	To        enums.PaymentStatus  `json:"to"`
	Amount    *decimal.Decimal     `json:"amount,omitempty"`
	Reason    *string              `json:"reason,omitempty"`
	Provider  *string              `json:"provider,omitempty"`
	Reference *string              `json:"reference,omitempty"`
	Outcome   *ThreeDSOutcome      `json:"outcome,omitempty"`
}

type service struct {
	repo     Repository
	events   EventRecorder
	orders   OrderDirectory
	notifier Notifier
	provider Provider
	tx       txRunner
	metrics  *metrics.PaymentMetrics
	cfg      config.PaymentsConfig
}

// NewService builds the payment intent service with its collaborators.
func NewService(
	repo Repository,
	events EventRecorder,
	orders OrderDirectory,
	notifier Notifier,
	provider Provider,
	tx txRunner,
	paymentMetrics *metrics.PaymentMetrics,
	cfg config.PaymentsConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if events == nil {
		return nil, fmt.Errorf("event recorder required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order directory required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if provider == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		events:   events,
		orders:   orders,
		notifier: notifier,
		provider: provider,
		tx:       tx,
		metrics:  paymentMetrics,
		cfg:      cfg,
	}, nil
}

// CreateIntent opens the payment flow for an order. Calling it again for the
// same order returns the existing intent unchanged; the unique index on
// order_id closes the race two concurrent first calls would otherwise win
// together.
func (s *service) CreateIntent(ctx context.Context, input CreateIntentInput) (*IntentView, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.InstallmentCount != nil && *input.InstallmentCount < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "installment count must be at least 1")
	}

	if existing, err := s.repo.FindByOrderID(ctx, input.OrderID); err == nil {
		return intentToView(existing), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup payment intent")
	}

	var created *models.PaymentIntent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.Fetch(ctx, tx, input.OrderID)
		if err != nil {
			return err
		}

		intent, err := s.buildIntent(order, input)
		if err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		persisted, err := repo.Create(ctx, intent)
		if err != nil {
			if db.IsUniqueViolation(err, "idx_payment_intents_order_id") {
				// lost the creation race; adopt the winner's intent
				persisted, err = repo.FindByOrderID(ctx, input.OrderID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch intent after conflict")
				}
				created = persisted
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment intent")
		}

		payload := transitionPayload{
			Operation: OperationCreate,
			To:        persisted.Status,
			Amount:    &persisted.Amount,
		}
		if _, err := s.events.Record(ctx, tx, persisted.ID, enums.PaymentEventCreated, payload); err != nil {
			return err
		}

		created = persisted
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(OperationCreate), created.Status.String())
	return intentToView(created), nil
}

func (s *service) buildIntent(order *models.Order, input CreateIntentInput) (*models.PaymentIntent, error) {
	intent := &models.PaymentIntent{
		OrderID:        order.ID,
		Method:         input.Method,
		Status:         enums.PaymentStatusCreated,
		Amount:         order.TotalAmount,
		Currency:       order.Currency,
		RefundedAmount: decimal.Zero,
	}

	hasCard := strings.TrimSpace(input.CardNumber) != ""
	if input.Method == enums.PaymentMethodCreditCard && hasCard {
		brand, last4 := ClassifyCard(input.CardNumber)
		intent.CardBrand = &brand
		intent.CardLast4 = &last4

		if order.TotalAmount.GreaterThan(s.cfg.ThreeDSThreshold) {
			intent.Requires3DSecure = true
			intent.Status = enums.PaymentStatusPending
		}
	}

	// count of one means no plan is recorded at all
	if input.InstallmentCount != nil && *input.InstallmentCount > 1 {
		per, err := PerInstallment(order.TotalAmount, *input.InstallmentCount, order.Currency.Exponent())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid installment plan")
		}
		count := *input.InstallmentCount
		intent.InstallmentCount = &count
		intent.InstallmentAmount = &per
	}

	return intent, nil
}

func (s *service) GetByID(ctx context.Context, intentID uuid.UUID) (*IntentView, error) {
	if intentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}
	intent, err := s.repo.FindByID(ctx, intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment intent")
	}
	return intentToView(intent), nil
}

func (s *service) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*IntentView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	intent, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment intent")
	}
	return intentToView(intent), nil
}

// Authorize reserves funds with the provider and records its reference.
func (s *service) Authorize(ctx context.Context, intentID uuid.UUID) (*IntentView, error) {
	var result *models.PaymentIntent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		intent, err := s.loadForUpdate(ctx, tx, intentID)
		if err != nil {
			return err
		}
		if err := s.guard(OperationAuthorize, intent); err != nil {
			return err
		}

		auth, err := s.provider.Authorize(ctx, intent.ID, intent.Amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "provider authorization")
		}

		from := intent.Status
		updates := map[string]any{
			"status":             enums.PaymentStatusAuthorized,
			"provider":           auth.Provider,
			"external_reference": auth.Reference,
		}
		if err := s.repo.WithTx(tx).Update(ctx, intent.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment intent")
		}

		payload := transitionPayload{
			Operation: OperationAuthorize,
			From:      &from,
			To:        enums.PaymentStatusAuthorized,
			Provider:  &auth.Provider,
			Reference: &auth.Reference,
		}
		if _, err := s.events.Record(ctx, tx, intent.ID, enums.PaymentEventAuthorized, payload); err != nil {
			return err
		}

		intent.Status = enums.PaymentStatusAuthorized
		intent.Provider = &auth.Provider
		intent.ExternalReference = &auth.Reference
		result = intent
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(OperationAuthorize), enums.PaymentStatusAuthorized.String())
	return intentToView(result), nil
}

// Capture collects the funds. Capturing straight from Created is the
// immediate-capture flow: the provider authorization happens in the same
// call.
func (s *service) Capture(ctx context.Context, intentID uuid.UUID) (*IntentView, error) {
	var result *models.PaymentIntent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		intent, err := s.loadForUpdate(ctx, tx, intentID)
		if err != nil {
			return err
		}
		if err := s.guard(OperationCapture, intent); err != nil {
			return err
		}
		captured, err := s.captureLocked(ctx, tx, intent, OperationCapture, nil)
		if err != nil {
			return err
		}
		result = captured
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(OperationCapture), enums.PaymentStatusCaptured.String())
	return intentToView(result), nil
}

// captureLocked finishes a capture on an already locked and guarded intent:
// provider authorization if none happened yet, status flip, audit entry,
// order promotion, and the buyer notification.
func (s *service) captureLocked(ctx context.Context, tx *gorm.DB, intent *models.PaymentIntent, op Operation, outcome *ThreeDSOutcome) (*models.PaymentIntent, error) {
	from := intent.Status

	if intent.ExternalReference == nil {
		auth, err := s.provider.Authorize(ctx, intent.ID, intent.Amount)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "provider authorization")
		}
		intent.Provider = &auth.Provider
		intent.ExternalReference = &auth.Reference
	}

	updates := map[string]any{
		"status":             enums.PaymentStatusCaptured,
		"provider":           intent.Provider,
		"external_reference": intent.ExternalReference,
	}
	if err := s.repo.WithTx(tx).Update(ctx, intent.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment intent")
	}

	payload := transitionPayload{
		Operation: op,
		From:      &from,
		To:        enums.PaymentStatusCaptured,
		Amount:    &intent.Amount,
		Provider:  intent.Provider,
		Reference: intent.ExternalReference,
		Outcome:   outcome,
	}
	eventType := enums.PaymentEventCaptured
	if op == OperationConfirm3DS {
		eventType = enums.PaymentEvent3DSConfirmed
	}
	if _, err := s.events.Record(ctx, tx, intent.ID, eventType, payload); err != nil {
		return nil, err
	}

	order, err := s.orders.Fetch(ctx, tx, intent.OrderID)
	if err != nil {
		return nil, err
	}
	paidAt := time.Now().UTC()
	if err := s.orders.SetStatus(ctx, tx, order.ID, enums.OrderStatusProcessing, &paidAt); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Payment of %s %s for order %s was successful.",
		intent.Amount.StringFixed(intent.Currency.Exponent()), intent.Currency, intent.OrderID)
	if err := s.notifier.SendPaymentUpdate(ctx, tx, order.ID, order.UserID, message); err != nil {
		return nil, err
	}

	intent.Status = enums.PaymentStatusCaptured
	return intent, nil
}

// Cancel abandons an intent before funds moved. No order or notification
// side effects; the buyer initiated it.
func (s *service) Cancel(ctx context.Context, intentID uuid.UUID, reason *string) (*IntentView, error) {
	var result *models.PaymentIntent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		intent, err := s.loadForUpdate(ctx, tx, intentID)
		if err != nil {
			return err
		}
		if err := s.guard(OperationCancel, intent); err != nil {
			return err
		}

		from := intent.Status
		cancelReason := failureReasonCancelled
		if reason != nil && strings.TrimSpace(*reason) != "" {
			cancelReason = *reason
		}

		updates := map[string]any{
			"status":         enums.PaymentStatusCancelled,
			"failure_reason": cancelReason,
		}
		if err := s.repo.WithTx(tx).Update(ctx, intent.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment intent")
		}

		payload := transitionPayload{
			Operation: OperationCancel,
			From:      &from,
			To:        enums.PaymentStatusCancelled,
			Reason:    &cancelReason,
		}
		if _, err := s.events.Record(ctx, tx, intent.ID, enums.PaymentEventCancelled, payload); err != nil {
			return err
		}

		intent.Status = enums.PaymentStatusCancelled
		intent.FailureReason = &cancelReason
		result = intent
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(OperationCancel), enums.PaymentStatusCancelled.String())
	return intentToView(result), nil
}

// Fail records a payment failure reported by the provider.
func (s *service) Fail(ctx context.Context, intentID uuid.UUID, reason string) (*IntentView, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "failure reason required")
	}

	var result *models.PaymentIntent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		intent, err := s.loadForUpdate(ctx, tx, intentID)
		if err != nil {
			return err
		}
		if err := s.guard(OperationFail, intent); err != nil {
			return err
		}
		failed, err := s.failLocked(ctx, tx, intent, OperationFail, reason, nil)
		if err != nil {
			return err
		}
		result = failed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(OperationFail), enums.PaymentStatusFailed.String())
	return intentToView(result), nil
}

// failLocked finishes a failure transition on an already locked and guarded
// intent: status flip, audit entry, order demotion, buyer notification.
func (s *service) failLocked(ctx context.Context, tx *gorm.DB, intent *models.PaymentIntent, op Operation, reason string, outcome *ThreeDSOutcome) (*models.PaymentIntent, error) {
	from := intent.Status

	updates := map[string]any{
		"status":         enums.PaymentStatusFailed,
		"failure_reason": reason,
	}
	if err := s.repo.WithTx(tx).Update(ctx, intent.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment intent")
	}

	payload := transitionPayload{
		Operation: op,
		From:      &from,
		To:        enums.PaymentStatusFailed,
		Reason:    &reason,
		Outcome:   outcome,
	}
	eventType := enums.PaymentEventFailed
	if op == OperationConfirm3DS {
		eventType = enums.PaymentEvent3DSConfirmed
	}
	if _, err := s.events.Record(ctx, tx, intent.ID, eventType, payload); err != nil {
		return nil, err
	}

	order, err := s.orders.Fetch(ctx, tx, intent.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.orders.SetStatus(ctx, tx, order.ID, enums.OrderStatusFailed, nil); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Payment for order %s failed: %s", intent.OrderID, reason)
	if err := s.notifier.SendPaymentUpdate(ctx, tx, order.ID, order.UserID, message); err != nil {
		return nil, err
	}

	intent.Status = enums.PaymentStatusFailed
	intent.FailureReason = &reason
	return intent, nil
}

// Refund returns money to the payer. A nil amount refunds the full remaining
// balance. The cumulative ledger can never exceed the captured amount; the
// database CHECK constraint backs up what is validated here.
func (s *service) Refund(ctx context.Context, input RefundInput) (*RefundView, error) {
	if input.IntentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}

	var view *RefundView
	var refunded decimal.Decimal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		intent, err := s.loadForUpdate(ctx, tx, input.IntentID)
		if err != nil {
			return err
		}
		if err := s.guard(OperationRefund, intent); err != nil {
			return err
		}

		remaining := intent.RemainingAmount()
		requested := remaining
		if input.Amount != nil {
			requested = *input.Amount
		}
		if !requested.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
		}
		if requested.GreaterThan(remaining) {
			return pkgerrors.New(pkgerrors.CodeValidation, "refund amount exceeds remaining balance").
				WithDetails(map[string]any{
					"requested": requested.String(),
					"remaining": remaining.String(),
				})
		}

		from := intent.Status
		newTotal := intent.RefundedAmount.Add(requested)
		newStatus := enums.PaymentStatusPartiallyRefunded
		if newTotal.Equal(intent.Amount) {
			newStatus = enums.PaymentStatusRefunded
		}

		updates := map[string]any{
			"status":          newStatus,
			"refunded_amount": newTotal,
		}
		if err := s.repo.WithTx(tx).Update(ctx, intent.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment intent")
		}

		payload := transitionPayload{
			Operation: OperationRefund,
			From:      &from,
			To:        newStatus,
			Amount:    &requested,
			Reason:    input.Reason,
		}
		if _, err := s.events.Record(ctx, tx, intent.ID, enums.PaymentEventRefunded, payload); err != nil {
			return err
		}

		order, err := s.orders.Fetch(ctx, tx, intent.OrderID)
		if err != nil {
			return err
		}
		message := fmt.Sprintf("Refund of %s %s processed for order %s.",
			requested.StringFixed(intent.Currency.Exponent()), intent.Currency, intent.OrderID)
		if err := s.notifier.SendPaymentUpdate(ctx, tx, order.ID, order.UserID, message); err != nil {
			return err
		}

		refunded = requested
		view = &RefundView{
			IntentID:            intent.ID,
			RefundedAmount:      requested,
			TotalRefundedAmount: newTotal,
			RemainingAmount:     intent.Amount.Sub(newTotal),
			Status:              newStatus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(OperationRefund), view.Status.String())
	s.metrics.ObserveRefund(refunded)
	return view, nil
}

// Confirm3DSecure resolves a pending strong-customer-authentication
// challenge. Success collapses authorize and capture into one step; failure
// terminates the intent.
func (s *service) Confirm3DSecure(ctx context.Context, intentID uuid.UUID, outcome ThreeDSOutcome) (*IntentView, error) {
	if outcome != ThreeDSOutcomeSuccess && outcome != ThreeDSOutcomeFailure {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid 3ds outcome")
	}

	var result *models.PaymentIntent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		intent, err := s.loadForUpdate(ctx, tx, intentID)
		if err != nil {
			return err
		}
		if !intent.Requires3DSecure {
			s.metrics.ObserveRejection(string(OperationConfirm3DS), intent.Status.String())
			return pkgerrors.New(pkgerrors.CodeStateConflict, "intent does not require 3D Secure")
		}
		if err := s.guard(OperationConfirm3DS, intent); err != nil {
			return err
		}

		confirmed := outcome
		if outcome == ThreeDSOutcomeSuccess {
			result, err = s.captureLocked(ctx, tx, intent, OperationConfirm3DS, &confirmed)
		} else {
			result, err = s.failLocked(ctx, tx, intent, OperationConfirm3DS, failureReason3DSFailed, &confirmed)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(OperationConfirm3DS), result.Status.String())
	return intentToView(result), nil
}

// ExpirePending fails one intent whose 3-D Secure challenge was never
// answered. Used by the expiry job; races with a late confirmation are
// settled by the row lock and the transition guard. The audit entry is a
// plain payment.failed because no confirmation ever arrived.
func (s *service) ExpirePending(ctx context.Context, intentID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		intent, err := s.loadForUpdate(ctx, tx, intentID)
		if err != nil {
			return err
		}
		if err := s.guard(OperationExpire3DS, intent); err != nil {
			return err
		}
		_, err = s.failLocked(ctx, tx, intent, OperationExpire3DS, failureReason3DSExpired, nil)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.ObserveTransition(string(OperationExpire3DS), enums.PaymentStatusFailed.String())
	return nil
}

// ListStalePending returns intents stuck awaiting 3-D Secure since before
// the cutoff.
func (s *service) ListStalePending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	intents, err := s.repo.FindPendingBefore(ctx, cutoff)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending intents")
	}
	ids := make([]uuid.UUID, 0, len(intents))
	for _, intent := range intents {
		ids = append(ids, intent.ID)
	}
	return ids, nil
}

// SimulateOutcome drives an intent to a terminal state without a gateway.
// It reuses the regular transition rules rather than a separate path.
func (s *service) SimulateOutcome(ctx context.Context, intentID uuid.UUID, outcome SimulatedOutcome) (*IntentView, error) {
	switch outcome {
	case SimulatedOutcomeSuccess:
		return s.Capture(ctx, intentID)
	case SimulatedOutcomeFailure:
		return s.Fail(ctx, intentID, failureReasonSimulated)
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid simulated outcome")
}

func (s *service) GetEvents(ctx context.Context, intentID uuid.UUID, params pagination.Params) (*EventList, error) {
	if intentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}
	if _, err := s.repo.FindByID(ctx, intentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment intent")
	}

	events, next, err := s.events.ListPage(ctx, intentID, params)
	if err != nil {
		return nil, err
	}

	items := make([]EventView, 0, len(events))
	for _, event := range events {
		items = append(items, eventToView(event))
	}
	return &EventList{Items: items, NextCursor: next}, nil
}

func (s *service) loadForUpdate(ctx context.Context, tx *gorm.DB, intentID uuid.UUID) (*models.PaymentIntent, error) {
	if intentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}
	intent, err := s.repo.WithTx(tx).FindByIDForUpdate(ctx, intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment intent")
	}
	return intent, nil
}

// guard enforces the transition table. Rejections roll the whole transaction
// back, so a refused operation never leaves a mutation or event behind.
func (s *service) guard(op Operation, intent *models.PaymentIntent) error {
	if CanApply(op, intent.Status) {
		return nil
	}
	s.metrics.ObserveRejection(string(op), intent.Status.String())
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot %s a payment intent in status %s", op, intent.Status)).
		WithDetails(map[string]any{
			"operation":      string(op),
			"current_status": intent.Status.String(),
		})
}
