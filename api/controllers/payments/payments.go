package payments

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercaline/mercaline-backend/api/responses"
	"github.com/mercaline/mercaline-backend/api/validators"
	internalpayments "github.com/mercaline/mercaline-backend/internal/payments"
	pkgerrors "github.com/mercaline/mercaline-backend/pkg/errors"
	"github.com/mercaline/mercaline-backend/pkg/logger"
	"github.com/mercaline/mercaline-backend/pkg/pagination"
)

// CreateIntent opens (or returns the already open) payment flow for an order.
func CreateIntent(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internalpayments.CreateIntentInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.CreateIntent(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// GetIntent returns one intent by id.
func GetIntent(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, err := parseIntentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.GetByID(r.Context(), intentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// GetIntentByOrder returns the intent attached to an order.
func GetIntentByOrder(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseUUIDParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.GetByOrderID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Authorize reserves funds for an intent.
func Authorize(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, err := parseIntentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Authorize(r.Context(), intentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Capture collects the funds for an intent.
func Capture(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, err := parseIntentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Capture(r.Context(), intentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type cancelRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// Cancel abandons an intent before capture. The body is optional.
func Cancel(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, err := parseIntentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cancelRequest
		if err := decodeOptionalBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Cancel(r.Context(), intentID, body.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type failRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// Fail records a provider-side payment failure.
func Fail(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, err := parseIntentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body failRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Fail(r.Context(), intentID, body.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type refundRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Reason *string          `json:"reason,omitempty"`
}

// Refund returns money to the payer; an absent amount refunds the remaining
// balance.
func Refund(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, err := parseIntentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body refundRequest
		if err := decodeOptionalBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Refund(r.Context(), internalpayments.RefundInput{
			IntentID: intentID,
			Amount:   body.Amount,
			Reason:   body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type confirm3DSRequest struct {
	Outcome string `json:"outcome" validate:"required"`
}

// Confirm3DSecure resolves a pending 3-D Secure challenge.
func Confirm3DSecure(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, err := parseIntentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body confirm3DSRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		outcome, err := internalpayments.ParseThreeDSOutcome(body.Outcome)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid outcome"))
			return
		}

		view, err := svc.Confirm3DSecure(r.Context(), intentID, outcome)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type simulateRequest struct {
	Outcome string `json:"outcome" validate:"required"`
}

// Simulate drives an intent to a terminal state without a gateway; sandbox
// environments only.
func Simulate(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, err := parseIntentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body simulateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		outcome, err := internalpayments.ParseSimulatedOutcome(body.Outcome)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid outcome"))
			return
		}

		view, err := svc.SimulateOutcome(r.Context(), intentID, outcome)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ListEvents returns the intent's audit log in append order.
func ListEvents(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, err := parseIntentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		list, err := svc.GetEvents(r.Context(), intentID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func parseIntentID(r *http.Request) (uuid.UUID, error) {
	return parseUUIDParam(r, "intentId", "intent id")
}

func parseUUIDParam(r *http.Request, param, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return id, nil
}

// decodeOptionalBody tolerates an absent or empty body.
func decodeOptionalBody(r *http.Request, dest any) error {
	if r.Body == nil {
		return nil
	}
	err := validators.DecodeJSONBody(r, dest)
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil && errors.Is(typed.Unwrap(), io.EOF) {
		return nil
	}
	return err
}
