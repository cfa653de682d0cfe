package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	internalpayments "github.com/mercaline/mercaline-backend/internal/payments"
	"github.com/mercaline/mercaline-backend/pkg/enums"
	pkgerrors "github.com/mercaline/mercaline-backend/pkg/errors"
	"github.com/mercaline/mercaline-backend/pkg/pagination"
)

type fakePaymentService struct {
	createFn func(ctx context.Context, input internalpayments.CreateIntentInput) (*internalpayments.IntentView, error)
}

func (f *fakePaymentService) CreateIntent(ctx context.Context, input internalpayments.CreateIntentInput) (*internalpayments.IntentView, error) {
	if f.createFn != nil {
		return f.createFn(ctx, input)
	}
	return &internalpayments.IntentView{ID: uuid.New(), OrderID: input.OrderID, Status: enums.PaymentStatusCreated}, nil
}

func (f *fakePaymentService) GetByID(ctx context.Context, intentID uuid.UUID) (*internalpayments.IntentView, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
}

func (f *fakePaymentService) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*internalpayments.IntentView, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
}

func (f *fakePaymentService) Authorize(ctx context.Context, intentID uuid.UUID) (*internalpayments.IntentView, error) {
	return nil, nil
}

func (f *fakePaymentService) Capture(ctx context.Context, intentID uuid.UUID) (*internalpayments.IntentView, error) {
	return nil, nil
}

func (f *fakePaymentService) Cancel(ctx context.Context, intentID uuid.UUID, reason *string) (*internalpayments.IntentView, error) {
	return nil, nil
}

func (f *fakePaymentService) Fail(ctx context.Context, intentID uuid.UUID, reason string) (*internalpayments.IntentView, error) {
	return nil, nil
}

func (f *fakePaymentService) Refund(ctx context.Context, input internalpayments.RefundInput) (*internalpayments.RefundView, error) {
	return nil, nil
}

func (f *fakePaymentService) Confirm3DSecure(ctx context.Context, intentID uuid.UUID, outcome internalpayments.ThreeDSOutcome) (*internalpayments.IntentView, error) {
	return nil, nil
}

func (f *fakePaymentService) ExpirePending(ctx context.Context, intentID uuid.UUID) error {
	return nil
}

func (f *fakePaymentService) SimulateOutcome(ctx context.Context, intentID uuid.UUID, outcome internalpayments.SimulatedOutcome) (*internalpayments.IntentView, error) {
	return nil, nil
}

func (f *fakePaymentService) ListStalePending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakePaymentService) GetEvents(ctx context.Context, intentID uuid.UUID, params pagination.Params) (*internalpayments.EventList, error) {
	return nil, nil
}

func postIntent(t *testing.T, svc internalpayments.Service, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/intents", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	CreateIntent(svc, nil)(resp, req)
	return resp
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

func TestCreateIntent_AcceptsCurrencyField(t *testing.T) {
	var got internalpayments.CreateIntentInput
	svc := &fakePaymentService{
		createFn: func(ctx context.Context, input internalpayments.CreateIntentInput) (*internalpayments.IntentView, error) {
			got = input
			return &internalpayments.IntentView{ID: uuid.New(), OrderID: input.OrderID, Status: enums.PaymentStatusCreated}, nil
		},
	}

	orderID := uuid.New()
	resp := postIntent(t, svc, `{"order_id":"`+orderID.String()+`","method":"credit_card","currency":"USD"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if got.OrderID != orderID || got.Currency != "USD" {
		t.Fatalf("service received %+v", got)
	}
}

func TestCreateIntent_AcceptsSingleInstallment(t *testing.T) {
	var got internalpayments.CreateIntentInput
	svc := &fakePaymentService{
		createFn: func(ctx context.Context, input internalpayments.CreateIntentInput) (*internalpayments.IntentView, error) {
			got = input
			return &internalpayments.IntentView{ID: uuid.New(), OrderID: input.OrderID, Status: enums.PaymentStatusCreated}, nil
		},
	}

	orderID := uuid.New()
	resp := postIntent(t, svc, `{"order_id":"`+orderID.String()+`","method":"credit_card","installment_count":1}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if got.InstallmentCount == nil || *got.InstallmentCount != 1 {
		t.Fatalf("installment count = %v, want 1", got.InstallmentCount)
	}
}

func TestCreateIntent_RejectsNegativeInstallments(t *testing.T) {
	called := false
	svc := &fakePaymentService{
		createFn: func(ctx context.Context, input internalpayments.CreateIntentInput) (*internalpayments.IntentView, error) {
			called = true
			return nil, nil
		},
	}

	resp := postIntent(t, svc, `{"order_id":"`+uuid.NewString()+`","method":"credit_card","installment_count":-1}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != string(pkgerrors.CodeValidation) {
		t.Fatalf("error code = %q, want %q", code, pkgerrors.CodeValidation)
	}
	if called {
		t.Fatal("service must not be called for an invalid body")
	}
}

func TestCreateIntent_RejectsMissingMethod(t *testing.T) {
	resp := postIntent(t, &fakePaymentService{}, `{"order_id":"`+uuid.NewString()+`"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
