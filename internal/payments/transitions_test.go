package payments

import (
	"testing"

	"github.com/mercaline/mercaline-backend/pkg/enums"
)

func TestCanApply(t *testing.T) {
	tests := []struct {
		op   Operation
		from enums.PaymentStatus
		want bool
	}{
		{OperationAuthorize, enums.PaymentStatusCreated, true},
		{OperationAuthorize, enums.PaymentStatusAuthorized, false},
		{OperationAuthorize, enums.PaymentStatusPending, false},

		{OperationCapture, enums.PaymentStatusCreated, true},
		{OperationCapture, enums.PaymentStatusAuthorized, true},
		{OperationCapture, enums.PaymentStatusFailed, false},
		{OperationCapture, enums.PaymentStatusCancelled, false},
		{OperationCapture, enums.PaymentStatusRefunded, false},

		{OperationCancel, enums.PaymentStatusCreated, true},
		{OperationCancel, enums.PaymentStatusAuthorized, true},
		{OperationCancel, enums.PaymentStatusCaptured, false},

		{OperationFail, enums.PaymentStatusCreated, true},
		{OperationFail, enums.PaymentStatusAuthorized, true},
		{OperationFail, enums.PaymentStatusCaptured, false},

		{OperationRefund, enums.PaymentStatusCaptured, true},
		{OperationRefund, enums.PaymentStatusPartiallyRefunded, true},
		{OperationRefund, enums.PaymentStatusRefunded, false},
		{OperationRefund, enums.PaymentStatusCreated, false},

		{OperationConfirm3DS, enums.PaymentStatusPending, true},
		{OperationConfirm3DS, enums.PaymentStatusCreated, false},
		{OperationConfirm3DS, enums.PaymentStatusCaptured, false},

		{OperationExpire3DS, enums.PaymentStatusPending, true},
		{OperationExpire3DS, enums.PaymentStatusCreated, false},
		{OperationExpire3DS, enums.PaymentStatusCaptured, false},
	}

	for _, tc := range tests {
		if got := CanApply(tc.op, tc.from); got != tc.want {
			t.Errorf("CanApply(%s, %s) = %v, want %v", tc.op, tc.from, got, tc.want)
		}
	}
}

func TestTerminalStatesRejectEverythingButRefund(t *testing.T) {
	terminal := []enums.PaymentStatus{
		enums.PaymentStatusRefunded,
		enums.PaymentStatusFailed,
		enums.PaymentStatusCancelled,
	}
	ops := []Operation{
		OperationAuthorize,
		OperationCapture,
		OperationCancel,
		OperationFail,
		OperationRefund,
		OperationConfirm3DS,
		OperationExpire3DS,
	}
	for _, status := range terminal {
		for _, op := range ops {
			if CanApply(op, status) {
				t.Errorf("CanApply(%s, %s) should be false", op, status)
			}
		}
	}
}
