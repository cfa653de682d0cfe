package enums

import "fmt"

// PaymentStatus tracks the lifecycle of a payment intent.
type PaymentStatus string

const (
	PaymentStatusCreated           PaymentStatus = "created"
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusAuthorized        PaymentStatus = "authorized"
	PaymentStatusCaptured          PaymentStatus = "captured"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusCancelled         PaymentStatus = "cancelled"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusCreated,
	PaymentStatusPending,
	PaymentStatusAuthorized,
	PaymentStatusCaptured,
	PaymentStatusPartiallyRefunded,
	PaymentStatusRefunded,
	PaymentStatusFailed,
	PaymentStatusCancelled,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further operation may mutate the intent.
// Refund remains legal from captured and partially refunded states.
func (p PaymentStatus) IsTerminal() bool {
	switch p {
	case PaymentStatusRefunded, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
