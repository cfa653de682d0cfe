package enums

import "fmt"

// PaymentEventType maps to the payment_event_type enum in Postgres. One event
// is appended per successful state transition.
type PaymentEventType string

const (
	PaymentEventCreated      PaymentEventType = "payment.created"
	PaymentEventAuthorized   PaymentEventType = "payment.authorized"
	PaymentEventCaptured     PaymentEventType = "payment.captured"
	PaymentEventCancelled    PaymentEventType = "payment.cancelled"
	PaymentEventFailed       PaymentEventType = "payment.failed"
	PaymentEventRefunded     PaymentEventType = "payment.refunded"
	PaymentEvent3DSConfirmed PaymentEventType = "payment.3ds.confirmed"
)

var validPaymentEventTypes = []PaymentEventType{
	PaymentEventCreated,
	PaymentEventAuthorized,
	PaymentEventCaptured,
	PaymentEventCancelled,
	PaymentEventFailed,
	PaymentEventRefunded,
	PaymentEvent3DSConfirmed,
}

// String implements fmt.Stringer.
func (t PaymentEventType) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical event type enum.
func (t PaymentEventType) IsValid() bool {
	for _, candidate := range validPaymentEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParsePaymentEventType converts raw input into a PaymentEventType.
func ParsePaymentEventType(value string) (PaymentEventType, error) {
	for _, candidate := range validPaymentEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment event type %q", value)
}
