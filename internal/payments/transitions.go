package payments

import (
	"github.com/mercaline/mercaline-backend/pkg/enums"
)

// Operation names a state machine transition attempt on a payment intent.
type Operation string

const (
	OperationCreate     Operation = "create"
	OperationAuthorize  Operation = "authorize"
	OperationCapture    Operation = "capture"
	OperationCancel     Operation = "cancel"
	OperationFail       Operation = "fail"
	OperationRefund     Operation = "refund"
	OperationConfirm3DS Operation = "confirm_3ds"
	OperationExpire3DS  Operation = "expire_3ds"
)

// transitionSources is the declarative transition table: the states from
// which each operation may proceed. The resulting state is fixed per
// operation except for refund (ledger-dependent) and 3-D Secure
// confirmation (outcome-dependent).
//
// Failing an authorized intent is allowed: reserved funds can still be
// declined by the provider at capture time.
var transitionSources = map[Operation][]enums.PaymentStatus{
	OperationAuthorize: {enums.PaymentStatusCreated},
	OperationCapture:   {enums.PaymentStatusCreated, enums.PaymentStatusAuthorized},
	OperationCancel:    {enums.PaymentStatusCreated, enums.PaymentStatusAuthorized},
	OperationFail:      {enums.PaymentStatusCreated, enums.PaymentStatusAuthorized},
	OperationRefund:    {enums.PaymentStatusCaptured, enums.PaymentStatusPartiallyRefunded},
	OperationConfirm3DS: {
		enums.PaymentStatusPending,
	},
	// expiry shares the confirmation's source so a late confirmation and the
	// timeout sweep settle their race on the same guard
	OperationExpire3DS: {
		enums.PaymentStatusPending,
	},
}

// CanApply reports whether the operation is legal from the given status.
func CanApply(op Operation, from enums.PaymentStatus) bool {
	for _, candidate := range transitionSources[op] {
		if candidate == from {
			return true
		}
	}
	return false
}

// SourcesFor returns the valid source states for an operation.
func SourcesFor(op Operation) []enums.PaymentStatus {
	sources := make([]enums.PaymentStatus, len(transitionSources[op]))
	copy(sources, transitionSources[op])
	return sources
}
