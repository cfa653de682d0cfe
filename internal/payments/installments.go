package payments

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SplitInstallments divides amount into count equal parts at the given
// currency exponent. When the amount does not divide evenly, every
// installment carries the rounded-down base amount and the remainder rides
// on the final installment, so the schedule always sums to the amount.
func SplitInstallments(amount decimal.Decimal, count int, exponent int32) ([]decimal.Decimal, error) {
	if count < 1 {
		return nil, fmt.Errorf("installment count must be at least 1, got %d", count)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("installment amount must not be negative, got %s", amount)
	}

	base := amount.Div(decimal.NewFromInt(int64(count))).RoundDown(exponent)
	schedule := make([]decimal.Decimal, count)
	for i := range schedule {
		schedule[i] = base
	}
	remainder := amount.Sub(base.Mul(decimal.NewFromInt(int64(count))))
	schedule[count-1] = schedule[count-1].Add(remainder)
	return schedule, nil
}

// PerInstallment returns the base amount of each installment in an equal
// split. This is the value recorded on the intent.
func PerInstallment(amount decimal.Decimal, count int, exponent int32) (decimal.Decimal, error) {
	schedule, err := SplitInstallments(amount, count, exponent)
	if err != nil {
		return decimal.Zero, err
	}
	return schedule[0], nil
}
