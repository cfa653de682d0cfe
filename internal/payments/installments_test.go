package payments

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSplitInstallments_EvenDivision(t *testing.T) {
	schedule, err := SplitInstallments(decimal.NewFromInt(1200), 6, 2)
	if err != nil {
		t.Fatalf("SplitInstallments error: %v", err)
	}
	if len(schedule) != 6 {
		t.Fatalf("expected 6 installments, got %d", len(schedule))
	}
	want := decimal.NewFromInt(200)
	for i, part := range schedule {
		if !part.Equal(want) {
			t.Fatalf("installment %d = %s, want %s", i, part, want)
		}
	}
}

func TestSplitInstallments_RemainderOnLast(t *testing.T) {
	schedule, err := SplitInstallments(decimal.NewFromInt(1000), 3, 2)
	if err != nil {
		t.Fatalf("SplitInstallments error: %v", err)
	}
	base := decimal.RequireFromString("333.33")
	last := decimal.RequireFromString("333.34")
	if !schedule[0].Equal(base) || !schedule[1].Equal(base) {
		t.Fatalf("unexpected base installments: %v", schedule)
	}
	if !schedule[2].Equal(last) {
		t.Fatalf("last installment = %s, want %s", schedule[2], last)
	}

	sum := decimal.Zero
	for _, part := range schedule {
		sum = sum.Add(part)
	}
	if !sum.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("schedule sums to %s, want 1000", sum)
	}
}

func TestSplitInstallments_SingleInstallment(t *testing.T) {
	schedule, err := SplitInstallments(decimal.RequireFromString("99.99"), 1, 2)
	if err != nil {
		t.Fatalf("SplitInstallments error: %v", err)
	}
	if len(schedule) != 1 || !schedule[0].Equal(decimal.RequireFromString("99.99")) {
		t.Fatalf("unexpected schedule: %v", schedule)
	}
}

func TestSplitInstallments_InvalidInputs(t *testing.T) {
	if _, err := SplitInstallments(decimal.NewFromInt(100), 0, 2); err == nil {
		t.Fatal("expected error for zero count")
	}
	if _, err := SplitInstallments(decimal.NewFromInt(-1), 3, 2); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestPerInstallment(t *testing.T) {
	per, err := PerInstallment(decimal.NewFromInt(1200), 6, 2)
	if err != nil {
		t.Fatalf("PerInstallment error: %v", err)
	}
	if !per.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("per installment = %s, want 200", per)
	}
}
