package expense

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseExpenseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid date", "2025-06-15", nil},
		{"empty defaults to today", "", nil},
		{"wrong layout", "15/06/2025", ErrInvalidDate},
		{"not a date", "yesterday", ErrInvalidDate},
		{"datetime rejected", "2025-06-15T10:00:00Z", ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := parseExpenseDate(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.IsZero() {
				t.Error("got zero date")
			}
		})
	}
}

func TestUpdateRequestRequiresRecompute(t *testing.T) {
	title := "dinner"
	amount := decimal.NewFromInt(30)
	currency := "EUR"
	splitType := "EQUAL"

	tests := []struct {
		name string
		req  UpdateExpenseRequest
		want bool
	}{
		{"title only", UpdateExpenseRequest{Title: &title}, false},
		{"receipt only", UpdateExpenseRequest{ReceiptURL: &title}, false},
		{"amount change", UpdateExpenseRequest{Amount: &amount}, true},
		{"currency change", UpdateExpenseRequest{Currency: &currency}, true},
		{"split type change", UpdateExpenseRequest{SplitType: &splitType}, true},
		{"allocations supplied", UpdateExpenseRequest{Allocations: []*AllocationInput{{MemberID: 1}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.requiresRecompute(); got != tt.want {
				t.Errorf("requiresRecompute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettledAmountFallsBackToAmount(t *testing.T) {
	native := decimal.NewFromFloat(42.50)
	e := &Expense{Amount: native}
	if !e.SettledAmount().Equal(native) {
		t.Errorf("SettledAmount() = %s, want %s", e.SettledAmount(), native)
	}

	converted := decimal.NewFromFloat(39.10)
	e.SettlementAmount = decimal.NewNullDecimal(converted)
	if !e.SettledAmount().Equal(converted) {
		t.Errorf("SettledAmount() = %s, want %s", e.SettledAmount(), converted)
	}
}
