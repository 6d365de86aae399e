package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitpot/internal/expense/split"
)

// Expense represents an expense in the system. Amount is in the expense's
// native currency; SettlementAmount is the derived amount in the group's
// settlement currency, with the exchange rate that produced it. Both are null
// only for expenses recorded before conversion ran (same-currency expenses
// carry a settlement amount equal to the native amount and a null rate).
type Expense struct {
	ID               int64               `json:"id"`
	GroupID          int64               `json:"group_id"`
	PayerID          int64               `json:"payer_id"`
	Title            string              `json:"title"`
	Amount           decimal.Decimal     `json:"amount"`
	Currency         string              `json:"currency"`
	SettlementAmount decimal.NullDecimal `json:"settlement_amount"`
	ExchangeRate     decimal.NullDecimal `json:"exchange_rate,omitempty"`
	SplitType        split.Type          `json:"split_type"`
	ExpenseDate      time.Time           `json:"expense_date"`
	ReceiptURL       *string             `json:"receipt_url,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`

	// Populated via JOIN
	PayerUsername string `json:"payer_username,omitempty"`
}

// SettledAmount returns the amount in the settlement currency, falling back
// to the native amount when no conversion was recorded
func (e *Expense) SettledAmount() decimal.Decimal {
	if e.SettlementAmount.Valid {
		return e.SettlementAmount.Decimal
	}
	return e.Amount
}

// Split is one member's owed share of an expense, in the settlement currency
type Split struct {
	ID        int64           `json:"id"`
	ExpenseID int64           `json:"expense_id"`
	MemberID  int64           `json:"member_id"`
	AmountDue decimal.Decimal `json:"amount_due"`

	// Populated via JOIN
	MemberUsername string `json:"member_username,omitempty"`
}

// ExpenseWithSplits combines an expense with its persisted splits
type ExpenseWithSplits struct {
	Expense *Expense
	Splits  []*Split
}
