package expense

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitpot/internal/expense/split"
)

// CreateExpenseRequest represents the request to create an expense
type CreateExpenseRequest struct {
	GroupID     int64              `json:"group_id" validate:"required"`
	Title       string             `json:"title" validate:"required,min=1,max=255"`
	Amount      decimal.Decimal    `json:"amount" validate:"required"`
	Currency    string             `json:"currency" validate:"required,len=3"`
	SplitType   string             `json:"split_type" validate:"required,oneof=EQUAL PERCENTAGE"`
	ExpenseDate string             `json:"expense_date,omitempty"` // YYYY-MM-DD, defaults to today
	ReceiptURL  *string            `json:"receipt_url,omitempty"`
	Allocations []*AllocationInput `json:"allocations,omitempty"` // PERCENTAGE only
}

// AllocationInput is a caller-supplied percentage for one member
type AllocationInput struct {
	MemberID   int64           `json:"member_id"`
	Percentage decimal.Decimal `json:"percentage"`
}

// ToAllocation converts to the split package's allocation type
func (a *AllocationInput) ToAllocation() split.Allocation {
	return split.Allocation{
		MemberID:   a.MemberID,
		Percentage: a.Percentage,
	}
}

// UpdateExpenseRequest represents the request to update an expense. Changing
// the amount, currency, split type, or allocations invalidates the persisted
// splits and replaces them wholesale in the same transaction.
type UpdateExpenseRequest struct {
	Title       *string            `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Amount      *decimal.Decimal   `json:"amount,omitempty"`
	Currency    *string            `json:"currency,omitempty" validate:"omitempty,len=3"`
	SplitType   *string            `json:"split_type,omitempty" validate:"omitempty,oneof=EQUAL PERCENTAGE"`
	ExpenseDate *string            `json:"expense_date,omitempty"`
	ReceiptURL  *string            `json:"receipt_url,omitempty"`
	Allocations []*AllocationInput `json:"allocations,omitempty"`
}

// requiresRecompute reports whether the update touches anything that feeds
// the split calculation
func (r *UpdateExpenseRequest) requiresRecompute() bool {
	return r.Amount != nil || r.Currency != nil || r.SplitType != nil || len(r.Allocations) > 0
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID               int64            `json:"id"`
	GroupID          int64            `json:"group_id"`
	PayerID          int64            `json:"payer_id"`
	PayerUsername    string           `json:"payer_username,omitempty"`
	Title            string           `json:"title"`
	Amount           string           `json:"amount"`
	Currency         string           `json:"currency"`
	SettlementAmount string           `json:"settlement_amount"`
	ExchangeRate     *string          `json:"exchange_rate,omitempty"`
	SplitType        string           `json:"split_type"`
	ExpenseDate      string           `json:"expense_date"`
	ReceiptURL       *string          `json:"receipt_url,omitempty"`
	CreatedAt        string           `json:"created_at"`
	Splits           []*SplitResponse `json:"splits,omitempty"`
}

// SplitResponse represents the response for a split
type SplitResponse struct {
	ID             int64  `json:"id"`
	ExpenseID      int64  `json:"expense_id"`
	MemberID       int64  `json:"member_id"`
	MemberUsername string `json:"member_username,omitempty"`
	AmountDue      string `json:"amount_due"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO.
// Monetary values cross the API boundary as 2-decimal strings.
func (e *Expense) ToResponse() *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:               e.ID,
		GroupID:          e.GroupID,
		PayerID:          e.PayerID,
		PayerUsername:    e.PayerUsername,
		Title:            e.Title,
		Amount:           e.Amount.StringFixed(2),
		Currency:         e.Currency,
		SettlementAmount: e.SettledAmount().StringFixed(2),
		SplitType:        string(e.SplitType),
		ExpenseDate:      e.ExpenseDate.Format("2006-01-02"),
		ReceiptURL:       e.ReceiptURL,
		CreatedAt:        e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if e.ExchangeRate.Valid {
		rate := e.ExchangeRate.Decimal.String()
		resp.ExchangeRate = &rate
	}
	return resp
}

// ToResponse converts a Split model to a SplitResponse DTO
func (s *Split) ToResponse() *SplitResponse {
	return &SplitResponse{
		ID:             s.ID,
		ExpenseID:      s.ExpenseID,
		MemberID:       s.MemberID,
		MemberUsername: s.MemberUsername,
		AmountDue:      s.AmountDue.StringFixed(2),
	}
}

// ToResponse converts an ExpenseWithSplits to its response DTO
func (ews *ExpenseWithSplits) ToResponse() *ExpenseResponse {
	resp := ews.Expense.ToResponse()
	resp.Splits = make([]*SplitResponse, len(ews.Splits))
	for i, s := range ews.Splits {
		resp.Splits[i] = s.ToResponse()
	}
	return resp
}
