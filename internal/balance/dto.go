package balance

// MemberBalanceResponse is one member's standing in the API response.
// Monetary fields are fixed two-decimal strings in the settlement currency.
type MemberBalanceResponse struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	TotalPaid  string `json:"total_paid"`
	TotalShare string `json:"total_share"`
	Net        string `json:"net"`
}

// GroupBalancesResponse represents the response for a group's balances
type GroupBalancesResponse struct {
	GroupID            int64                    `json:"group_id"`
	SettlementCurrency string                   `json:"settlement_currency"`
	Balances           []*MemberBalanceResponse `json:"balances"`
}

// ExportExpenseResponse is one expense row in a balance export
type ExportExpenseResponse struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	PayerID          int64  `json:"payer_id"`
	PayerUsername    string `json:"payer_username"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
	SettlementAmount string `json:"settlement_amount"`
	SplitType        string `json:"split_type"`
	ExpenseDate      string `json:"expense_date"`
}

// ExportResponse represents the response for a group export
type ExportResponse struct {
	GroupID            int64                    `json:"group_id"`
	SettlementCurrency string                   `json:"settlement_currency"`
	Balances           []*MemberBalanceResponse `json:"balances"`
	Expenses           []*ExportExpenseResponse `json:"expenses"`
}

// ToResponse converts a MemberBalance to its DTO
func (b *MemberBalance) ToResponse() *MemberBalanceResponse {
	return &MemberBalanceResponse{
		UserID:     b.UserID,
		Username:   b.Username,
		TotalPaid:  b.TotalPaid.StringFixed(2),
		TotalShare: b.TotalShare.StringFixed(2),
		Net:        b.Net.StringFixed(2),
	}
}

// ToResponse converts GroupBalances to its DTO
func (g *GroupBalances) ToResponse() *GroupBalancesResponse {
	balances := make([]*MemberBalanceResponse, len(g.Balances))
	for i, b := range g.Balances {
		balances[i] = b.ToResponse()
	}
	return &GroupBalancesResponse{
		GroupID:            g.GroupID,
		SettlementCurrency: g.SettlementCurrency,
		Balances:           balances,
	}
}

// ToResponse converts an ExportRow to its DTO. An expense recorded in the
// settlement currency has no stored conversion, so its own amount is reported.
func (r *ExportRow) ToResponse() *ExportExpenseResponse {
	settlement := r.Amount
	if r.SettlementAmount.Valid {
		settlement = r.SettlementAmount.Decimal
	}
	return &ExportExpenseResponse{
		ID:               r.ID,
		Title:            r.Title,
		PayerID:          r.PayerID,
		PayerUsername:    r.PayerUsername,
		Amount:           r.Amount.StringFixed(2),
		Currency:         r.Currency,
		SettlementAmount: settlement.StringFixed(2),
		SplitType:        r.SplitType,
		ExpenseDate:      r.ExpenseDate.Format("2006-01-02"),
	}
}

// ToResponse converts an Export to its DTO
func (e *Export) ToResponse() *ExportResponse {
	balances := make([]*MemberBalanceResponse, len(e.Balances.Balances))
	for i, b := range e.Balances.Balances {
		balances[i] = b.ToResponse()
	}
	expenses := make([]*ExportExpenseResponse, len(e.Expenses))
	for i, row := range e.Expenses {
		expenses[i] = row.ToResponse()
	}
	return &ExportResponse{
		GroupID:            e.Balances.GroupID,
		SettlementCurrency: e.Balances.SettlementCurrency,
		Balances:           balances,
		Expenses:           expenses,
	}
}
