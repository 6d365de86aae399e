package balance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Repository reads the aggregates balances are computed from. Nothing here
// writes; balances are derived on every call.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new balance repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ActiveRoster returns the non-pending members of a group in join order
func (r *Repository) ActiveRoster(ctx context.Context, groupID int64) ([]RosterMember, error) {
	query := `
		SELECT gm.user_id, u.username
		FROM group_members gm
		JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1 AND gm.role != 'PENDING'
		ORDER BY gm.joined_at, gm.id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	defer rows.Close()

	var roster []RosterMember
	for rows.Next() {
		var m RosterMember
		if err := rows.Scan(&m.UserID, &m.Username); err != nil {
			return nil, fmt.Errorf("failed to scan roster member: %w", err)
		}
		roster = append(roster, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	return roster, nil
}

// TotalsPaid sums what each payer spent, in the settlement currency. Expenses
// recorded in the settlement currency carry no converted amount, so the
// original amount stands in for it.
func (r *Repository) TotalsPaid(ctx context.Context, groupID int64) (map[int64]decimal.Decimal, error) {
	query := `
		SELECT payer_id, SUM(COALESCE(settlement_amount, amount))
		FROM expenses
		WHERE group_id = $1
		GROUP BY payer_id
	`

	return r.sumByUser(ctx, query, groupID, "paid totals")
}

// TotalsShare sums each member's share across all of the group's splits
func (r *Repository) TotalsShare(ctx context.Context, groupID int64) (map[int64]decimal.Decimal, error) {
	query := `
		SELECT es.member_id, SUM(es.amount_due)
		FROM expense_splits es
		JOIN expenses e ON es.expense_id = e.id
		WHERE e.group_id = $1
		GROUP BY es.member_id
	`

	return r.sumByUser(ctx, query, groupID, "share totals")
}

func (r *Repository) sumByUser(ctx context.Context, query string, groupID int64, what string) (map[int64]decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", what, err)
	}
	defer rows.Close()

	totals := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var userID int64
		var total decimal.Decimal
		if err := rows.Scan(&userID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		totals[userID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", what, err)
	}

	return totals, nil
}

// ExportRow is one expense as it appears in a balance export
type ExportRow struct {
	ID               int64
	Title            string
	PayerID          int64
	PayerUsername    string
	Amount           decimal.Decimal
	Currency         string
	SettlementAmount decimal.NullDecimal
	SplitType        string
	ExpenseDate      time.Time
}

// ListExpensesForExport returns every expense of the group, oldest first
func (r *Repository) ListExpensesForExport(ctx context.Context, groupID int64) ([]*ExportRow, error) {
	query := `
		SELECT e.id, e.title, e.payer_id, u.username, e.amount, e.currency,
		       e.settlement_amount, e.split_type, e.expense_date
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.group_id = $1
		ORDER BY e.expense_date, e.id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses for export: %w", err)
	}
	defer rows.Close()

	var exportRows []*ExportRow
	for rows.Next() {
		row := &ExportRow{}
		if err := rows.Scan(
			&row.ID,
			&row.Title,
			&row.PayerID,
			&row.PayerUsername,
			&row.Amount,
			&row.Currency,
			&row.SettlementAmount,
			&row.SplitType,
			&row.ExpenseDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		exportRows = append(exportRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read export rows: %w", err)
	}

	return exportRows, nil
}
