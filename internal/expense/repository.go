package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fkhayef/splitpot/internal/database"
	"github.com/fkhayef/splitpot/internal/expense/split"
)

// Repository handles expense and split data persistence. Mutating methods
// take a database.Querier so they run inside the caller's transaction.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const expenseColumns = `id, group_id, payer_id, title, amount, currency, settlement_amount, exchange_rate, split_type, expense_date, receipt_url, created_at`

func scanExpense(row interface{ Scan(...interface{}) error }, e *Expense) error {
	return row.Scan(
		&e.ID,
		&e.GroupID,
		&e.PayerID,
		&e.Title,
		&e.Amount,
		&e.Currency,
		&e.SettlementAmount,
		&e.ExchangeRate,
		&e.SplitType,
		&e.ExpenseDate,
		&e.ReceiptURL,
		&e.CreatedAt,
	)
}

// InsertExpense inserts a new expense, filling in its generated fields
func (r *Repository) InsertExpense(ctx context.Context, q database.Querier, e *Expense) error {
	query := `
		INSERT INTO expenses (group_id, payer_id, title, amount, currency, settlement_amount, exchange_rate, split_type, expense_date, receipt_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := q.QueryRowContext(ctx, query,
		e.GroupID,
		e.PayerID,
		e.Title,
		e.Amount,
		e.Currency,
		e.SettlementAmount,
		e.ExchangeRate,
		e.SplitType,
		e.ExpenseDate,
		e.ReceiptURL,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	return nil
}

// GetExpenseByID retrieves an expense by its ID
func (r *Repository) GetExpenseByID(ctx context.Context, id int64) (*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.payer_id, e.title, e.amount, e.currency, e.settlement_amount, e.exchange_rate, e.split_type, e.expense_date, e.receipt_url, e.created_at, u.username
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.id = $1
	`

	e := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID,
		&e.GroupID,
		&e.PayerID,
		&e.Title,
		&e.Amount,
		&e.Currency,
		&e.SettlementAmount,
		&e.ExchangeRate,
		&e.SplitType,
		&e.ExpenseDate,
		&e.ReceiptURL,
		&e.CreatedAt,
		&e.PayerUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return e, nil
}

// GetExpenseForUpdate retrieves an expense inside a transaction, locking its row
func (r *Repository) GetExpenseForUpdate(ctx context.Context, q database.Querier, id int64) (*Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 FOR UPDATE`

	e := &Expense{}
	if err := scanExpense(q.QueryRowContext(ctx, query, id), e); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return e, nil
}

// ListByGroupID retrieves expenses for a group, newest first
func (r *Repository) ListByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM expenses WHERE group_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `
		SELECT e.id, e.group_id, e.payer_id, e.title, e.amount, e.currency, e.settlement_amount, e.exchange_rate, e.split_type, e.expense_date, e.receipt_url, e.created_at, u.username
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.group_id = $1
		ORDER BY e.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		e := &Expense{}
		if err := rows.Scan(
			&e.ID,
			&e.GroupID,
			&e.PayerID,
			&e.Title,
			&e.Amount,
			&e.Currency,
			&e.SettlementAmount,
			&e.ExchangeRate,
			&e.SplitType,
			&e.ExpenseDate,
			&e.ReceiptURL,
			&e.CreatedAt,
			&e.PayerUsername,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read expenses: %w", err)
	}

	return expenses, total, nil
}

// UpdateExpense rewrites an expense's mutable fields
func (r *Repository) UpdateExpense(ctx context.Context, q database.Querier, e *Expense) error {
	query := `
		UPDATE expenses
		SET title = $2, amount = $3, currency = $4, settlement_amount = $5, exchange_rate = $6, split_type = $7, expense_date = $8, receipt_url = $9
		WHERE id = $1
	`

	if _, err := q.ExecContext(ctx, query,
		e.ID,
		e.Title,
		e.Amount,
		e.Currency,
		e.SettlementAmount,
		e.ExchangeRate,
		e.SplitType,
		e.ExpenseDate,
		e.ReceiptURL,
	); err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	return nil
}

// DeleteExpense removes an expense; its splits go with it via ON DELETE CASCADE
func (r *Repository) DeleteExpense(ctx context.Context, q database.Querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

// InsertSplits persists the computed shares for an expense
func (r *Repository) InsertSplits(ctx context.Context, q database.Querier, expenseID int64, shares []split.Share) error {
	query := `INSERT INTO expense_splits (expense_id, member_id, amount_due) VALUES ($1, $2, $3)`

	for _, share := range shares {
		if _, err := q.ExecContext(ctx, query, expenseID, share.MemberID, share.AmountDue); err != nil {
			return fmt.Errorf("failed to create split: %w", err)
		}
	}

	return nil
}

// DeleteSplitsByExpenseID removes all splits for an expense
func (r *Repository) DeleteSplitsByExpenseID(ctx context.Context, q database.Querier, expenseID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, expenseID); err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}
	return nil
}

// GetSplitsByExpenseID retrieves all splits for an expense
func (r *Repository) GetSplitsByExpenseID(ctx context.Context, expenseID int64) ([]*Split, error) {
	query := `
		SELECT s.id, s.expense_id, s.member_id, s.amount_due, u.username
		FROM expense_splits s
		JOIN users u ON s.member_id = u.id
		WHERE s.expense_id = $1
		ORDER BY s.id
	`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		s := &Split{}
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.MemberID, &s.AmountDue, &s.MemberUsername); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read splits: %w", err)
	}

	return splits, nil
}

// ListEqualExpensesForUpdate retrieves every EQUAL-split expense in a group,
// locking the rows for the duration of a reconciliation
func (r *Repository) ListEqualExpensesForUpdate(ctx context.Context, q database.Querier, groupID int64) ([]*Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE group_id = $1 AND split_type = $2 ORDER BY id FOR UPDATE`

	rows, err := q.QueryContext(ctx, query, groupID, split.TypeEqual)
	if err != nil {
		return nil, fmt.Errorf("failed to list equal-split expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		e := &Expense{}
		if err := scanExpense(rows, e); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}

	return expenses, nil
}

// ListPercentageExpensesMissingMembers returns ids of PERCENTAGE expenses
// whose splits no longer cover every non-pending member of the group. These
// are deliberately not recomputed; callers surface them as a warning.
func (r *Repository) ListPercentageExpensesMissingMembers(ctx context.Context, q database.Querier, groupID int64) ([]int64, error) {
	query := `
		SELECT e.id
		FROM expenses e
		WHERE e.group_id = $1
		  AND e.split_type = $2
		  AND EXISTS (
			SELECT 1 FROM group_members gm
			WHERE gm.group_id = e.group_id
			  AND gm.role != 'PENDING'
			  AND NOT EXISTS (
				SELECT 1 FROM expense_splits s
				WHERE s.expense_id = e.id AND s.member_id = gm.user_id
			  )
		  )
		ORDER BY e.id
	`

	rows, err := q.QueryContext(ctx, query, groupID, split.TypePercentage)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete percentage expenses: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expense id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expense ids: %w", err)
	}

	return ids, nil
}
