package expense

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitpot/internal/currency"
	"github.com/fkhayef/splitpot/internal/database"
	"github.com/fkhayef/splitpot/internal/event"
	"github.com/fkhayef/splitpot/internal/expense/split"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrNotPayer        = errors.New("only the payer can modify this expense")
	ErrInvalidCurrency = errors.New("unknown currency code")
	ErrInvalidDate     = errors.New("expense date must be YYYY-MM-DD")
	ErrTitleRequired   = errors.New("title is required")
)

// GroupInfo is the slice of group state the expense engine needs
type GroupInfo struct {
	ID                 int64
	SettlementCurrency string
}

// GroupDirectory is the narrow membership view the expense engine depends on;
// the group repository implements it. Methods taking a Querier participate in
// the caller's transaction.
type GroupDirectory interface {
	// LockGroup fetches a group and locks its row, serializing split rewrites
	// for that group. Returns nil when the group does not exist.
	LockGroup(ctx context.Context, q database.Querier, groupID int64) (*GroupInfo, error)

	// GetGroupInfo is the read-only counterpart of LockGroup
	GetGroupInfo(ctx context.Context, groupID int64) (*GroupInfo, error)

	// ActiveMemberIDs returns the non-pending member user ids, in join order
	ActiveMemberIDs(ctx context.Context, q database.Querier, groupID int64) ([]int64, error)

	// IsActiveMember reports whether the user is a non-pending member
	IsActiveMember(ctx context.Context, groupID, userID int64) (bool, error)
}

// RateResolver converts between currencies; fail-open, never errors
type RateResolver interface {
	Resolve(ctx context.Context, from, to string) decimal.Decimal
}

// Service handles expense business logic
type Service struct {
	db           *sql.DB
	repo         *Repository
	groups       GroupDirectory
	resolver     RateResolver
	splitFactory *split.Factory
}

// NewService creates a new expense service with dependencies injected
func NewService(db *sql.DB, repo *Repository, groups GroupDirectory, resolver RateResolver, splitFactory *split.Factory) *Service {
	return &Service{
		db:           db,
		repo:         repo,
		groups:       groups,
		resolver:     resolver,
		splitFactory: splitFactory,
	}
}

// CreateExpense validates the request, converts the amount to the group's
// settlement currency, computes splits against the current roster, and
// persists everything in one transaction. The returned event is published by
// the caller after the commit.
func (s *Service) CreateExpense(ctx context.Context, payerID int64, req *CreateExpenseRequest) (*ExpenseWithSplits, event.Event, error) {
	if req.Title == "" {
		return nil, event.Event{}, ErrTitleRequired
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, event.Event{}, split.ErrNonPositiveAmount
	}
	if !currency.IsValidCode(req.Currency) {
		return nil, event.Event{}, ErrInvalidCurrency
	}

	strategy, err := s.splitFactory.CreateFromString(req.SplitType)
	if err != nil {
		return nil, event.Event{}, err
	}

	expenseDate, err := parseExpenseDate(req.ExpenseDate)
	if err != nil {
		return nil, event.Event{}, err
	}

	e := &Expense{
		GroupID:     req.GroupID,
		PayerID:     payerID,
		Title:       req.Title,
		Amount:      req.Amount,
		Currency:    req.Currency,
		SplitType:   strategy.Type(),
		ExpenseDate: expenseDate,
		ReceiptURL:  req.ReceiptURL,
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		g, err := s.groups.LockGroup(ctx, tx, req.GroupID)
		if err != nil {
			return err
		}
		if g == nil {
			return ErrGroupNotFound
		}

		members, err := s.groups.ActiveMemberIDs(ctx, tx, req.GroupID)
		if err != nil {
			return err
		}
		if !containsID(members, payerID) {
			// Non-members (and pending members, who have no paying identity)
			// are told the group does not exist.
			return ErrGroupNotFound
		}

		e.SettlementAmount, e.ExchangeRate = s.convert(ctx, req.Amount, req.Currency, g.SettlementCurrency)

		shares, err := strategy.Calculate(e.SettledAmount(), members, toAllocations(req.Allocations))
		if err != nil {
			return err
		}

		if err := s.repo.InsertExpense(ctx, tx, e); err != nil {
			return err
		}
		return s.repo.InsertSplits(ctx, tx, e.ID, shares)
	})
	if err != nil {
		return nil, event.Event{}, err
	}

	splits, err := s.repo.GetSplitsByExpenseID(ctx, e.ID)
	if err != nil {
		return nil, event.Event{}, err
	}

	return &ExpenseWithSplits{Expense: e, Splits: splits},
		event.New(event.TypeExpenseCreated, e.GroupID), nil
}

// GetExpenseByID retrieves an expense with its splits, gated on membership
func (s *Service) GetExpenseByID(ctx context.Context, userID, id int64) (*ExpenseWithSplits, error) {
	e, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}

	isMember, err := s.groups.IsActiveMember(ctx, e.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		// Existence of group data is only revealed to members
		return nil, ErrExpenseNotFound
	}

	splits, err := s.repo.GetSplitsByExpenseID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ExpenseWithSplits{Expense: e, Splits: splits}, nil
}

// ListExpensesByGroupID retrieves expenses for a group, gated on membership
func (s *Service) ListExpensesByGroupID(ctx context.Context, userID, groupID int64, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	g, err := s.groups.GetGroupInfo(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}
	if g == nil {
		return nil, 0, ErrGroupNotFound
	}

	isMember, err := s.groups.IsActiveMember(ctx, groupID, userID)
	if err != nil {
		return nil, 0, err
	}
	if !isMember {
		return nil, 0, ErrGroupNotFound
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroupID(ctx, groupID, perPage, offset)
}

// UpdateExpense rewrites an expense. When the amount, currency, split type, or
// allocations change, the persisted splits are invalidated and replaced in the
// same transaction; a stale split row never survives a changed amount.
func (s *Service) UpdateExpense(ctx context.Context, userID, id int64, req *UpdateExpenseRequest) (*ExpenseWithSplits, event.Event, error) {
	var updated *Expense

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		e, err := s.repo.GetExpenseForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return ErrExpenseNotFound
		}
		if e.PayerID != userID {
			return ErrNotPayer
		}

		g, err := s.groups.LockGroup(ctx, tx, e.GroupID)
		if err != nil {
			return err
		}
		if g == nil {
			return ErrGroupNotFound
		}

		if err := applyUpdate(e, req); err != nil {
			return err
		}

		if req.requiresRecompute() {
			strategy, err := s.splitFactory.Create(e.SplitType)
			if err != nil {
				return err
			}

			e.SettlementAmount, e.ExchangeRate = s.convert(ctx, e.Amount, e.Currency, g.SettlementCurrency)

			members, err := s.groups.ActiveMemberIDs(ctx, tx, e.GroupID)
			if err != nil {
				return err
			}

			shares, err := strategy.Calculate(e.SettledAmount(), members, toAllocations(req.Allocations))
			if err != nil {
				return err
			}

			if err := s.repo.DeleteSplitsByExpenseID(ctx, tx, e.ID); err != nil {
				return err
			}
			if err := s.repo.InsertSplits(ctx, tx, e.ID, shares); err != nil {
				return err
			}
		}

		updated = e
		return s.repo.UpdateExpense(ctx, tx, e)
	})
	if err != nil {
		return nil, event.Event{}, err
	}

	splits, err := s.repo.GetSplitsByExpenseID(ctx, id)
	if err != nil {
		return nil, event.Event{}, err
	}

	return &ExpenseWithSplits{Expense: updated, Splits: splits},
		event.New(event.TypeExpenseUpdated, updated.GroupID), nil
}

// DeleteExpense removes an expense and its splits
func (s *Service) DeleteExpense(ctx context.Context, userID, id int64) (event.Event, error) {
	var groupID int64

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		e, err := s.repo.GetExpenseForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return ErrExpenseNotFound
		}
		if e.PayerID != userID {
			return ErrNotPayer
		}

		groupID = e.GroupID
		return s.repo.DeleteExpense(ctx, tx, id)
	})
	if err != nil {
		return event.Event{}, err
	}

	return event.New(event.TypeExpenseDeleted, groupID), nil
}

// convert derives the settlement-currency amount and the rate used. Same
// currency records no rate; conversion failures never surface here because
// the resolver fails open.
func (s *Service) convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.NullDecimal, decimal.NullDecimal) {
	if from == to {
		return decimal.NullDecimal{Decimal: amount, Valid: true}, decimal.NullDecimal{}
	}

	rate := s.resolver.Resolve(ctx, from, to)
	return decimal.NullDecimal{Decimal: amount.Mul(rate).Round(2), Valid: true},
		decimal.NullDecimal{Decimal: rate, Valid: true}
}

// applyUpdate folds the request's set fields into the expense
func applyUpdate(e *Expense, req *UpdateExpenseRequest) error {
	if req.Title != nil {
		if *req.Title == "" {
			return ErrTitleRequired
		}
		e.Title = *req.Title
	}
	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return split.ErrNonPositiveAmount
		}
		e.Amount = *req.Amount
	}
	if req.Currency != nil {
		if !currency.IsValidCode(*req.Currency) {
			return ErrInvalidCurrency
		}
		e.Currency = *req.Currency
	}
	if req.SplitType != nil {
		e.SplitType = split.Type(*req.SplitType)
	}
	if req.ExpenseDate != nil {
		d, err := parseExpenseDate(*req.ExpenseDate)
		if err != nil {
			return err
		}
		e.ExpenseDate = d
	}
	if req.ReceiptURL != nil {
		e.ReceiptURL = req.ReceiptURL
	}
	return nil
}

func parseExpenseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

func toAllocations(inputs []*AllocationInput) []split.Allocation {
	if len(inputs) == 0 {
		return nil
	}
	allocations := make([]split.Allocation, len(inputs))
	for i, in := range inputs {
		allocations[i] = in.ToAllocation()
	}
	return allocations
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
