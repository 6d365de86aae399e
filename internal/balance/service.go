package balance

import (
	"context"
	"errors"

	"github.com/fkhayef/splitpot/internal/expense"
)

// Common errors
var (
	ErrGroupNotFound = errors.New("group not found")
)

// Service computes group balances on demand. Nothing is stored: every call
// derives the standings from the expenses and splits as committed.
type Service struct {
	repo   *Repository
	groups expense.GroupDirectory
}

// NewService creates a new balance service
func NewService(repo *Repository, groups expense.GroupDirectory) *Service {
	return &Service{repo: repo, groups: groups}
}

// GroupBalances is the full standing of a group
type GroupBalances struct {
	GroupID            int64
	SettlementCurrency string
	Balances           []*MemberBalance
}

// ComputeBalances derives every active member's balance. Only members can
// see a group's balances; everyone else is told it does not exist.
func (s *Service) ComputeBalances(ctx context.Context, userID, groupID int64) (*GroupBalances, error) {
	info, err := s.requireMember(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	roster, err := s.repo.ActiveRoster(ctx, groupID)
	if err != nil {
		return nil, err
	}
	paid, err := s.repo.TotalsPaid(ctx, groupID)
	if err != nil {
		return nil, err
	}
	share, err := s.repo.TotalsShare(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &GroupBalances{
		GroupID:            groupID,
		SettlementCurrency: info.SettlementCurrency,
		Balances:           Compute(roster, paid, share),
	}, nil
}

// Export is a group's balances together with its full expense history, the
// shape an external report formatter consumes
type Export struct {
	Balances *GroupBalances
	Expenses []*ExportRow
}

// ExportGroup assembles the export for a group
func (s *Service) ExportGroup(ctx context.Context, userID, groupID int64) (*Export, error) {
	balances, err := s.ComputeBalances(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.repo.ListExpensesForExport(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &Export{Balances: balances, Expenses: expenses}, nil
}

func (s *Service) requireMember(ctx context.Context, userID, groupID int64) (*expense.GroupInfo, error) {
	info, err := s.groups.GetGroupInfo(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrGroupNotFound
	}

	active, err := s.groups.IsActiveMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrGroupNotFound
	}

	return info, nil
}
