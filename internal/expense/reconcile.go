package expense

import (
	"context"

	"github.com/fkhayef/splitpot/internal/database"
	"github.com/fkhayef/splitpot/internal/expense/split"
)

// Reconciler rewrites equal-split allocations when a group's roster changes.
// Equal splits are defined relative to the current non-pending roster, so any
// membership mutation invalidates them; percentage splits are caller-chosen
// and deliberately left untouched.
type Reconciler struct {
	repo  *Repository
	equal *split.EqualStrategy
}

// NewReconciler creates a reconciler over the expense repository
func NewReconciler(repo *Repository) *Reconciler {
	return &Reconciler{
		repo:  repo,
		equal: &split.EqualStrategy{},
	}
}

// RecomputeEqualSplits deletes and recomputes the splits of every EQUAL
// expense in the group against the given roster. It must run inside the same
// transaction as the membership mutation that triggered it, with the caller
// holding the group row lock; a failed recompute rolls the membership change
// back with it.
//
// The returned ids are PERCENTAGE expenses whose allocations no longer cover
// the roster; they are reported, never auto-corrected.
func (rc *Reconciler) RecomputeEqualSplits(ctx context.Context, q database.Querier, groupID int64, roster []int64) ([]int64, error) {
	expenses, err := rc.repo.ListEqualExpensesForUpdate(ctx, q, groupID)
	if err != nil {
		return nil, err
	}

	for _, e := range expenses {
		shares, err := rc.equal.Calculate(e.SettledAmount(), roster, nil)
		if err != nil {
			return nil, err
		}

		if err := rc.repo.DeleteSplitsByExpenseID(ctx, q, e.ID); err != nil {
			return nil, err
		}
		if err := rc.repo.InsertSplits(ctx, q, e.ID, shares); err != nil {
			return nil, err
		}
	}

	return rc.repo.ListPercentageExpensesMissingMembers(ctx, q, groupID)
}
