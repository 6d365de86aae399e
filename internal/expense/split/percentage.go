package split

import "github.com/shopspring/decimal"

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense by caller-supplied percentages
// =============================================================================

// percentageTolerance allows the percentages to sum to 100 +/- 0.1
var (
	hundred             = decimal.NewFromInt(100)
	percentageTolerance = decimal.NewFromFloat(0.1)
)

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() Type {
	return TypePercentage
}

// Validate checks that allocations cover exactly the given members, each
// percentage is in [0,100], and the sum is 100 within the tolerance. This must
// pass before anything is persisted.
func (s *PercentageStrategy) Validate(amount decimal.Decimal, members []int64, allocations []Allocation) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveAmount
	}
	if len(allocations) == 0 || len(allocations) != len(members) {
		return ErrMissingAllocations
	}

	memberSet := make(map[int64]struct{}, len(members))
	for _, id := range members {
		memberSet[id] = struct{}{}
	}

	seen := make(map[int64]struct{}, len(allocations))
	total := decimal.Zero
	for _, a := range allocations {
		if _, ok := memberSet[a.MemberID]; !ok {
			return ErrUnknownMember
		}
		if _, dup := seen[a.MemberID]; dup {
			return ErrDuplicateAllocation
		}
		seen[a.MemberID] = struct{}{}

		if a.Percentage.IsNegative() || a.Percentage.GreaterThan(hundred) {
			return ErrPercentageOutOfRange
		}
		total = total.Add(a.Percentage)
	}

	if total.Sub(hundred).Abs().GreaterThan(percentageTolerance) {
		return ErrInvalidPercentages
	}

	return nil
}

// Calculate computes share = amount * percentage / 100 rounded to 2 decimals
// for each member. No remainder is redistributed; the per-member rounding is
// the recorded amount.
func (s *PercentageStrategy) Calculate(amount decimal.Decimal, members []int64, allocations []Allocation) ([]Share, error) {
	if err := s.Validate(amount, members, allocations); err != nil {
		return nil, err
	}

	shares := make([]Share, len(allocations))
	for i, a := range allocations {
		shares[i] = Share{
			MemberID:  a.MemberID,
			AmountDue: amount.Mul(a.Percentage).Div(hundred).Round(2),
		}
	}

	return shares, nil
}
