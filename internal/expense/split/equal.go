package split

import "github.com/shopspring/decimal"

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense evenly among all non-pending members
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() Type {
	return TypeEqual
}

// Validate checks if the inputs are valid for an equal split.
// An empty member list is legal: a group of only pending members yields no
// splits, and the expense simply waits for members to join.
func (s *EqualStrategy) Validate(amount decimal.Decimal, members []int64, _ []Allocation) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveAmount
	}
	return nil
}

// Calculate divides the amount evenly across all members, payer included.
// Each share is rounded to 2 decimals independently, so the sum of shares may
// drift from the total by up to 0.005 per member. The drift is accepted rather
// than reassigned to one member; callers verify totals within that tolerance.
func (s *EqualStrategy) Calculate(amount decimal.Decimal, members []int64, allocations []Allocation) ([]Share, error) {
	if err := s.Validate(amount, members, allocations); err != nil {
		return nil, err
	}

	if len(members) == 0 {
		return []Share{}, nil
	}

	share := amount.Div(decimal.NewFromInt(int64(len(members)))).Round(2)

	shares := make([]Share, len(members))
	for i, memberID := range members {
		shares[i] = Share{
			MemberID:  memberID,
			AmountDue: share,
		}
	}

	return shares, nil
}
