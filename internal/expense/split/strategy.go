package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Type identifies the rule dividing an expense among members
type Type string

const (
	TypeEqual      Type = "EQUAL"
	TypePercentage Type = "PERCENTAGE"
)

// Allocation is a caller-supplied percentage for one member (PERCENTAGE splits)
type Allocation struct {
	MemberID   int64           `json:"member_id"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Share is the computed amount one member owes for an expense
type Share struct {
	MemberID  int64           `json:"member_id"`
	AmountDue decimal.Decimal `json:"amount_due"`
}

// Strategy computes per-member shares for an expense amount already expressed
// in the group's settlement currency. Strategies are pure; persistence belongs
// to the caller's transaction.
type Strategy interface {
	// Calculate computes the share owed by each member, payer included
	Calculate(amount decimal.Decimal, members []int64, allocations []Allocation) ([]Share, error)

	// Type returns the type identifier for this strategy
	Type() Type

	// Validate checks the inputs without computing anything
	Validate(amount decimal.Decimal, members []int64, allocations []Allocation) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy implementation for the given type
func (f *Factory) Create(t Type) (Strategy, error) {
	switch t {
	case TypeEqual:
		return &EqualStrategy{}, nil
	case TypePercentage:
		return &PercentageStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSplitType, t)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(t string) (Strategy, error) {
	return f.Create(Type(t))
}

var (
	ErrUnknownSplitType     = errors.New("unknown split type")
	ErrNonPositiveAmount    = errors.New("amount must be greater than zero")
	ErrMissingAllocations   = errors.New("percentage allocations required for all members")
	ErrDuplicateAllocation  = errors.New("duplicate member in percentage allocations")
	ErrUnknownMember        = errors.New("percentage allocation references a non-member")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
)
