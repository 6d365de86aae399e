package split

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEqualStrategyCalculate(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		members  []int64
		wantErr  error
		validate func(t *testing.T, shares []Share)
	}{
		{
			name:    "two members split evenly",
			amount:  dec("50.00"),
			members: []int64{1, 2},
			validate: func(t *testing.T, shares []Share) {
				if len(shares) != 2 {
					t.Fatalf("got %d shares, want 2", len(shares))
				}
				for _, s := range shares {
					if !s.AmountDue.Equal(dec("25.00")) {
						t.Errorf("member %d share = %s, want 25.00", s.MemberID, s.AmountDue)
					}
				}
			},
		},
		{
			name:    "three members round per share",
			amount:  dec("50.00"),
			members: []int64{1, 2, 3},
			validate: func(t *testing.T, shares []Share) {
				// 50/3 = 16.666... rounds to 16.67 for every member; the sum
				// drifts 0.01 above the total and that is the recorded result
				for _, s := range shares {
					if !s.AmountDue.Equal(dec("16.67")) {
						t.Errorf("member %d share = %s, want 16.67", s.MemberID, s.AmountDue)
					}
				}
				sum := decimal.Zero
				for _, s := range shares {
					sum = sum.Add(s.AmountDue)
				}
				if !sum.Equal(dec("50.01")) {
					t.Errorf("sum of shares = %s, want 50.01", sum)
				}
			},
		},
		{
			name:    "drift stays within half a cent per member",
			amount:  dec("100.00"),
			members: []int64{1, 2, 3, 4, 5, 6, 7},
			validate: func(t *testing.T, shares []Share) {
				sum := decimal.Zero
				for _, s := range shares {
					sum = sum.Add(s.AmountDue)
				}
				drift := sum.Sub(dec("100.00")).Abs()
				limit := dec("0.005").Mul(decimal.NewFromInt(7))
				if drift.GreaterThan(limit) {
					t.Errorf("drift %s exceeds %s", drift, limit)
				}
			},
		},
		{
			name:    "no members yields no shares",
			amount:  dec("10.00"),
			members: nil,
			validate: func(t *testing.T, shares []Share) {
				if len(shares) != 0 {
					t.Errorf("got %d shares, want 0", len(shares))
				}
			},
		},
		{
			name:    "zero amount rejected",
			amount:  decimal.Zero,
			members: []int64{1},
			wantErr: ErrNonPositiveAmount,
		},
		{
			name:    "negative amount rejected",
			amount:  dec("-5.00"),
			members: []int64{1},
			wantErr: ErrNonPositiveAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &EqualStrategy{}
			shares, err := s.Calculate(tt.amount, tt.members, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.validate(t, shares)
		})
	}
}

func TestPercentageStrategyCalculate(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		members     []int64
		allocations []Allocation
		wantErr     error
		validate    func(t *testing.T, shares []Share)
	}{
		{
			name:    "uneven percentages",
			amount:  dec("200.00"),
			members: []int64{1, 2, 3},
			allocations: []Allocation{
				{MemberID: 1, Percentage: dec("50")},
				{MemberID: 2, Percentage: dec("30")},
				{MemberID: 3, Percentage: dec("20")},
			},
			validate: func(t *testing.T, shares []Share) {
				want := map[int64]decimal.Decimal{
					1: dec("100.00"),
					2: dec("60.00"),
					3: dec("40.00"),
				}
				for _, s := range shares {
					if !s.AmountDue.Equal(want[s.MemberID]) {
						t.Errorf("member %d share = %s, want %s", s.MemberID, s.AmountDue, want[s.MemberID])
					}
				}
			},
		},
		{
			name:    "fractional percentages round per member",
			amount:  dec("100.00"),
			members: []int64{1, 2, 3},
			allocations: []Allocation{
				{MemberID: 1, Percentage: dec("33.33")},
				{MemberID: 2, Percentage: dec("33.33")},
				{MemberID: 3, Percentage: dec("33.34")},
			},
			validate: func(t *testing.T, shares []Share) {
				want := map[int64]decimal.Decimal{
					1: dec("33.33"),
					2: dec("33.33"),
					3: dec("33.34"),
				}
				for _, s := range shares {
					if !s.AmountDue.Equal(want[s.MemberID]) {
						t.Errorf("member %d share = %s, want %s", s.MemberID, s.AmountDue, want[s.MemberID])
					}
				}
			},
		},
		{
			name:    "sum just inside tolerance accepted",
			amount:  dec("100.00"),
			members: []int64{1, 2},
			allocations: []Allocation{
				{MemberID: 1, Percentage: dec("50.05")},
				{MemberID: 2, Percentage: dec("50.05")},
			},
			validate: func(t *testing.T, shares []Share) {
				if len(shares) != 2 {
					t.Fatalf("got %d shares, want 2", len(shares))
				}
			},
		},
		{
			name:    "sum outside tolerance rejected",
			amount:  dec("100.00"),
			members: []int64{1, 2},
			allocations: []Allocation{
				{MemberID: 1, Percentage: dec("50")},
				{MemberID: 2, Percentage: dec("49.8")},
			},
			wantErr: ErrInvalidPercentages,
		},
		{
			name:    "missing allocation for a member",
			amount:  dec("100.00"),
			members: []int64{1, 2},
			allocations: []Allocation{
				{MemberID: 1, Percentage: dec("100")},
			},
			wantErr: ErrMissingAllocations,
		},
		{
			name:    "allocation for a non-member",
			amount:  dec("100.00"),
			members: []int64{1, 2},
			allocations: []Allocation{
				{MemberID: 1, Percentage: dec("50")},
				{MemberID: 99, Percentage: dec("50")},
			},
			wantErr: ErrUnknownMember,
		},
		{
			name:    "duplicate member allocation",
			amount:  dec("100.00"),
			members: []int64{1, 2},
			allocations: []Allocation{
				{MemberID: 1, Percentage: dec("50")},
				{MemberID: 1, Percentage: dec("50")},
			},
			wantErr: ErrDuplicateAllocation,
		},
		{
			name:    "percentage above 100 rejected",
			amount:  dec("100.00"),
			members: []int64{1},
			allocations: []Allocation{
				{MemberID: 1, Percentage: dec("101")},
			},
			wantErr: ErrPercentageOutOfRange,
		},
		{
			name:    "negative percentage rejected",
			amount:  dec("100.00"),
			members: []int64{1, 2},
			allocations: []Allocation{
				{MemberID: 1, Percentage: dec("-10")},
				{MemberID: 2, Percentage: dec("110")},
			},
			wantErr: ErrPercentageOutOfRange,
		},
		{
			name:    "zero amount rejected",
			amount:  decimal.Zero,
			members: []int64{1},
			allocations: []Allocation{
				{MemberID: 1, Percentage: dec("100")},
			},
			wantErr: ErrNonPositiveAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &PercentageStrategy{}
			shares, err := s.Calculate(tt.amount, tt.members, tt.allocations)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.validate(t, shares)
		})
	}
}

func TestFactoryCreate(t *testing.T) {
	f := NewFactory()

	equal, err := f.Create(TypeEqual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if equal.Type() != TypeEqual {
		t.Errorf("got type %s, want %s", equal.Type(), TypeEqual)
	}

	pct, err := f.CreateFromString("PERCENTAGE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct.Type() != TypePercentage {
		t.Errorf("got type %s, want %s", pct.Type(), TypePercentage)
	}

	if _, err := f.CreateFromString("EXACT"); !errors.Is(err, ErrUnknownSplitType) {
		t.Errorf("got error %v, want %v", err, ErrUnknownSplitType)
	}
}
