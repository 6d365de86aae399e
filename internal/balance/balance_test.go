package balance

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitpot/internal/expense/split"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		roster   []RosterMember
		paid     map[int64]decimal.Decimal
		share    map[int64]decimal.Decimal
		validate func(t *testing.T, balances []*MemberBalance)
	}{
		{
			name: "payer is owed what the others owe",
			roster: []RosterMember{
				{UserID: 1, Username: "amal"},
				{UserID: 2, Username: "badr"},
			},
			paid:  map[int64]decimal.Decimal{1: dec("50.00")},
			share: map[int64]decimal.Decimal{1: dec("25.00"), 2: dec("25.00")},
			validate: func(t *testing.T, balances []*MemberBalance) {
				if len(balances) != 2 {
					t.Fatalf("got %d balances, want 2", len(balances))
				}
				if !balances[0].Net.Equal(dec("25.00")) {
					t.Errorf("amal net = %s, want 25.00", balances[0].Net)
				}
				if !balances[1].Net.Equal(dec("-25.00")) {
					t.Errorf("badr net = %s, want -25.00", balances[1].Net)
				}
			},
		},
		{
			name: "member with no activity has zero balance",
			roster: []RosterMember{
				{UserID: 1, Username: "amal"},
				{UserID: 2, Username: "badr"},
				{UserID: 3, Username: "celine"},
			},
			paid:  map[int64]decimal.Decimal{1: dec("30.00")},
			share: map[int64]decimal.Decimal{1: dec("15.00"), 2: dec("15.00")},
			validate: func(t *testing.T, balances []*MemberBalance) {
				c := balances[2]
				if !c.TotalPaid.IsZero() || !c.TotalShare.IsZero() || !c.Net.IsZero() {
					t.Errorf("celine balance = paid %s share %s net %s, want all zero",
						c.TotalPaid, c.TotalShare, c.Net)
				}
			},
		},
		{
			name: "totals for users off the roster are dropped",
			roster: []RosterMember{
				{UserID: 1, Username: "amal"},
			},
			paid:  map[int64]decimal.Decimal{1: dec("10.00"), 99: dec("40.00")},
			share: map[int64]decimal.Decimal{1: dec("10.00")},
			validate: func(t *testing.T, balances []*MemberBalance) {
				if len(balances) != 1 {
					t.Fatalf("got %d balances, want 1", len(balances))
				}
				if balances[0].UserID != 1 {
					t.Errorf("got user %d, want 1", balances[0].UserID)
				}
			},
		},
		{
			name:   "empty roster yields no balances",
			roster: nil,
			paid:   map[int64]decimal.Decimal{},
			share:  map[int64]decimal.Decimal{},
			validate: func(t *testing.T, balances []*MemberBalance) {
				if len(balances) != 0 {
					t.Errorf("got %d balances, want 0", len(balances))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, Compute(tt.roster, tt.paid, tt.share))
		})
	}
}

// A 50.00 expense between two members, then a third member joins and the
// equal splits are recomputed. The resulting nets must conserve within the
// per-expense rounding tolerance.
func TestComputeAfterRosterGrowth(t *testing.T) {
	amount := dec("50.00")
	equal := &split.EqualStrategy{}

	shares, err := equal.Calculate(amount, []int64{1, 2}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range shares {
		if !s.AmountDue.Equal(dec("25.00")) {
			t.Fatalf("member %d share = %s, want 25.00", s.MemberID, s.AmountDue)
		}
	}

	// Third member joins; splits are rewritten over the new roster
	shares, err = equal.Calculate(amount, []int64{1, 2, 3}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	roster := []RosterMember{
		{UserID: 1, Username: "amal"},
		{UserID: 2, Username: "badr"},
		{UserID: 3, Username: "celine"},
	}
	paid := map[int64]decimal.Decimal{1: amount}
	share := make(map[int64]decimal.Decimal)
	for _, s := range shares {
		share[s.MemberID] = s.AmountDue
	}

	balances := Compute(roster, paid, share)

	if !balances[0].Net.Equal(dec("33.33")) {
		t.Errorf("payer net = %s, want 33.33", balances[0].Net)
	}
	for _, b := range balances[1:] {
		if !b.Net.Equal(dec("-16.67")) {
			t.Errorf("%s net = %s, want -16.67", b.Username, b.Net)
		}
	}

	// One expense: the nets may drift from zero by at most a cent
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.Net)
	}
	if sum.Abs().GreaterThan(dec("0.01")) {
		t.Errorf("sum of nets = %s, want within 0.01 of zero", sum)
	}
}

func TestComputeConservation(t *testing.T) {
	// Several expenses with different payers and split outcomes; each split
	// sums exactly to its expense, so the nets must sum exactly to zero.
	roster := []RosterMember{
		{UserID: 1, Username: "amal"},
		{UserID: 2, Username: "badr"},
		{UserID: 3, Username: "celine"},
	}
	paid := map[int64]decimal.Decimal{
		1: dec("90.00"),
		2: dec("45.50"),
		3: dec("12.00"),
	}
	share := map[int64]decimal.Decimal{
		1: dec("49.17"),
		2: dec("49.17"),
		3: dec("49.16"),
	}

	sum := decimal.Zero
	for _, b := range Compute(roster, paid, share) {
		sum = sum.Add(b.Net)
	}
	if !sum.IsZero() {
		t.Errorf("sum of nets = %s, want 0", sum)
	}
}
