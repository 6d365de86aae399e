package balance

import "github.com/shopspring/decimal"

// RosterMember is an active group member as the aggregator sees it
type RosterMember struct {
	UserID   int64
	Username string
}

// MemberBalance is one member's standing in a group, expressed in the group's
// settlement currency. Net is what the group owes the member: positive means
// the member paid more than their share.
type MemberBalance struct {
	UserID     int64
	Username   string
	TotalPaid  decimal.Decimal
	TotalShare decimal.Decimal
	Net        decimal.Decimal
}

// Compute merges paid and share totals over the roster. Members with no
// expenses on either side get explicit zero balances. Totals for users no
// longer on the roster are dropped; their splits were rewritten when they
// left, and expenses they paid stay attributed to them only while they are
// members.
func Compute(roster []RosterMember, paid, share map[int64]decimal.Decimal) []*MemberBalance {
	balances := make([]*MemberBalance, 0, len(roster))
	for _, m := range roster {
		p := paid[m.UserID]
		s := share[m.UserID]
		balances = append(balances, &MemberBalance{
			UserID:     m.UserID,
			Username:   m.Username,
			TotalPaid:  p,
			TotalShare: s,
			Net:        p.Sub(s),
		})
	}
	return balances
}
