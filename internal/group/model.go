package group

import "time"

// MemberRole represents a user's role within a group. PENDING is an accepted
// invitation slot: the user appears in the roster but has no paying identity
// and is excluded from every split and balance computation until they join.
type MemberRole string

const (
	MemberRoleOwner   MemberRole = "OWNER"
	MemberRoleAdmin   MemberRole = "ADMIN"
	MemberRoleMember  MemberRole = "MEMBER"
	MemberRolePending MemberRole = "PENDING"
)

// CanManageMembers reports whether the role may add or remove members
func (r MemberRole) CanManageMembers() bool {
	return r == MemberRoleOwner || r == MemberRoleAdmin
}

// IsActive reports whether the role participates in splits and balances
func (r MemberRole) IsActive() bool {
	return r == MemberRoleOwner || r == MemberRoleAdmin || r == MemberRoleMember
}

// Group represents a group in the system. The settlement currency is the
// single currency its balances are expressed in and is fixed at creation.
type Group struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Description        *string   `json:"description,omitempty"`
	SettlementCurrency string    `json:"settlement_currency"`
	CreatedAt          time.Time `json:"created_at"`
}

// GroupMember represents a user's membership in a group
type GroupMember struct {
	ID       int64      `json:"id"`
	GroupID  int64      `json:"group_id"`
	UserID   int64      `json:"user_id"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joined_at"`

	// Populated from JOIN
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
