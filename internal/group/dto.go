package group

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name               string  `json:"name" validate:"required,min=1,max=100"`
	Description        *string `json:"description,omitempty"`
	SettlementCurrency string  `json:"settlement_currency" validate:"required,len=3"`
}

// UpdateGroupRequest represents the request to update a group. The settlement
// currency is immutable; changing it would invalidate every recorded
// conversion.
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
}

// AddMemberRequest represents the request to add a member to a group.
// An empty role defaults to PENDING, an invitation slot that becomes active
// through the accept endpoint. An explicit MEMBER or ADMIN role joins the
// active roster immediately.
type AddMemberRequest struct {
	UserID int64      `json:"user_id" validate:"required"`
	Role   MemberRole `json:"role,omitempty"`
}

// UpdateMemberRoleRequest represents the request to change a member's role
type UpdateMemberRoleRequest struct {
	Role MemberRole `json:"role" validate:"required,oneof=ADMIN MEMBER"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID                 int64             `json:"id"`
	Name               string            `json:"name"`
	Description        *string           `json:"description,omitempty"`
	SettlementCurrency string            `json:"settlement_currency"`
	CreatedAt          string            `json:"created_at"`
	Members            []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	ID       int64      `json:"id"`
	UserID   int64      `json:"user_id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     MemberRole `json:"role"`
	JoinedAt string     `json:"joined_at"`
}

// MembershipChangeResponse reports the result of a roster mutation. Equal
// splits were recomputed inside the same transaction; percentage expenses
// whose allocations no longer cover the roster are listed as a warning and
// left untouched.
type MembershipChangeResponse struct {
	Member                       *MemberResponse `json:"member,omitempty"`
	IncompletePercentageExpenses []int64         `json:"incomplete_percentage_expenses,omitempty"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:                 g.ID,
		Name:               g.Name,
		Description:        g.Description,
		SettlementCurrency: g.SettlementCurrency,
		CreatedAt:          g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a GroupMember model to a MemberResponse DTO
func (m *GroupMember) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:       m.ID,
		UserID:   m.UserID,
		Username: m.Username,
		Email:    m.Email,
		Role:     m.Role,
		JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}
