package group

import "testing"

func TestMemberRolePermissions(t *testing.T) {
	tests := []struct {
		role      MemberRole
		canManage bool
		active    bool
	}{
		{MemberRoleOwner, true, true},
		{MemberRoleAdmin, true, true},
		{MemberRoleMember, false, true},
		{MemberRolePending, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.CanManageMembers(); got != tt.canManage {
				t.Errorf("CanManageMembers() = %v, want %v", got, tt.canManage)
			}
			if got := tt.role.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, want %v", got, tt.active)
			}
		})
	}
}
