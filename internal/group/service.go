package group

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fkhayef/splitpot/internal/currency"
	"github.com/fkhayef/splitpot/internal/database"
	"github.com/fkhayef/splitpot/internal/event"
	"github.com/fkhayef/splitpot/internal/expense"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
	ErrNotAuthorized       = errors.New("not authorized to perform this action")
	ErrCannotRemoveOwner   = errors.New("the group owner cannot be removed")
	ErrInvalidRole         = errors.New("invalid member role")
	ErrNoPendingInvitation = errors.New("no pending invitation for this group")
	ErrMemberStillPending  = errors.New("member has not joined the group yet")
	ErrNameRequired        = errors.New("group name is required")
	ErrInvalidCurrency     = errors.New("unknown settlement currency code")
)

// UserDirectory is the narrow user-lookup view the group service needs
type UserDirectory interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

// MembershipChange is the outcome of a roster mutation
type MembershipChange struct {
	Member *GroupMember

	// PERCENTAGE expenses whose allocations no longer cover the roster.
	// Reported to the caller, never auto-corrected.
	IncompletePercentageExpenses []int64
}

// Service handles group business logic. Every roster mutation and the equal-
// split reconciliation it triggers run in one transaction: a failure anywhere
// rolls back the membership change itself, so the system never holds a new
// roster with stale splits or the reverse.
type Service struct {
	db         *sql.DB
	repo       *Repository
	users      UserDirectory
	reconciler *expense.Reconciler
}

// NewService creates a new group service
func NewService(db *sql.DB, repo *Repository, users UserDirectory, reconciler *expense.Reconciler) *Service {
	return &Service{
		db:         db,
		repo:       repo,
		users:      users,
		reconciler: reconciler,
	}
}

// Create creates a new group with the creator as its owner
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	if req.Name == "" {
		return nil, ErrNameRequired
	}
	if !currency.IsValidCode(req.SettlementCurrency) {
		return nil, ErrInvalidCurrency
	}

	var group *Group
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		group, err = s.repo.Create(ctx, tx, req)
		if err != nil {
			return err
		}

		_, err = s.repo.AddMember(ctx, tx, group.ID, creatorID, MemberRoleOwner)
		return err
	})
	if err != nil {
		return nil, err
	}

	return group, nil
}

// GetByIDWithMembers retrieves a group with its full roster. Only members
// (pending included) can see a group; everyone else is told it does not exist.
func (s *Service) GetByIDWithMembers(ctx context.Context, userID, id int64) (*Group, []*GroupMember, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return nil, nil, ErrGroupNotFound
	}

	caller, err := s.repo.GetMember(ctx, s.db, id, userID)
	if err != nil {
		return nil, nil, err
	}
	if caller == nil {
		return nil, nil, ErrGroupNotFound
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// ListByUserID retrieves all groups for a user
func (s *Service) ListByUserID(ctx context.Context, userID int64, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUserID(ctx, userID, perPage, offset)
}

// Update modifies a group's name and description (owner or admin only)
func (s *Service) Update(ctx context.Context, userID, id int64, req *UpdateGroupRequest) (*Group, event.Event, error) {
	if _, err := s.requireRole(ctx, id, userID, MemberRole.CanManageMembers); err != nil {
		return nil, event.Event{}, err
	}

	group, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, event.Event{}, err
	}
	if group == nil {
		return nil, event.Event{}, ErrGroupNotFound
	}

	return group, event.New(event.TypeGroupUpdated, id), nil
}

// Delete removes a group and everything it owns (owner only)
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.requireRole(ctx, id, userID, func(r MemberRole) bool { return r == MemberRoleOwner }); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// AddMember adds a user to a group (owner or admin only). A MEMBER joins the
// active roster immediately, so every equal-split expense is recomputed in
// the same transaction; a PENDING slot changes nothing until accepted.
func (s *Service) AddMember(ctx context.Context, actorID, groupID int64, req *AddMemberRequest) (*MembershipChange, event.Event, error) {
	role := req.Role
	if role == "" {
		role = MemberRolePending
	}
	if role != MemberRoleMember && role != MemberRolePending && role != MemberRoleAdmin {
		return nil, event.Event{}, ErrInvalidRole
	}

	change := &MembershipChange{}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.requireRoleTx(ctx, tx, groupID, actorID, MemberRole.CanManageMembers); err != nil {
			return err
		}

		exists, err := s.users.Exists(ctx, req.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}

		existing, err := s.repo.GetMember(ctx, tx, groupID, req.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrMemberAlreadyExists
		}

		change.Member, err = s.repo.AddMember(ctx, tx, groupID, req.UserID, role)
		if err != nil {
			return err
		}

		if role.IsActive() {
			change.IncompletePercentageExpenses, err = s.reconcile(ctx, tx, groupID)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, event.Event{}, err
	}

	return change, event.New(event.TypeMemberAdded, groupID), nil
}

// AcceptInvitation turns the caller's PENDING slot into an active membership
// and recomputes the group's equal splits in the same transaction
func (s *Service) AcceptInvitation(ctx context.Context, userID, groupID int64) (*MembershipChange, event.Event, error) {
	change := &MembershipChange{}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		g, err := s.repo.LockGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if g == nil {
			return ErrGroupNotFound
		}

		member, err := s.repo.GetMember(ctx, tx, groupID, userID)
		if err != nil {
			return err
		}
		if member == nil {
			return ErrGroupNotFound
		}
		if member.Role != MemberRolePending {
			return ErrNoPendingInvitation
		}

		change.Member, err = s.repo.UpdateMemberRole(ctx, tx, groupID, userID, MemberRoleMember)
		if err != nil {
			return err
		}

		roster, err := s.repo.ActiveMemberIDs(ctx, tx, groupID)
		if err != nil {
			return err
		}
		change.IncompletePercentageExpenses, err = s.reconciler.RecomputeEqualSplits(ctx, tx, groupID, roster)
		return err
	})
	if err != nil {
		return nil, event.Event{}, err
	}

	return change, event.New(event.TypeMemberJoined, groupID), nil
}

// RemoveMember removes a member (owner/admin, or the member leaving on their
// own). The owner can never be removed, which keeps exactly one owner per
// group. Removing an active member recomputes equal splits in the same
// transaction; expenses the removed member paid keep their payer.
func (s *Service) RemoveMember(ctx context.Context, actorID, groupID, targetUserID int64) (*MembershipChange, event.Event, error) {
	change := &MembershipChange{}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.requireRoleTx(ctx, tx, groupID, actorID, func(r MemberRole) bool {
			return r.CanManageMembers() || actorID == targetUserID
		}); err != nil {
			return err
		}

		target, err := s.repo.GetMember(ctx, tx, groupID, targetUserID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrMemberNotFound
		}
		if target.Role == MemberRoleOwner {
			return ErrCannotRemoveOwner
		}

		if err := s.repo.RemoveMember(ctx, tx, groupID, targetUserID); err != nil {
			return err
		}

		if target.Role.IsActive() {
			change.IncompletePercentageExpenses, err = s.reconcile(ctx, tx, groupID)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, event.Event{}, err
	}

	return change, event.New(event.TypeMemberRemoved, groupID), nil
}

// UpdateMemberRole changes a joined member's role between ADMIN and MEMBER
// (owner only). Ownership is not transferable here.
func (s *Service) UpdateMemberRole(ctx context.Context, actorID, groupID, targetUserID int64, role MemberRole) (*GroupMember, event.Event, error) {
	if role != MemberRoleAdmin && role != MemberRoleMember {
		return nil, event.Event{}, ErrInvalidRole
	}

	var member *GroupMember
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.requireRoleTx(ctx, tx, groupID, actorID, func(r MemberRole) bool { return r == MemberRoleOwner }); err != nil {
			return err
		}

		target, err := s.repo.GetMember(ctx, tx, groupID, targetUserID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrMemberNotFound
		}
		if target.Role == MemberRoleOwner {
			return ErrNotAuthorized
		}
		if target.Role == MemberRolePending {
			return ErrMemberStillPending
		}

		member, err = s.repo.UpdateMemberRole(ctx, tx, groupID, targetUserID, role)
		return err
	})
	if err != nil {
		return nil, event.Event{}, err
	}

	return member, event.New(event.TypeGroupUpdated, groupID), nil
}

// reconcile recomputes the group's equal splits against the current roster;
// the caller already holds the group lock via requireRoleTx/LockGroup
func (s *Service) reconcile(ctx context.Context, tx *sql.Tx, groupID int64) ([]int64, error) {
	roster, err := s.repo.ActiveMemberIDs(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	return s.reconciler.RecomputeEqualSplits(ctx, tx, groupID, roster)
}

// requireRole checks the caller's role outside a transaction. Non-members are
// told the group does not exist; members without the role get a permission
// error.
func (s *Service) requireRole(ctx context.Context, groupID, userID int64, allowed func(MemberRole) bool) (*GroupMember, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	member, err := s.repo.GetMember(ctx, s.db, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrGroupNotFound
	}
	if !allowed(member.Role) {
		return nil, ErrNotAuthorized
	}

	return member, nil
}

// requireRoleTx is requireRole inside a transaction; it locks the group row
// so the roster cannot change under the caller
func (s *Service) requireRoleTx(ctx context.Context, tx *sql.Tx, groupID, userID int64, allowed func(MemberRole) bool) (*GroupMember, error) {
	g, err := s.repo.LockGroup(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}

	member, err := s.repo.GetMember(ctx, tx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrGroupNotFound
	}
	if !allowed(member.Role) {
		return nil, ErrNotAuthorized
	}

	return member, nil
}
