package event

// Type identifies what happened to a group
type Type string

const (
	TypeExpenseCreated Type = "expense_created"
	TypeExpenseUpdated Type = "expense_updated"
	TypeExpenseDeleted Type = "expense_deleted"
	TypeMemberAdded    Type = "member_added"
	TypeMemberJoined   Type = "member_joined"
	TypeMemberRemoved  Type = "member_removed"
	TypeGroupUpdated   Type = "group_updated"
)

// Event is a domain event describing a committed mutation to a group. Core
// services return events to their callers after the transaction commits; the
// caller decides how to broadcast them so connected clients refetch.
type Event struct {
	Type    Type  `json:"type"`
	GroupID int64 `json:"group_id"`
}

// New builds an event for the given group
func New(t Type, groupID int64) Event {
	return Event{Type: t, GroupID: groupID}
}
