package models

import "github.com/mmynk/groupledger/internal/money"

// GroupType classifies a group.
type GroupType string

const (
	GroupTypeGeneral GroupType = "general"
	GroupTypeFamily  GroupType = "family"
)

// Valid reports whether t is a known group type.
func (t GroupType) Valid() bool {
	switch t {
	case GroupTypeGeneral, GroupTypeFamily:
		return true
	default:
		return false
	}
}

// Group represents a set of people sharing a ledger.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string

	// Type is general or family.
	Type GroupType

	// CreatedBy is the user ID that created the group.
	CreatedBy string

	// Members is the list of member user IDs in membership order.
	// The creator is always the first member.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// GroupMember is one membership row. Position preserves join order.
type GroupMember struct {
	GroupID  string
	UserID   string
	Position int
	JoinedAt int64
}

// MemberBalance is a member's signed position in a group.
// Positive means the group owes them; negative means they owe the group.
type MemberBalance struct {
	UserID     string
	NetBalance money.Amount
}

// Invite is a self-service join token for a group. Only the digest of the
// token is stored.
type Invite struct {
	TokenDigest string
	GroupID     string
	CreatedBy   string
	CreatedAt   int64
	ExpiresAt   int64
}

// Expired reports whether the invite is no longer usable at the given Unix time.
func (i *Invite) Expired(now int64) bool {
	return i.ExpiresAt != 0 && now >= i.ExpiresAt
}
