package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/groupledger/internal/auth"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
)

// DefaultInviteTTL applies when CreateInvite is called without a lifetime.
const DefaultInviteTTL = 7 * 24 * time.Hour

// CreateGroup creates a group whose first member is the creator. Every
// member starts with a zero balance.
func (l *Ledger) CreateGroup(ctx context.Context, creatorID, name string, groupType models.GroupType, members []string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", models.ErrInvalidArgument)
	}
	if creatorID == "" {
		return nil, fmt.Errorf("%w: creator is required", models.ErrInvalidArgument)
	}
	if groupType == "" {
		groupType = models.GroupTypeGeneral
	}
	if !groupType.Valid() {
		return nil, fmt.Errorf("%w: unknown group type %q", models.ErrInvalidArgument, groupType)
	}

	ordered := []string{creatorID}
	seen := map[string]bool{creatorID: true}
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		ordered = append(ordered, m)
	}

	group := &models.Group{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      groupType,
		CreatedBy: creatorID,
		Members:   ordered,
		CreatedAt: l.now().Unix(),
	}
	if err := l.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	slog.Info("Group created", "group_id", group.ID, "user_id", creatorID, "members", len(ordered))
	return group, nil
}

// GetGroup returns a group with its members in membership order.
func (l *Ledger) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return l.store.GetGroup(ctx, groupID)
}

// ListGroupsForUser returns the groups userID belongs to.
func (l *Ledger) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return l.store.ListGroupsForUser(ctx, userID)
}

// RequireMember returns the group if userID belongs to it.
func (l *Ledger) RequireMember(ctx context.Context, groupID, userID string) (*models.Group, error) {
	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, fmt.Errorf("%w: %s in group %s", models.ErrNotAMember, userID, groupID)
	}
	return group, nil
}

// AddMember adds userID to the group on behalf of actorID, who must already
// be a member. Adding an existing member is a no-op and returns false.
func (l *Ledger) AddMember(ctx context.Context, actorID, groupID, userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, fmt.Errorf("%w: user id is required", models.ErrInvalidArgument)
	}

	var added bool
	err := l.store.InGroupTx(ctx, groupID, func(tx storage.GroupTx) error {
		if err := requireMember(ctx, tx, actorID); err != nil {
			return err
		}
		var err error
		added, err = tx.AddMember(ctx, userID, l.now().Unix())
		return err
	})
	if err != nil {
		return false, err
	}

	if added {
		slog.Info("Member added", "group_id", groupID, "user_id", userID, "actor", actorID)
	}
	return added, nil
}

// RemoveMember removes userID from the group. Members may remove themselves;
// the group creator may remove anyone. The member's balance must be zero.
func (l *Ledger) RemoveMember(ctx context.Context, actorID, groupID, userID string) error {
	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if actorID != userID && actorID != group.CreatedBy {
		return fmt.Errorf("%w: only the member or the group creator may remove a member", models.ErrForbidden)
	}

	err = l.store.InGroupTx(ctx, groupID, func(tx storage.GroupTx) error {
		if err := requireMember(ctx, tx, actorID); err != nil {
			return err
		}
		balance, err := tx.Balance(ctx, userID)
		if err != nil {
			return err
		}
		if balance != 0 {
			return fmt.Errorf("%w: %s has an outstanding balance of %s", models.ErrBalanceConsistency, userID, balance)
		}
		return tx.RemoveMember(ctx, userID)
	})
	if err != nil {
		return err
	}

	slog.Info("Member removed", "group_id", groupID, "user_id", userID, "actor", actorID)
	return nil
}

// CreateInvite issues an invite token for the group. Only the token's digest
// is stored, so the returned token cannot be recovered later.
func (l *Ledger) CreateInvite(ctx context.Context, actorID, groupID string, ttl time.Duration) (string, *models.Invite, error) {
	if _, err := l.RequireMember(ctx, groupID, actorID); err != nil {
		return "", nil, err
	}
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}

	token, digest := auth.NewInviteToken()
	now := l.now()
	invite := &models.Invite{
		TokenDigest: digest,
		GroupID:     groupID,
		CreatedBy:   actorID,
		CreatedAt:   now.Unix(),
		ExpiresAt:   now.Add(ttl).Unix(),
	}
	if err := l.store.CreateInvite(ctx, invite); err != nil {
		return "", nil, fmt.Errorf("failed to create invite: %w", err)
	}
	return token, invite, nil
}

// JoinByInvite adds userID to the group the token was issued for.
func (l *Ledger) JoinByInvite(ctx context.Context, userID, token string) (*models.Group, error) {
	if userID == "" || token == "" {
		return nil, fmt.Errorf("%w: user and token are required", models.ErrInvalidArgument)
	}

	invite, err := l.store.GetInvite(ctx, auth.InviteDigest(token))
	if err != nil {
		return nil, err
	}
	now := l.now().Unix()
	if invite.Expired(now) {
		return nil, fmt.Errorf("invite expired: %w", models.ErrNotFound)
	}

	var added bool
	err = l.store.InGroupTx(ctx, invite.GroupID, func(tx storage.GroupTx) error {
		var err error
		added, err = tx.AddMember(ctx, userID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	if added {
		slog.Info("Member joined by invite", "group_id", invite.GroupID, "user_id", userID)
	}
	return l.store.GetGroup(ctx, invite.GroupID)
}
