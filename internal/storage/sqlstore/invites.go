package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/groupledger/internal/models"
)

// CreateInvite stores an invite keyed by the digest of its token.
func (s *Store) CreateInvite(ctx context.Context, invite *models.Invite) error {
	_, err := s.conn().exec(ctx,
		"INSERT INTO group_invites (token_digest, group_id, created_by, created_at, expires_at) VALUES (?, ?, ?, ?, ?)",
		invite.TokenDigest, invite.GroupID, invite.CreatedBy, invite.CreatedAt, invite.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

// GetInvite resolves an invite by token digest.
func (s *Store) GetInvite(ctx context.Context, digest string) (*models.Invite, error) {
	invite := &models.Invite{}
	err := s.conn().queryRow(ctx,
		"SELECT token_digest, group_id, created_by, created_at, expires_at FROM group_invites WHERE token_digest = ?",
		digest,
	).Scan(&invite.TokenDigest, &invite.GroupID, &invite.CreatedBy, &invite.CreatedAt, &invite.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invite: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}
