package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
)

// CreateGroup persists a group, its memberships and zero balances in one transaction.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	// Generate ID if not set
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(c conn) error {
		_, err := c.exec(ctx,
			"INSERT INTO groups (id, name, group_type, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
			group.ID, group.Name, string(group.Type), group.CreatedBy, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		for _, member := range group.Members {
			if _, err := insertMember(ctx, c, group.ID, member, group.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetGroup retrieves a group by ID, including members in membership order.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return getGroup(ctx, s.conn(), groupID)
}

func getGroup(ctx context.Context, c conn, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var groupType string
	err := c.queryRow(ctx,
		"SELECT id, name, group_type, created_by, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &groupType, &group.CreatedBy, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.Type = models.GroupType(groupType)

	members, err := listMembers(ctx, c, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return group, nil
}

func listMembers(ctx context.Context, c conn, groupID string) ([]string, error) {
	rows, err := c.query(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY position",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// ListGroupsForUser retrieves every group the user belongs to, newest first.
func (s *Store) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	c := s.conn()
	rows, err := c.query(ctx,
		`SELECT g.id FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at DESC, g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := getGroup(ctx, c, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// Balances returns every member's net balance in membership order.
func (s *Store) Balances(ctx context.Context, groupID string) ([]models.MemberBalance, error) {
	rows, err := s.conn().query(ctx,
		`SELECT b.user_id, b.net_balance FROM group_balances b
		 JOIN group_members m ON m.group_id = b.group_id AND m.user_id = b.user_id
		 WHERE b.group_id = ?
		 ORDER BY m.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}
	defer rows.Close()

	var balances []models.MemberBalance
	for rows.Next() {
		var userID string
		var net int64
		if err := rows.Scan(&userID, &net); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, models.MemberBalance{UserID: userID, NetBalance: money.FromMinor(net)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}
	return balances, nil
}

// insertMember adds a membership at the next position together with its zero
// balance row. Returns false if the user is already a member.
func insertMember(ctx context.Context, c conn, groupID, userID string, joinedAt int64) (bool, error) {
	var position int
	err := c.queryRow(ctx,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM group_members WHERE group_id = ?",
		groupID,
	).Scan(&position)
	if err != nil {
		return false, fmt.Errorf("failed to get member position: %w", err)
	}

	res, err := c.exec(ctx,
		`INSERT INTO group_members (group_id, user_id, position, joined_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, userID, position, joinedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check member insert: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	_, err = c.exec(ctx,
		"INSERT INTO group_balances (group_id, user_id, net_balance) VALUES (?, ?, 0)",
		groupID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert balance: %w", err)
	}
	return true, nil
}

// groupTx implements storage.GroupTx for one locked group.
type groupTx struct {
	c       conn
	groupID string
}

func (t *groupTx) Members(ctx context.Context) ([]string, error) {
	return listMembers(ctx, t.c, t.groupID)
}

func (t *groupTx) IsMember(ctx context.Context, userID string) (bool, error) {
	var exists int
	err := t.c.queryRow(ctx,
		"SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?",
		t.groupID, userID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

func (t *groupTx) AddMember(ctx context.Context, userID string, joinedAt int64) (bool, error) {
	return insertMember(ctx, t.c, t.groupID, userID, joinedAt)
}

func (t *groupTx) RemoveMember(ctx context.Context, userID string) error {
	if _, err := t.c.exec(ctx,
		"DELETE FROM group_balances WHERE group_id = ? AND user_id = ?",
		t.groupID, userID,
	); err != nil {
		return fmt.Errorf("failed to delete balance: %w", err)
	}

	res, err := t.c.exec(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		t.groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", userID, models.ErrNotAMember)
	}
	return nil
}

func (t *groupTx) Balance(ctx context.Context, userID string) (money.Amount, error) {
	var net int64
	err := t.c.queryRow(ctx,
		"SELECT net_balance FROM group_balances WHERE group_id = ? AND user_id = ?",
		t.groupID, userID,
	).Scan(&net)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", userID, models.ErrNotAMember)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return money.FromMinor(net), nil
}

func (t *groupTx) AddToBalance(ctx context.Context, userID string, delta money.Amount) error {
	res, err := t.c.exec(ctx,
		"UPDATE group_balances SET net_balance = net_balance + ? WHERE group_id = ? AND user_id = ?",
		delta.MinorUnits(), t.groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check balance update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", userID, models.ErrNotAMember)
	}
	return nil
}

func (t *groupTx) InsertEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return insertEntry(ctx, t.c, entry)
}

func (t *groupTx) GetEntry(ctx context.Context, entryID string) (*models.LedgerEntry, error) {
	entry, err := getEntry(ctx, t.c, entryID)
	if err != nil {
		return nil, err
	}
	if entry.GroupID != t.groupID {
		return nil, fmt.Errorf("entry %s in group %s: %w", entryID, t.groupID, models.ErrNotFound)
	}
	return entry, nil
}

func (t *groupTx) MarkEntryDeleted(ctx context.Context, entryID string, at int64) error {
	res, err := t.c.exec(ctx,
		"UPDATE ledger_entries SET deleted_at = ? WHERE id = ? AND group_id = ? AND deleted_at IS NULL",
		at, entryID, t.groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check entry delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("entry %s: %w", entryID, models.ErrNotFound)
	}
	return nil
}
