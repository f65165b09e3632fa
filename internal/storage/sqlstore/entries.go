package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
)

const entryColumns = `id, group_id, payer_id, amount, description, category, entry_type,
	split_method, created_by, created_at, deleted_at`

// GetEntry retrieves a ledger entry with its shares and deltas.
func (s *Store) GetEntry(ctx context.Context, entryID string) (*models.LedgerEntry, error) {
	return getEntry(ctx, s.conn(), entryID)
}

// ListEntries returns a group's entries, newest first.
func (s *Store) ListEntries(ctx context.Context, groupID string, includeDeleted bool) ([]*models.LedgerEntry, error) {
	c := s.conn()
	query := "SELECT " + entryColumns + " FROM ledger_entries WHERE group_id = ?"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := c.query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	var entries []*models.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		entries = append(entries, entry)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	for _, entry := range entries {
		if err := loadEntryChildren(ctx, c, entry); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{}
	var amount int64
	var entryType, method string
	var deletedAt sql.NullInt64
	err := row.Scan(
		&entry.ID, &entry.GroupID, &entry.PayerID, &amount, &entry.Description, &entry.Category,
		&entryType, &method, &entry.CreatedBy, &entry.CreatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Amount = money.FromMinor(amount)
	entry.Type = models.EntryType(entryType)
	entry.SplitMethod = models.SplitMethod(method)
	entry.DeletedAt = intOrZero(deletedAt)
	return entry, nil
}

func getEntry(ctx context.Context, c conn, entryID string) (*models.LedgerEntry, error) {
	row := c.queryRow(ctx, "SELECT "+entryColumns+" FROM ledger_entries WHERE id = ?", entryID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", entryID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	if err := loadEntryChildren(ctx, c, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func loadEntryChildren(ctx context.Context, c conn, entry *models.LedgerEntry) error {
	shares, err := c.query(ctx,
		"SELECT user_id, amount FROM entry_shares WHERE entry_id = ? ORDER BY position",
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get entry shares: %w", err)
	}
	for shares.Next() {
		var userID string
		var amount int64
		if err := shares.Scan(&userID, &amount); err != nil {
			shares.Close()
			return fmt.Errorf("failed to scan share: %w", err)
		}
		entry.Shares = append(entry.Shares, models.Share{UserID: userID, Amount: money.FromMinor(amount)})
	}
	shares.Close()
	if err := shares.Err(); err != nil {
		return fmt.Errorf("failed to iterate shares: %w", err)
	}

	deltas, err := c.query(ctx,
		"SELECT user_id, amount FROM entry_deltas WHERE entry_id = ? ORDER BY user_id",
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get entry deltas: %w", err)
	}
	defer deltas.Close()
	for deltas.Next() {
		var userID string
		var amount int64
		if err := deltas.Scan(&userID, &amount); err != nil {
			return fmt.Errorf("failed to scan delta: %w", err)
		}
		entry.Deltas = append(entry.Deltas, models.Delta{UserID: userID, Amount: money.FromMinor(amount)})
	}
	if err := deltas.Err(); err != nil {
		return fmt.Errorf("failed to iterate deltas: %w", err)
	}
	return nil
}

func insertEntry(ctx context.Context, c conn, entry *models.LedgerEntry) error {
	_, err := c.exec(ctx,
		`INSERT INTO ledger_entries (id, group_id, payer_id, amount, description, category, entry_type,
		 split_method, created_by, created_at, deleted_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.GroupID, entry.PayerID, entry.Amount.MinorUnits(), entry.Description, entry.Category,
		string(entry.Type), string(entry.SplitMethod), entry.CreatedBy, entry.CreatedAt, nullInt(entry.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	for i, share := range entry.Shares {
		_, err := c.exec(ctx,
			"INSERT INTO entry_shares (entry_id, user_id, position, amount) VALUES (?, ?, ?, ?)",
			entry.ID, share.UserID, i, share.Amount.MinorUnits(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}

	for _, delta := range entry.Deltas {
		_, err := c.exec(ctx,
			"INSERT INTO entry_deltas (entry_id, user_id, amount) VALUES (?, ?, ?)",
			entry.ID, delta.UserID, delta.Amount.MinorUnits(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert delta: %w", err)
		}
	}
	return nil
}
