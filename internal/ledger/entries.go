package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
	"github.com/mmynk/groupledger/internal/storage"
)

// CreateEntryParams describes an expense or income to record.
type CreateEntryParams struct {
	GroupID     string
	PayerID     string
	Amount      money.Amount
	Description string
	Category    string

	// Type is expense or income; settlements go through Settle.
	Type models.EntryType

	// SplitMethod defaults to equal.
	SplitMethod models.SplitMethod

	// Participants defaults to every member, in membership order.
	Participants []string

	// Inputs carries percentages or exact amounts keyed by participant.
	Inputs map[string]decimal.Decimal
}

// ExpenseDeltas returns the balance changes for an expense of total paid by
// payerID and divided into shares. The payer is credited the whole total and
// each participant debited their share, so a participating payer nets
// total minus their own share.
func ExpenseDeltas(payerID string, total money.Amount, shares []models.Share) map[string]money.Amount {
	deltas := map[string]money.Amount{payerID: total}
	for _, s := range shares {
		deltas[s.UserID] -= s.Amount
	}
	return deltas
}

// CreateEntry records an expense or income and applies its balance changes.
func (l *Ledger) CreateEntry(ctx context.Context, actorID string, p CreateEntryParams) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := l.store.InGroupTx(ctx, p.GroupID, func(tx storage.GroupTx) error {
		var err error
		entry, err = l.createEntryTx(ctx, tx, actorID, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.metrics.EntryCreated(string(entry.Type))
	slog.Info("Ledger entry created",
		"group_id", entry.GroupID,
		"entry_id", entry.ID,
		"type", entry.Type,
		"amount", entry.Amount,
		"user_id", actorID,
	)
	return entry, nil
}

func (l *Ledger) createEntryTx(ctx context.Context, tx storage.GroupTx, actorID string, p CreateEntryParams) (*models.LedgerEntry, error) {
	if p.Type != models.EntryTypeExpense && p.Type != models.EntryTypeIncome {
		return nil, fmt.Errorf("%w: entry type must be expense or income, got %q", models.ErrInvalidArgument, p.Type)
	}
	method := p.SplitMethod
	if method == "" {
		method = models.SplitEqual
	}

	if err := requireMember(ctx, tx, actorID); err != nil {
		return nil, err
	}
	if err := requireMember(ctx, tx, p.PayerID); err != nil {
		return nil, err
	}

	participants := p.Participants
	if len(participants) == 0 {
		members, err := tx.Members(ctx)
		if err != nil {
			return nil, err
		}
		participants = members
	}
	for _, userID := range participants {
		if err := requireMember(ctx, tx, userID); err != nil {
			return nil, err
		}
	}

	shares, err := calculator.ComputeShares(p.Amount, participants, method, p.Inputs)
	if err != nil {
		return nil, err
	}

	deltas := ExpenseDeltas(p.PayerID, p.Amount, shares)
	if p.Type == models.EntryTypeIncome {
		deltas = negate(deltas)
	}
	if err := l.applyDeltas(ctx, tx, deltas); err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		ID:          uuid.New().String(),
		GroupID:     p.GroupID,
		PayerID:     p.PayerID,
		Amount:      p.Amount,
		Description: p.Description,
		Category:    p.Category,
		Type:        p.Type,
		SplitMethod: method,
		CreatedBy:   actorID,
		CreatedAt:   l.now().Unix(),
		Shares:      shares,
		Deltas:      deltaRows(deltas),
	}
	if err := tx.InsertEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntry reverses an entry by applying the negation of the deltas it
// stored, then marks it deleted. Only the entry's creator or payer may
// delete it.
func (l *Ledger) DeleteEntry(ctx context.Context, actorID, entryID string) error {
	entry, err := l.store.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}

	err = l.store.InGroupTx(ctx, entry.GroupID, func(tx storage.GroupTx) error {
		_, err := l.deleteEntryTx(ctx, tx, actorID, entryID)
		return err
	})
	if err != nil {
		return err
	}

	l.metrics.EntryDeleted()
	slog.Info("Ledger entry deleted", "group_id", entry.GroupID, "entry_id", entryID, "user_id", actorID)
	return nil
}

func (l *Ledger) deleteEntryTx(ctx context.Context, tx storage.GroupTx, actorID, entryID string) (*models.LedgerEntry, error) {
	entry, err := tx.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.IsDeleted() {
		return nil, fmt.Errorf("entry %s already deleted: %w", entryID, models.ErrNotFound)
	}
	if err := requireMember(ctx, tx, actorID); err != nil {
		return nil, err
	}
	if actorID != entry.CreatedBy && actorID != entry.PayerID {
		return nil, fmt.Errorf("%w: only the creator or payer may delete entry %s", models.ErrForbidden, entryID)
	}

	if err := l.applyDeltas(ctx, tx, negate(entry.DeltaMap())); err != nil {
		return nil, err
	}
	if err := tx.MarkEntryDeleted(ctx, entryID, l.now().Unix()); err != nil {
		return nil, err
	}
	return entry, nil
}

// EditEntry replaces an expense or income with a new version. The old entry
// is reversed and the new one applied in a single group transaction.
func (l *Ledger) EditEntry(ctx context.Context, actorID, entryID string, p CreateEntryParams) (*models.LedgerEntry, error) {
	old, err := l.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if old.Type == models.EntryTypeSettlement {
		return nil, fmt.Errorf("%w: settlements cannot be edited; delete and settle again", models.ErrInvalidArgument)
	}
	if p.GroupID == "" {
		p.GroupID = old.GroupID
	}
	if p.GroupID != old.GroupID {
		return nil, fmt.Errorf("%w: an entry cannot move between groups", models.ErrInvalidArgument)
	}
	if p.Type == "" {
		p.Type = old.Type
	}
	if p.PayerID == "" {
		p.PayerID = old.PayerID
	}

	var entry *models.LedgerEntry
	err = l.store.InGroupTx(ctx, old.GroupID, func(tx storage.GroupTx) error {
		if _, err := l.deleteEntryTx(ctx, tx, actorID, entryID); err != nil {
			return err
		}
		var err error
		entry, err = l.createEntryTx(ctx, tx, actorID, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.metrics.EntryDeleted()
	l.metrics.EntryCreated(string(entry.Type))
	slog.Info("Ledger entry edited",
		"group_id", entry.GroupID,
		"entry_id", entry.ID,
		"replaces", entryID,
		"user_id", actorID,
	)
	return entry, nil
}

// GetEntry returns an entry with its shares and deltas.
func (l *Ledger) GetEntry(ctx context.Context, entryID string) (*models.LedgerEntry, error) {
	return l.store.GetEntry(ctx, entryID)
}

// ListEntries returns the group's entries, newest first.
func (l *Ledger) ListEntries(ctx context.Context, groupID string, includeDeleted bool) ([]*models.LedgerEntry, error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return l.store.ListEntries(ctx, groupID, includeDeleted)
}
