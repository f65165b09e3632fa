package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
	"github.com/mmynk/groupledger/internal/storage"
)

// SettleParams describes a direct payment between two members.
type SettleParams struct {
	GroupID    string
	FromUserID string
	ToUserID   string
	Amount     money.Amount
	Note       string
}

// Settle records that FromUserID paid ToUserID. The payer's balance rises by
// the amount and the payee's falls by it; over-payment is allowed and simply
// flips the sign of the balances.
func (l *Ledger) Settle(ctx context.Context, actorID string, p SettleParams) (*models.Settlement, error) {
	if p.FromUserID == "" || p.ToUserID == "" {
		return nil, fmt.Errorf("%w: both parties are required", models.ErrInvalidSettlement)
	}
	if p.FromUserID == p.ToUserID {
		return nil, fmt.Errorf("%w: cannot settle with yourself", models.ErrInvalidSettlement)
	}
	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", models.ErrInvalidSettlement)
	}

	var entry *models.LedgerEntry
	err := l.store.InGroupTx(ctx, p.GroupID, func(tx storage.GroupTx) error {
		if err := requireMember(ctx, tx, actorID); err != nil {
			return err
		}
		for _, userID := range []string{p.FromUserID, p.ToUserID} {
			if err := requireMember(ctx, tx, userID); err != nil {
				return fmt.Errorf("%w: %w", models.ErrInvalidSettlement, err)
			}
		}

		deltas := map[string]money.Amount{
			p.FromUserID: p.Amount,
			p.ToUserID:   p.Amount.Neg(),
		}
		if err := l.applyDeltas(ctx, tx, deltas); err != nil {
			return err
		}

		entry = &models.LedgerEntry{
			ID:          uuid.New().String(),
			GroupID:     p.GroupID,
			PayerID:     p.FromUserID,
			Amount:      p.Amount,
			Description: p.Note,
			Type:        models.EntryTypeSettlement,
			CreatedBy:   actorID,
			CreatedAt:   l.now().Unix(),
			Shares:      []models.Share{{UserID: p.ToUserID, Amount: p.Amount}},
			Deltas:      deltaRows(deltas),
		}
		return tx.InsertEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	l.metrics.EntryCreated(string(models.EntryTypeSettlement))
	l.metrics.SettlementRecorded()
	slog.Info("Settlement recorded",
		"group_id", p.GroupID,
		"entry_id", entry.ID,
		"from", p.FromUserID,
		"to", p.ToUserID,
		"amount", p.Amount,
	)
	return models.SettlementFromEntry(entry)
}

// ListSettlements returns the group's live settlements, newest first.
func (l *Ledger) ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	entries, err := l.ListEntries(ctx, groupID, false)
	if err != nil {
		return nil, err
	}

	var settlements []*models.Settlement
	for _, e := range entries {
		if e.Type != models.EntryTypeSettlement {
			continue
		}
		s, err := models.SettlementFromEntry(e)
		if err != nil {
			return nil, errors.Join(models.ErrBalanceConsistency, err)
		}
		settlements = append(settlements, s)
	}
	return settlements, nil
}
