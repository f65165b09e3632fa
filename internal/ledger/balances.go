package ledger

import (
	"context"
	"fmt"

	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
	"github.com/mmynk/groupledger/internal/storage"
)

// Adjust applies deltas to the group's balances atomically. The deltas must
// sum to zero and name only members; otherwise nothing is applied.
func (l *Ledger) Adjust(ctx context.Context, groupID string, deltas map[string]money.Amount) error {
	return l.store.InGroupTx(ctx, groupID, func(tx storage.GroupTx) error {
		return l.applyDeltas(ctx, tx, deltas)
	})
}

// Balances returns every member's net balance in membership order.
func (l *Ledger) Balances(ctx context.Context, groupID string) ([]models.MemberBalance, error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return l.store.Balances(ctx, groupID)
}

// MemberBalance returns one member's net balance.
func (l *Ledger) MemberBalance(ctx context.Context, groupID, userID string) (money.Amount, error) {
	balances, err := l.Balances(ctx, groupID)
	if err != nil {
		return 0, err
	}
	for _, b := range balances {
		if b.UserID == userID {
			return b.NetBalance, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", models.ErrNotAMember, userID)
}

// SuggestSettlements proposes transfers that would clear the group's balances.
func (l *Ledger) SuggestSettlements(ctx context.Context, groupID string) ([]calculator.Transfer, error) {
	balances, err := l.Balances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.SuggestSettlements(balances), nil
}
