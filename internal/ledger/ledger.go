// Package ledger maintains group memberships, per-member net balances and the
// immutable entries that move them.
//
// A positive balance means the group owes the member; a negative balance
// means the member owes the group. Every balance change goes through
// applyDeltas inside a group transaction, so the balances of a group always
// sum to zero at every committed state.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mmynk/groupledger/internal/metrics"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
	"github.com/mmynk/groupledger/internal/storage"
)

// Ledger is the group expense ledger and settlement engine.
type Ledger struct {
	store   storage.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithMetrics records ledger activity in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// New creates a Ledger over store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// applyDeltas adds each delta to its member's balance. It refuses, before
// writing anything, a set that does not sum to zero or that names a
// non-member.
func (l *Ledger) applyDeltas(ctx context.Context, tx storage.GroupTx, deltas map[string]money.Amount) error {
	users := make([]string, 0, len(deltas))
	for userID := range deltas {
		users = append(users, userID)
	}
	sort.Strings(users)

	var sum money.Amount
	for _, userID := range users {
		var err error
		if sum, err = sum.Add(deltas[userID]); err != nil {
			l.metrics.BalanceRejected("overflow")
			return fmt.Errorf("%w: %v", models.ErrBalanceConsistency, err)
		}
	}
	if sum != 0 {
		l.metrics.BalanceRejected("nonzero_sum")
		return fmt.Errorf("%w: deltas sum to %s", models.ErrBalanceConsistency, sum)
	}

	for _, userID := range users {
		ok, err := tx.IsMember(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			l.metrics.BalanceRejected("not_member")
			return fmt.Errorf("%w: %s", models.ErrNotAMember, userID)
		}
	}

	for _, userID := range users {
		if deltas[userID] == 0 {
			continue
		}
		current, err := tx.Balance(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := current.Add(deltas[userID]); err != nil {
			l.metrics.BalanceRejected("overflow")
			return fmt.Errorf("%w: balance of %s: %v", models.ErrBalanceConsistency, userID, err)
		}
	}

	for _, userID := range users {
		if deltas[userID] == 0 {
			continue
		}
		if err := tx.AddToBalance(ctx, userID, deltas[userID]); err != nil {
			return err
		}
	}
	return nil
}

func requireMember(ctx context.Context, tx storage.GroupTx, userID string) error {
	ok, err := tx.IsMember(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrNotAMember, userID)
	}
	return nil
}

// deltaRows converts a delta map into sorted rows, dropping zeros.
func deltaRows(deltas map[string]money.Amount) []models.Delta {
	rows := make([]models.Delta, 0, len(deltas))
	for userID, amount := range deltas {
		if amount != 0 {
			rows = append(rows, models.Delta{UserID: userID, Amount: amount})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UserID < rows[j].UserID })
	return rows
}

func negate(deltas map[string]money.Amount) map[string]money.Amount {
	out := make(map[string]money.Amount, len(deltas))
	for userID, amount := range deltas {
		out[userID] = amount.Neg()
	}
	return out
}
