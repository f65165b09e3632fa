package models

import (
	"fmt"

	"github.com/mmynk/groupledger/internal/money"
)

// EntryType discriminates ledger entries.
type EntryType string

const (
	EntryTypeExpense    EntryType = "expense"
	EntryTypeIncome     EntryType = "income"
	EntryTypeSettlement EntryType = "settlement"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeExpense, EntryTypeIncome, EntryTypeSettlement:
		return true
	default:
		return false
	}
}

// SplitMethod is the strategy used to divide an amount among participants.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitPercentage SplitMethod = "percentage"
	SplitExact      SplitMethod = "exact"
)

// Valid reports whether m is a known split method.
func (m SplitMethod) Valid() bool {
	switch m {
	case SplitEqual, SplitPercentage, SplitExact:
		return true
	default:
		return false
	}
}

// Share is one participant's computed portion of an entry or split request.
type Share struct {
	UserID string
	Amount money.Amount
}

// Delta is the signed balance change an entry applied to one member.
// Deltas are stored verbatim so that deletion can apply their exact inverse.
type Delta struct {
	UserID string
	Amount money.Amount
}

// LedgerEntry is the immutable record of a group expense, income or settlement.
type LedgerEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// GroupID is the group whose balances the entry changed.
	GroupID string

	// PayerID is the member who paid (expense), received (income) or
	// settled (settlement).
	PayerID string

	// Amount is the total amount of the entry.
	Amount money.Amount

	Description string
	Category    string

	// Type discriminates expense, income and settlement entries.
	Type EntryType

	// SplitMethod is empty for settlements.
	SplitMethod SplitMethod

	// CreatedBy is the authenticated user who recorded the entry.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the entry was recorded.
	CreatedAt int64

	// DeletedAt is the Unix timestamp of the soft delete, zero while live.
	DeletedAt int64

	// Shares are the per-participant portions in participant order.
	Shares []Share

	// Deltas are the balance changes applied when the entry was created.
	Deltas []Delta
}

// IsDeleted reports whether the entry was soft-deleted.
func (e *LedgerEntry) IsDeleted() bool {
	return e.DeletedAt != 0
}

// DeltaMap returns the entry's deltas keyed by user.
func (e *LedgerEntry) DeltaMap() map[string]money.Amount {
	m := make(map[string]money.Amount, len(e.Deltas))
	for _, d := range e.Deltas {
		m[d.UserID] += d.Amount
	}
	return m
}

// Settlement is a direct payment from one member to another inside a group.
// It is persisted as a LedgerEntry of type settlement.
type Settlement struct {
	EntryID    string
	GroupID    string
	FromUserID string
	ToUserID   string
	Amount     money.Amount
	Note       string
	CreatedBy  string
	CreatedAt  int64
}

// SettlementFromEntry builds the two-party view of a settlement entry.
func SettlementFromEntry(e *LedgerEntry) (*Settlement, error) {
	if e.Type != EntryTypeSettlement {
		return nil, fmt.Errorf("entry %s is a %s, not a settlement", e.ID, e.Type)
	}
	if len(e.Shares) != 1 {
		return nil, fmt.Errorf("settlement %s has %d payees", e.ID, len(e.Shares))
	}
	return &Settlement{
		EntryID:    e.ID,
		GroupID:    e.GroupID,
		FromUserID: e.PayerID,
		ToUserID:   e.Shares[0].UserID,
		Amount:     e.Amount,
		Note:       e.Description,
		CreatedBy:  e.CreatedBy,
		CreatedAt:  e.CreatedAt,
	}, nil
}
