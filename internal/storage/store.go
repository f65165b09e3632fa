// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the ledger layer.
//
// Reads outside a transaction observe only committed state. Every
// balance-affecting write goes through InGroupTx, every split-request
// participant update through InSplitRequestTx.
type Store interface {
	// CreateGroup persists a group together with one membership and one zero
	// balance row per member, atomically. group.ID and CreatedAt are filled in
	// when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members in membership order.
	// Returns models.ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns every group the user belongs to, newest first.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// Balances returns the group's balances in membership order.
	Balances(ctx context.Context, groupID string) ([]models.MemberBalance, error)

	// GetEntry retrieves a ledger entry with its shares and deltas.
	GetEntry(ctx context.Context, entryID string) (*models.LedgerEntry, error)

	// ListEntries returns a group's entries, newest first.
	ListEntries(ctx context.Context, groupID string, includeDeleted bool) ([]*models.LedgerEntry, error)

	// CreateInvite stores an invite keyed by its token digest.
	CreateInvite(ctx context.Context, invite *models.Invite) error

	// GetInvite resolves a token digest. Returns models.ErrNotFound if unknown.
	GetInvite(ctx context.Context, digest string) (*models.Invite, error)

	// CreateSplitRequest persists a request and all of its participants atomically.
	CreateSplitRequest(ctx context.Context, req *models.SplitRequest) error

	// GetSplitRequest retrieves a request with its participants.
	GetSplitRequest(ctx context.Context, requestID string) (*models.SplitRequest, error)

	// ListSplitRequestsForUser returns requests the user created or participates in.
	ListSplitRequestsForUser(ctx context.Context, userID string) ([]*models.SplitRequest, error)

	// ListOpenSplitRequestIDs returns the IDs of every request that is not cancelled.
	ListOpenSplitRequestIDs(ctx context.Context) ([]string, error)

	// DueReminders returns pending participants of non-terminal requests whose
	// last reminder is missing or at or before cutoff (Unix seconds).
	DueReminders(ctx context.Context, cutoff int64) ([]models.ReminderTarget, error)

	// MarkReminded stamps a participant's reminder_sent_at.
	MarkReminded(ctx context.Context, requestID, userID string, at int64) error

	// InGroupTx runs fn in a transaction that holds the group's write lock.
	// Returns models.ErrNotFound if the group does not exist. The transaction
	// commits only if fn returns nil.
	InGroupTx(ctx context.Context, groupID string, fn func(tx GroupTx) error) error

	// InSplitRequestTx runs fn in a transaction that holds the request's write lock.
	// Returns models.ErrNotFound if the request does not exist.
	InSplitRequestTx(ctx context.Context, requestID string, fn func(tx SplitRequestTx) error) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// GroupTx is the set of writes available while a group is locked.
type GroupTx interface {
	// Members returns member IDs in membership order.
	Members(ctx context.Context) ([]string, error)

	// IsMember reports whether userID belongs to the locked group.
	IsMember(ctx context.Context, userID string) (bool, error)

	// AddMember inserts a membership and its zero balance row.
	// Returns false if the user was already a member.
	AddMember(ctx context.Context, userID string, joinedAt int64) (bool, error)

	// RemoveMember deletes a membership and its balance row.
	RemoveMember(ctx context.Context, userID string) error

	// Balance returns a member's current balance.
	Balance(ctx context.Context, userID string) (money.Amount, error)

	// AddToBalance adds delta to a member's balance.
	AddToBalance(ctx context.Context, userID string, delta money.Amount) error

	// InsertEntry persists an entry with its shares and deltas.
	InsertEntry(ctx context.Context, entry *models.LedgerEntry) error

	// GetEntry reads an entry of the locked group.
	GetEntry(ctx context.Context, entryID string) (*models.LedgerEntry, error)

	// MarkEntryDeleted stamps deleted_at on a live entry.
	MarkEntryDeleted(ctx context.Context, entryID string, at int64) error
}

// SplitRequestTx is the set of writes available while a split request is locked.
type SplitRequestTx interface {
	// SplitRequest reads the locked request with its participants.
	SplitRequest(ctx context.Context) (*models.SplitRequest, error)

	// UpdateParticipant writes a participant's payment fields.
	UpdateParticipant(ctx context.Context, p *models.SplitParticipant) error

	// UpdateStatus writes the request's aggregate status.
	UpdateStatus(ctx context.Context, status models.SplitRequestStatus, updatedAt int64) error
}
