package models

import "github.com/mmynk/groupledger/internal/money"

// SplitRequestStatus is the aggregate payment state of a split request.
type SplitRequestStatus string

const (
	SplitRequestPending       SplitRequestStatus = "pending"
	SplitRequestPartiallyPaid SplitRequestStatus = "partially_paid"
	SplitRequestCompleted     SplitRequestStatus = "completed"
	SplitRequestCancelled     SplitRequestStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s SplitRequestStatus) Valid() bool {
	switch s {
	case SplitRequestPending, SplitRequestPartiallyPaid, SplitRequestCompleted, SplitRequestCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition may leave s.
func (s SplitRequestStatus) IsTerminal() bool {
	switch s {
	case SplitRequestCompleted, SplitRequestCancelled:
		return true
	case SplitRequestPending, SplitRequestPartiallyPaid:
		return false
	default:
		return false
	}
}

// ParticipantStatus is the payment state of one split participant.
type ParticipantStatus string

const (
	ParticipantPending ParticipantStatus = "pending"
	ParticipantPaid    ParticipantStatus = "paid"
)

// SplitRequest is a bill awaiting collection from each named participant.
// It is independent of group balances.
type SplitRequest struct {
	// ID is the unique identifier for the request (UUID format).
	ID string

	// RequesterID is the user collecting the money.
	RequesterID string

	// GroupID is optional; when set all participants must be group members.
	GroupID string

	Description string

	// Amount is the total being collected.
	Amount money.Amount

	SplitMethod SplitMethod
	Status      SplitRequestStatus

	CreatedAt int64
	UpdatedAt int64

	// Participants are in the order they were named at creation.
	Participants []SplitParticipant
}

// Participant returns the participant row for userID, if any.
func (r *SplitRequest) Participant(userID string) (*SplitParticipant, bool) {
	for i := range r.Participants {
		if r.Participants[i].UserID == userID {
			return &r.Participants[i], true
		}
	}
	return nil, false
}

// PaidCount returns how many participants have paid.
func (r *SplitRequest) PaidCount() int {
	n := 0
	for _, p := range r.Participants {
		if p.Status == ParticipantPaid {
			n++
		}
	}
	return n
}

// SplitParticipant tracks one participant's share of a split request.
type SplitParticipant struct {
	SplitRequestID string
	UserID         string
	AmountOwed     money.Amount

	// AmountPaid equals AmountOwed once paid; a single payment settles the
	// full share.
	AmountPaid money.Amount

	Status ParticipantStatus

	// PaidAt is the Unix timestamp of the payment, zero while pending.
	PaidAt int64

	// ReminderSentAt is the Unix timestamp of the last reminder, zero if never.
	ReminderSentAt int64
}

// ReminderTarget is a pending participant due for a payment reminder.
type ReminderTarget struct {
	SplitRequestID string
	RequesterID    string
	GroupID        string
	Description    string
	UserID         string
	AmountOwed     money.Amount
	ReminderSentAt int64
}
