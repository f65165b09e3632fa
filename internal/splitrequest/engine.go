// Package splitrequest tracks ad-hoc bills that each named participant pays
// back independently of any group balance.
package splitrequest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/metrics"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
	"github.com/mmynk/groupledger/internal/storage"
)

// DefaultReminderWindow is how long a pending participant waits between reminders.
const DefaultReminderWindow = 72 * time.Hour

// Engine drives the split request state machine.
type Engine struct {
	store   storage.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithMetrics records transitions in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates an Engine over store.
func New(store storage.Store, opts ...Option) *Engine {
	e := &Engine{store: store, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateParams describes a new split request.
type CreateParams struct {
	// GroupID is optional; when set every participant must be a member.
	GroupID      string
	Description  string
	Amount       money.Amount
	SplitMethod  models.SplitMethod
	Participants []string
	Inputs       map[string]decimal.Decimal
}

// NextStatus derives a request's status from its participants. Terminal
// statuses never change.
func NextStatus(current models.SplitRequestStatus, participants []models.SplitParticipant) models.SplitRequestStatus {
	if current.IsTerminal() {
		return current
	}
	paid := 0
	for _, p := range participants {
		if p.Status == models.ParticipantPaid {
			paid++
		}
	}
	switch {
	case len(participants) > 0 && paid == len(participants):
		return models.SplitRequestCompleted
	case paid > 0:
		return models.SplitRequestPartiallyPaid
	default:
		return models.SplitRequestPending
	}
}

// Create records a split request with one pending participant per share.
func (e *Engine) Create(ctx context.Context, requesterID string, p CreateParams) (*models.SplitRequest, error) {
	if requesterID == "" {
		return nil, fmt.Errorf("%w: requester is required", models.ErrInvalidArgument)
	}
	method := p.SplitMethod
	if method == "" {
		method = models.SplitEqual
	}

	shares, err := calculator.ComputeShares(p.Amount, p.Participants, method, p.Inputs)
	if err != nil {
		return nil, err
	}

	if p.GroupID != "" {
		group, err := e.store.GetGroup(ctx, p.GroupID)
		if err != nil {
			return nil, err
		}
		if !group.HasMember(requesterID) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotAMember, requesterID)
		}
		for _, userID := range p.Participants {
			if !group.HasMember(userID) {
				return nil, fmt.Errorf("%w: %s", models.ErrNotAMember, userID)
			}
		}
	}

	now := e.now().Unix()
	req := &models.SplitRequest{
		ID:          uuid.New().String(),
		RequesterID: requesterID,
		GroupID:     p.GroupID,
		Description: strings.TrimSpace(p.Description),
		Amount:      p.Amount,
		SplitMethod: method,
		Status:      models.SplitRequestPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, s := range shares {
		req.Participants = append(req.Participants, models.SplitParticipant{
			SplitRequestID: req.ID,
			UserID:         s.UserID,
			AmountOwed:     s.Amount,
			Status:         models.ParticipantPending,
		})
	}

	if err := e.store.CreateSplitRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create split request: %w", err)
	}

	e.metrics.SplitTransition(string(req.Status))
	slog.Info("Split request created",
		"split_request_id", req.ID,
		"user_id", requesterID,
		"group_id", req.GroupID,
		"participants", len(req.Participants),
	)
	return req, nil
}

// MarkParticipantPaid records that userID paid their full share. Marking an
// already-paid participant changes nothing. Only the requester or the
// participant may record a payment.
func (e *Engine) MarkParticipantPaid(ctx context.Context, actorID, requestID, userID string) (*models.SplitRequest, error) {
	var (
		result     *models.SplitRequest
		transition bool
	)
	err := e.store.InSplitRequestTx(ctx, requestID, func(tx storage.SplitRequestTx) error {
		req, err := tx.SplitRequest(ctx)
		if err != nil {
			return err
		}
		result = req

		participant, ok := req.Participant(userID)
		if !ok {
			return fmt.Errorf("participant %s of split request %s: %w", userID, requestID, models.ErrNotFound)
		}
		if actorID != req.RequesterID && actorID != userID {
			return fmt.Errorf("%w: only the requester or the participant may record a payment", models.ErrForbidden)
		}
		if participant.Status == models.ParticipantPaid {
			return nil
		}
		if req.Status.IsTerminal() {
			return fmt.Errorf("split request %s is %s: %w", requestID, req.Status, models.ErrTerminalState)
		}

		now := e.now().Unix()
		participant.Status = models.ParticipantPaid
		participant.AmountPaid = participant.AmountOwed
		participant.PaidAt = now
		if err := tx.UpdateParticipant(ctx, participant); err != nil {
			return err
		}

		next := NextStatus(req.Status, req.Participants)
		req.UpdatedAt = now
		if next != req.Status {
			req.Status = next
			transition = true
		}
		return tx.UpdateStatus(ctx, req.Status, now)
	})
	if err != nil {
		return nil, err
	}

	if transition {
		e.metrics.SplitTransition(string(result.Status))
	}
	slog.Info("Split participant paid",
		"split_request_id", requestID,
		"user_id", userID,
		"actor", actorID,
		"status", result.Status,
	)
	return result, nil
}

// Cancel stops a request from accepting further payments.
func (e *Engine) Cancel(ctx context.Context, actorID, requestID string) (*models.SplitRequest, error) {
	var result *models.SplitRequest
	err := e.store.InSplitRequestTx(ctx, requestID, func(tx storage.SplitRequestTx) error {
		req, err := tx.SplitRequest(ctx)
		if err != nil {
			return err
		}
		if actorID != req.RequesterID {
			return fmt.Errorf("%w: only the requester may cancel", models.ErrForbidden)
		}
		if req.Status.IsTerminal() {
			return fmt.Errorf("split request %s is %s: %w", requestID, req.Status, models.ErrTerminalState)
		}

		req.Status = models.SplitRequestCancelled
		req.UpdatedAt = e.now().Unix()
		result = req
		return tx.UpdateStatus(ctx, req.Status, req.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}

	e.metrics.SplitTransition(string(models.SplitRequestCancelled))
	slog.Info("Split request cancelled", "split_request_id", requestID, "user_id", actorID)
	return result, nil
}

// Get returns a request with its participants.
func (e *Engine) Get(ctx context.Context, requestID string) (*models.SplitRequest, error) {
	return e.store.GetSplitRequest(ctx, requestID)
}

// ListForUser returns the requests userID created or owes on, newest first.
func (e *Engine) ListForUser(ctx context.Context, userID string) ([]*models.SplitRequest, error) {
	return e.store.ListSplitRequestsForUser(ctx, userID)
}

// DueReminders returns pending participants of open requests who have not
// been reminded within window.
func (e *Engine) DueReminders(ctx context.Context, now time.Time, window time.Duration) ([]models.ReminderTarget, error) {
	if window <= 0 {
		window = DefaultReminderWindow
	}
	return e.store.DueReminders(ctx, now.Add(-window).Unix())
}

// MarkReminded records that a reminder was delivered to a participant.
func (e *Engine) MarkReminded(ctx context.Context, requestID, userID string, at time.Time) error {
	return e.store.MarkReminded(ctx, requestID, userID, at.Unix())
}

// AllowedToView reports whether userID may read req.
func AllowedToView(req *models.SplitRequest, userID string) bool {
	if req.RequesterID == userID {
		return true
	}
	_, ok := req.Participant(userID)
	return ok
}
