package splitrequest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
	"github.com/mmynk/groupledger/internal/storage"
	"github.com/mmynk/groupledger/internal/storage/sqlite"
	"github.com/mmynk/groupledger/internal/storage/sqlstore"
)

var testNow = time.Unix(1_700_000_000, 0)

func newTestEngine(t *testing.T) (*Engine, *sqlstore.Store) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, WithClock(func() time.Time { return testNow })), store
}

func concertRequest(t *testing.T, e *Engine) *models.SplitRequest {
	t.Helper()
	req, err := e.Create(context.Background(), "alice", CreateParams{
		Description:  "Concert tickets",
		Amount:       money.FromMinor(120000),
		SplitMethod:  models.SplitEqual,
		Participants: []string{"bob", "carol", "dave"},
	})
	require.NoError(t, err)
	return req
}

func TestNextStatus(t *testing.T) {
	paid := models.SplitParticipant{Status: models.ParticipantPaid}
	pending := models.SplitParticipant{Status: models.ParticipantPending}

	tests := []struct {
		name         string
		current      models.SplitRequestStatus
		participants []models.SplitParticipant
		want         models.SplitRequestStatus
	}{
		{"none paid", models.SplitRequestPending, []models.SplitParticipant{pending, pending}, models.SplitRequestPending},
		{"some paid", models.SplitRequestPending, []models.SplitParticipant{paid, pending}, models.SplitRequestPartiallyPaid},
		{"all paid", models.SplitRequestPartiallyPaid, []models.SplitParticipant{paid, paid}, models.SplitRequestCompleted},
		{"no participants", models.SplitRequestPending, nil, models.SplitRequestPending},
		{"cancelled stays", models.SplitRequestCancelled, []models.SplitParticipant{paid, paid}, models.SplitRequestCancelled},
		{"completed stays", models.SplitRequestCompleted, []models.SplitParticipant{pending}, models.SplitRequestCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStatus(tt.current, tt.participants))
		})
	}
}

func TestEngine_PaymentLifecycle(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	req := concertRequest(t, e)

	assert.Equal(t, models.SplitRequestPending, req.Status)
	require.Len(t, req.Participants, 3)
	for _, p := range req.Participants {
		assert.Equal(t, money.FromMinor(40000), p.AmountOwed)
		assert.Equal(t, models.ParticipantPending, p.Status)
		assert.Zero(t, p.AmountPaid)
	}

	got, err := e.MarkParticipantPaid(ctx, "bob", req.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.SplitRequestPartiallyPaid, got.Status)

	got, err = e.MarkParticipantPaid(ctx, "alice", req.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, models.SplitRequestPartiallyPaid, got.Status)

	got, err = e.MarkParticipantPaid(ctx, "dave", req.ID, "dave")
	require.NoError(t, err)
	assert.Equal(t, models.SplitRequestCompleted, got.Status)

	stored, err := e.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SplitRequestCompleted, stored.Status)
	for _, p := range stored.Participants {
		assert.Equal(t, models.ParticipantPaid, p.Status)
		assert.Equal(t, p.AmountOwed, p.AmountPaid)
		assert.Equal(t, testNow.Unix(), p.PaidAt)
	}

	_, err = e.Cancel(ctx, "alice", req.ID)
	require.ErrorIs(t, err, models.ErrTerminalState)
}

func TestEngine_MarkParticipantPaidIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	req := concertRequest(t, e)

	first, err := e.MarkParticipantPaid(ctx, "bob", req.ID, "bob")
	require.NoError(t, err)
	second, err := e.MarkParticipantPaid(ctx, "bob", req.ID, "bob")
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Participants, second.Participants)
	assert.Equal(t, 1, second.PaidCount())
}

func TestEngine_CancelFreezesPayments(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	req := concertRequest(t, e)

	_, err := e.MarkParticipantPaid(ctx, "bob", req.ID, "bob")
	require.NoError(t, err)

	_, err = e.Cancel(ctx, "bob", req.ID)
	require.ErrorIs(t, err, models.ErrForbidden)

	cancelled, err := e.Cancel(ctx, "alice", req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SplitRequestCancelled, cancelled.Status)

	_, err = e.MarkParticipantPaid(ctx, "carol", req.ID, "carol")
	require.ErrorIs(t, err, models.ErrTerminalState)

	_, err = e.Cancel(ctx, "alice", req.ID)
	require.ErrorIs(t, err, models.ErrTerminalState)

	stored, err := e.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SplitRequestCancelled, stored.Status)
	assert.Equal(t, 1, stored.PaidCount())
}

func TestEngine_MarkParticipantPaidRejections(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	req := concertRequest(t, e)

	_, err := e.MarkParticipantPaid(ctx, "erin", req.ID, "bob")
	require.ErrorIs(t, err, models.ErrForbidden)

	_, err = e.MarkParticipantPaid(ctx, "alice", req.ID, "erin")
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = e.MarkParticipantPaid(ctx, "alice", "missing", "bob")
	require.ErrorIs(t, err, models.ErrNotFound)

	stored, err := e.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SplitRequestPending, stored.Status)
	assert.Zero(t, stored.PaidCount())
}

func TestEngine_Create(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)

	group := &models.Group{Name: "Flat", Type: models.GroupTypeGeneral, CreatedBy: "alice", Members: []string{"alice", "bob"}}
	require.NoError(t, store.CreateGroup(ctx, group))

	t.Run("group scoped request", func(t *testing.T) {
		req, err := e.Create(ctx, "alice", CreateParams{
			GroupID:      group.ID,
			Amount:       money.FromMinor(1001),
			Participants: []string{"alice", "bob"},
		})
		require.NoError(t, err)
		assert.Equal(t, group.ID, req.GroupID)
		assert.Equal(t, models.SplitEqual, req.SplitMethod)
		assert.Equal(t, money.FromMinor(501), req.Participants[0].AmountOwed)
		assert.Equal(t, money.FromMinor(500), req.Participants[1].AmountOwed)
	})

	t.Run("participant outside group", func(t *testing.T) {
		_, err := e.Create(ctx, "alice", CreateParams{
			GroupID:      group.ID,
			Amount:       money.FromMinor(1000),
			Participants: []string{"bob", "zed"},
		})
		require.ErrorIs(t, err, models.ErrNotAMember)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := e.Create(ctx, "alice", CreateParams{
			GroupID:      "missing",
			Amount:       money.FromMinor(1000),
			Participants: []string{"bob"},
		})
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("invalid split", func(t *testing.T) {
		_, err := e.Create(ctx, "alice", CreateParams{Amount: 0, Participants: []string{"bob"}})
		require.ErrorIs(t, err, models.ErrInvalidSplit)
	})

	t.Run("listing", func(t *testing.T) {
		reqs, err := e.ListForUser(ctx, "bob")
		require.NoError(t, err)
		assert.Len(t, reqs, 1)
		assert.True(t, AllowedToView(reqs[0], "bob"))
		assert.True(t, AllowedToView(reqs[0], "alice"))
		assert.False(t, AllowedToView(reqs[0], "zed"))
	})
}

func TestEngine_ConcurrentPayments(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	participants := make([]string, 8)
	for i := range participants {
		participants[i] = fmt.Sprintf("user-%d", i)
	}
	req, err := e.Create(ctx, "organizer", CreateParams{
		Amount:       money.FromMinor(80000),
		Participants: participants,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, len(participants)*2)
	for _, userID := range participants {
		// Each participant pays twice concurrently; the duplicate must be a no-op.
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				_, err := e.MarkParticipantPaid(ctx, userID, req.ID, userID)
				errs <- err
			}(userID)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := e.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SplitRequestCompleted, stored.Status)
	assert.Equal(t, len(participants), stored.PaidCount())
}

// forceParticipant writes a participant row without touching the parent status.
func forceParticipant(t *testing.T, store storage.Store, requestID, userID string, status models.ParticipantStatus) {
	t.Helper()
	err := store.InSplitRequestTx(context.Background(), requestID, func(tx storage.SplitRequestTx) error {
		req, err := tx.SplitRequest(context.Background())
		if err != nil {
			return err
		}
		p, ok := req.Participant(userID)
		require.True(t, ok)
		p.Status = status
		if status == models.ParticipantPaid {
			p.AmountPaid = p.AmountOwed
		} else {
			p.AmountPaid = 0
		}
		return tx.UpdateParticipant(context.Background(), p)
	})
	require.NoError(t, err)
}

func TestEngine_Reconcile(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t)

	drifted := concertRequest(t, e)
	forceParticipant(t, store, drifted.ID, "bob", models.ParticipantPaid)

	allPaid := concertRequest(t, e)
	for _, u := range []string{"bob", "carol", "dave"} {
		forceParticipant(t, store, allPaid.ID, u, models.ParticipantPaid)
	}

	cancelled := concertRequest(t, e)
	_, err := e.Cancel(ctx, "alice", cancelled.ID)
	require.NoError(t, err)
	forceParticipant(t, store, cancelled.ID, "bob", models.ParticipantPaid)

	completed := concertRequest(t, e)
	for _, u := range []string{"bob", "carol", "dave"} {
		_, err := e.MarkParticipantPaid(ctx, "alice", completed.ID, u)
		require.NoError(t, err)
	}
	forceParticipant(t, store, completed.ID, "carol", models.ParticipantPending)

	healthy := concertRequest(t, e)

	report, err := e.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{Checked: 4, Repaired: 2, Inconsistent: 1}, report)

	expect := map[string]models.SplitRequestStatus{
		drifted.ID:   models.SplitRequestPartiallyPaid,
		allPaid.ID:   models.SplitRequestCompleted,
		cancelled.ID: models.SplitRequestCancelled,
		completed.ID: models.SplitRequestCompleted,
		healthy.ID:   models.SplitRequestPending,
	}
	for id, want := range expect {
		got, err := e.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status, "request %s", id)
	}

	again, err := e.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Repaired)
	assert.Equal(t, 1, again.Inconsistent)
}

func TestEngine_Reminders(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	req := concertRequest(t, e)

	_, err := e.MarkParticipantPaid(ctx, "bob", req.ID, "bob")
	require.NoError(t, err)

	due, err := e.DueReminders(ctx, testNow, 72*time.Hour)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "carol", due[0].UserID)
	assert.Equal(t, "Concert tickets", due[0].Description)

	require.NoError(t, e.MarkReminded(ctx, req.ID, "carol", testNow))

	due, err = e.DueReminders(ctx, testNow.Add(time.Hour), 72*time.Hour)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "dave", due[0].UserID)

	due, err = e.DueReminders(ctx, testNow.Add(73*time.Hour), 0)
	require.NoError(t, err)
	assert.Len(t, due, 2, "default window re-arms after 72h")

	_, err = e.Cancel(ctx, "alice", req.ID)
	require.NoError(t, err)
	due, err = e.DueReminders(ctx, testNow.Add(100*time.Hour), 72*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, due)
}
