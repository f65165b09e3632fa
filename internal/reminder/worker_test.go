package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/groupledger/internal/metrics"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
	"github.com/mmynk/groupledger/internal/notify"
	"github.com/mmynk/groupledger/internal/splitrequest"
	"github.com/mmynk/groupledger/internal/storage/sqlite"
)

var testNow = time.Unix(1_700_000_000, 0)

type fakeNotifier struct {
	mu     sync.Mutex
	failed map[string]bool
	sent   []*notify.ReminderMessage
}

func (f *fakeNotifier) PublishReminder(ctx context.Context, msg *notify.ReminderMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed[msg.UserID] {
		return errors.New("broker unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeNotifier) users() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []string
	for _, m := range f.sent {
		users = append(users, m.UserID)
	}
	return users
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setup(t *testing.T) (*splitrequest.Engine, *models.SplitRequest) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	engine := splitrequest.New(store, splitrequest.WithClock(func() time.Time { return testNow }))
	req, err := engine.Create(context.Background(), "alice", splitrequest.CreateParams{
		Description:  "Concert tickets",
		Amount:       money.FromMinor(120000),
		SplitMethod:  models.SplitEqual,
		Participants: []string{"bob", "carol", "dave"},
	})
	require.NoError(t, err)
	return engine, req
}

func TestWorker_RunOnce(t *testing.T) {
	ctx := context.Background()
	engine, req := setup(t)
	_, err := engine.MarkParticipantPaid(ctx, "bob", req.ID, "bob")
	require.NoError(t, err)

	clk := &clock{now: testNow}
	n := &fakeNotifier{}
	w := New(engine, n, time.Minute, 72*time.Hour, WithClock(clk.Now))

	res := w.RunOnce(ctx)
	assert.Equal(t, Result{Sent: 2}, res)
	assert.Equal(t, []string{"carol", "dave"}, n.users())
	assert.Equal(t, "400.00", n.sent[0].AmountOwed)
	assert.Equal(t, req.ID, n.sent[0].SplitRequestID)
	assert.Equal(t, "alice", n.sent[0].RequesterID)

	clk.Advance(time.Hour)
	res = w.RunOnce(ctx)
	assert.Equal(t, Result{}, res, "nothing due inside the window")

	clk.Advance(72 * time.Hour)
	res = w.RunOnce(ctx)
	assert.Equal(t, Result{Sent: 2}, res)
	assert.Equal(t, testNow.Unix(), n.sent[2].LastRemindedAt)
}

func TestWorker_RetriesFailedPublish(t *testing.T) {
	ctx := context.Background()
	engine, _ := setup(t)

	m := metrics.New(prometheus.NewRegistry())
	clk := &clock{now: testNow}
	n := &fakeNotifier{failed: map[string]bool{"carol": true}}
	w := New(engine, n, time.Minute, 72*time.Hour, WithClock(clk.Now), WithMetrics(m))

	res := w.RunOnce(ctx)
	assert.Equal(t, Result{Sent: 2, Failed: 1}, res)

	n.mu.Lock()
	n.failed = nil
	n.mu.Unlock()

	clk.Advance(time.Minute)
	res = w.RunOnce(ctx)
	assert.Equal(t, Result{Sent: 1}, res, "only the failed participant is retried")
	assert.Equal(t, []string{"bob", "dave", "carol"}, n.users())
}

func TestWorker_SkipsTerminalRequests(t *testing.T) {
	ctx := context.Background()
	engine, req := setup(t)
	_, err := engine.Cancel(ctx, "alice", req.ID)
	require.NoError(t, err)

	n := &fakeNotifier{}
	w := New(engine, n, time.Minute, 0, WithClock(func() time.Time { return testNow }))
	assert.Equal(t, Result{}, w.RunOnce(ctx))
	assert.Empty(t, n.users())
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	engine, _ := setup(t)
	n := &fakeNotifier{}
	w := New(engine, n, time.Hour, 72*time.Hour, WithClock(func() time.Time { return testNow }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(n.users()) == 3 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
