package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/pkg/api"
)

// A pays 300 split equally, B settles 100 to A, then the expense is deleted.
func TestLedger_GoldenScenario(t *testing.T) {
	env := setupTestServer(t)
	group := createGroup(t, env, "A", "B", "C")
	ctx := context.Background()

	created, err := env.ledger.CreateEntry(ctx, as(t, env, "A", &api.CreateEntryRequest{
		GroupID:     group.ID,
		PayerID:     "A",
		Amount:      "300",
		Description: "Dinner",
	}))
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	entry := created.Msg.Entry
	if entry.Type != "expense" || entry.SplitMethod != "equal" {
		t.Errorf("expected equal expense, got %s/%s", entry.Type, entry.SplitMethod)
	}
	if len(entry.Shares) != 3 {
		t.Fatalf("expected 3 shares, got %d", len(entry.Shares))
	}
	expectBalances(t, balances(t, env, "A", group.ID), map[string]string{
		"A": "200.00", "B": "-100.00", "C": "-100.00",
	})

	settled, err := env.ledger.Settle(ctx, as(t, env, "B", &api.SettleRequest{
		GroupID: group.ID, FromUserID: "B", ToUserID: "A", Amount: "100",
	}))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if settled.Msg.Settlement.Amount != "100.00" {
		t.Errorf("settlement amount: expected 100.00, got %s", settled.Msg.Settlement.Amount)
	}
	expectBalances(t, balances(t, env, "A", group.ID), map[string]string{
		"A": "100.00", "B": "0.00", "C": "-100.00",
	})

	if _, err := env.ledger.DeleteEntry(ctx, as(t, env, "A", &api.DeleteEntryRequest{EntryID: entry.ID})); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	expectBalances(t, balances(t, env, "A", group.ID), map[string]string{
		"A": "-100.00", "B": "100.00", "C": "0.00",
	})

	_, err = env.ledger.DeleteEntry(ctx, as(t, env, "A", &api.DeleteEntryRequest{EntryID: entry.ID}))
	expectCode(t, err, connect.CodeNotFound)

	list, err := env.ledger.ListEntries(ctx, as(t, env, "C", &api.ListEntriesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(list.Msg.Entries) != 1 || list.Msg.Entries[0].Type != "settlement" {
		t.Errorf("expected only the settlement to remain, got %d entries", len(list.Msg.Entries))
	}

	all, err := env.ledger.ListEntries(ctx, as(t, env, "C", &api.ListEntriesRequest{GroupID: group.ID, IncludeDeleted: true}))
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(all.Msg.Entries) != 2 {
		t.Errorf("expected 2 entries including deleted, got %d", len(all.Msg.Entries))
	}

	settlements, err := env.ledger.ListSettlements(ctx, as(t, env, "B", &api.ListSettlementsRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(settlements.Msg.Settlements) != 1 || settlements.Msg.Settlements[0].FromUserID != "B" {
		t.Errorf("unexpected settlements %+v", settlements.Msg.Settlements)
	}
}

func TestCreateEntry_Rejections(t *testing.T) {
	env := setupTestServer(t)
	group := createGroup(t, env, "A", "B")

	tests := []struct {
		name string
		user string
		req  *api.CreateEntryRequest
		code connect.Code
	}{
		{
			name: "missing amount",
			user: "A",
			req:  &api.CreateEntryRequest{GroupID: group.ID},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "malformed amount",
			user: "A",
			req:  &api.CreateEntryRequest{GroupID: group.ID, Amount: "ten"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "percentages not 100",
			user: "A",
			req: &api.CreateEntryRequest{
				GroupID: group.ID, Amount: "100", SplitMethod: "percentage",
				Participants: []string{"A", "B"}, Inputs: map[string]string{"A": "50", "B": "40"},
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown split method",
			user: "A",
			req:  &api.CreateEntryRequest{GroupID: group.ID, Amount: "10", SplitMethod: "shares"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "settlement type",
			user: "A",
			req:  &api.CreateEntryRequest{GroupID: group.ID, Amount: "10", Type: "settlement"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "participant outside group",
			user: "A",
			req:  &api.CreateEntryRequest{GroupID: group.ID, Amount: "10", Participants: []string{"A", "Z"}},
			code: connect.CodePermissionDenied,
		},
		{
			name: "caller outside group",
			user: "Z",
			req:  &api.CreateEntryRequest{GroupID: group.ID, PayerID: "A", Amount: "10"},
			code: connect.CodePermissionDenied,
		},
		{
			name: "unknown group",
			user: "A",
			req:  &api.CreateEntryRequest{GroupID: "missing", Amount: "10"},
			code: connect.CodeNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.CreateEntry(context.Background(), as(t, env, tt.user, tt.req))
			expectCode(t, err, tt.code)
		})
	}

	expectBalances(t, balances(t, env, "A", group.ID), map[string]string{"A": "0.00", "B": "0.00"})
}

func TestPreviewSplit(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.ledger.PreviewSplit(context.Background(), as(t, env, "A", &api.PreviewSplitRequest{
		Amount:       "100",
		Participants: []string{"A", "B", "C"},
	}))
	if err != nil {
		t.Fatalf("PreviewSplit failed: %v", err)
	}
	want := []string{"33.34", "33.33", "33.33"}
	for i, s := range resp.Msg.Shares {
		if s.Amount != want[i] {
			t.Errorf("share %d: expected %s, got %s", i, want[i], s.Amount)
		}
	}

	exact, err := env.ledger.PreviewSplit(context.Background(), as(t, env, "A", &api.PreviewSplitRequest{
		Amount:       "50,00",
		SplitMethod:  "exact",
		Participants: []string{"A", "B"},
		Inputs:       map[string]string{"A": "20", "B": "30.00"},
	}))
	if err != nil {
		t.Fatalf("PreviewSplit (exact) failed: %v", err)
	}
	if exact.Msg.Shares[1].Amount != "30.00" {
		t.Errorf("exact share: expected 30.00, got %s", exact.Msg.Shares[1].Amount)
	}

	_, err = env.ledger.PreviewSplit(context.Background(), as(t, env, "A", &api.PreviewSplitRequest{
		Amount: "10", SplitMethod: "exact", Participants: []string{"A", "B"},
		Inputs: map[string]string{"A": "3", "B": "3"},
	}))
	expectCode(t, err, connect.CodeInvalidArgument)
}

func TestEditEntry(t *testing.T) {
	env := setupTestServer(t)
	group := createGroup(t, env, "A", "B")
	ctx := context.Background()

	created, err := env.ledger.CreateEntry(ctx, as(t, env, "A", &api.CreateEntryRequest{
		GroupID: group.ID, Amount: "40", Type: "income",
	}))
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	expectBalances(t, balances(t, env, "A", group.ID), map[string]string{"A": "-20.00", "B": "20.00"})

	edited, err := env.ledger.EditEntry(ctx, as(t, env, "A", &api.EditEntryRequest{
		EntryID: created.Msg.Entry.ID, Amount: "60",
	}))
	if err != nil {
		t.Fatalf("EditEntry failed: %v", err)
	}
	if edited.Msg.Entry.Type != "income" || edited.Msg.Entry.PayerID != "A" {
		t.Errorf("expected type and payer to carry over, got %s/%s", edited.Msg.Entry.Type, edited.Msg.Entry.PayerID)
	}
	expectBalances(t, balances(t, env, "A", group.ID), map[string]string{"A": "-30.00", "B": "30.00"})

	_, err = env.ledger.EditEntry(ctx, as(t, env, "B", &api.EditEntryRequest{
		EntryID: edited.Msg.Entry.ID, Amount: "10",
	}))
	expectCode(t, err, connect.CodePermissionDenied)
}

func TestGetEntry(t *testing.T) {
	env := setupTestServer(t)
	group := createGroup(t, env, "A", "B")
	ctx := context.Background()

	created, err := env.ledger.CreateEntry(ctx, as(t, env, "A", &api.CreateEntryRequest{
		GroupID: group.ID, Amount: "12.50", Category: "food",
	}))
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	got, err := env.ledger.GetEntry(ctx, as(t, env, "B", &api.GetEntryRequest{EntryID: created.Msg.Entry.ID}))
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if got.Msg.Entry.Amount != "12.50" || got.Msg.Entry.Category != "food" {
		t.Errorf("unexpected entry %+v", got.Msg.Entry)
	}
	if len(got.Msg.Entry.Deltas) != 2 {
		t.Errorf("expected 2 deltas, got %d", len(got.Msg.Entry.Deltas))
	}

	_, err = env.ledger.GetEntry(ctx, as(t, env, "Z", &api.GetEntryRequest{EntryID: created.Msg.Entry.ID}))
	expectCode(t, err, connect.CodePermissionDenied)

	_, err = env.ledger.GetEntry(ctx, as(t, env, "A", &api.GetEntryRequest{EntryID: "missing"}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestSettle_Rejections(t *testing.T) {
	env := setupTestServer(t)
	group := createGroup(t, env, "A", "B")
	ctx := context.Background()

	tests := []struct {
		name string
		req  *api.SettleRequest
		code connect.Code
	}{
		{"self", &api.SettleRequest{GroupID: group.ID, FromUserID: "A", ToUserID: "A", Amount: "5"}, connect.CodeInvalidArgument},
		{"zero", &api.SettleRequest{GroupID: group.ID, FromUserID: "A", ToUserID: "B", Amount: "0"}, connect.CodeInvalidArgument},
		{"outsider", &api.SettleRequest{GroupID: group.ID, FromUserID: "A", ToUserID: "Z", Amount: "5"}, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.Settle(ctx, as(t, env, "A", tt.req))
			expectCode(t, err, tt.code)
		})
	}
}
