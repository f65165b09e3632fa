package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.groups.CreateGroup(context.Background(), as(t, env, "alice", &api.CreateGroupRequest{
		Name:    "Roommates",
		Members: []string{"bob", "carol", "alice"},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	group := resp.Msg.Group
	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Name != "Roommates" {
		t.Errorf("name: expected 'Roommates', got '%s'", group.Name)
	}
	if group.Type != "general" {
		t.Errorf("type: expected 'general', got '%s'", group.Type)
	}
	want := []string{"alice", "bob", "carol"}
	if len(group.Members) != len(want) {
		t.Fatalf("members: expected %v, got %v", want, group.Members)
	}
	for i := range want {
		if group.Members[i] != want[i] {
			t.Errorf("member %d: expected %s, got %s", i, want[i], group.Members[i])
		}
	}
	if group.CreatedAt == 0 {
		t.Error("expected non-zero CreatedAt")
	}

	expectBalances(t, balances(t, env, "alice", group.ID), map[string]string{
		"alice": "0.00", "bob": "0.00", "carol": "0.00",
	})
}

func TestCreateGroup_Unauthenticated(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{Name: "Nope"}))
	expectCode(t, err, connect.CodeUnauthenticated)

	req := connect.NewRequest(&api.CreateGroupRequest{Name: "Nope"})
	req.Header().Set("Authorization", "Bearer not-a-token")
	_, err = env.groups.CreateGroup(context.Background(), req)
	expectCode(t, err, connect.CodeUnauthenticated)
}

func TestCreateGroup_Invalid(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.groups.CreateGroup(context.Background(), as(t, env, "alice", &api.CreateGroupRequest{Name: "  "}))
	expectCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.CreateGroup(context.Background(), as(t, env, "alice", &api.CreateGroupRequest{Name: "X", Type: "club"}))
	expectCode(t, err, connect.CodeInvalidArgument)
}

func TestGetGroup(t *testing.T) {
	env := setupTestServer(t)
	group := createGroup(t, env, "alice", "bob")

	resp, err := env.groups.GetGroup(context.Background(), as(t, env, "bob", &api.GetGroupRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if resp.Msg.Group.ID != group.ID {
		t.Errorf("id: expected %s, got %s", group.ID, resp.Msg.Group.ID)
	}

	_, err = env.groups.GetGroup(context.Background(), as(t, env, "mallory", &api.GetGroupRequest{GroupID: group.ID}))
	expectCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.GetGroup(context.Background(), as(t, env, "alice", &api.GetGroupRequest{GroupID: "nonexistent-id"}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestListGroups(t *testing.T) {
	env := setupTestServer(t)
	createGroup(t, env, "alice", "bob")
	createGroup(t, env, "bob", "carol")
	createGroup(t, env, "carol")

	resp, err := env.groups.ListGroups(context.Background(), as(t, env, "bob", &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 2 {
		t.Errorf("expected 2 groups, got %d", len(resp.Msg.Groups))
	}

	resp, err = env.groups.ListGroups(context.Background(), as(t, env, "nobody", &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 0 {
		t.Errorf("expected 0 groups, got %d", len(resp.Msg.Groups))
	}
}

func TestAddAndRemoveMember(t *testing.T) {
	env := setupTestServer(t)
	group := createGroup(t, env, "alice", "bob")
	ctx := context.Background()

	resp, err := env.groups.AddMember(ctx, as(t, env, "bob", &api.AddMemberRequest{GroupID: group.ID, UserID: "carol"}))
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if !resp.Msg.Added || len(resp.Msg.Group.Members) != 3 {
		t.Errorf("expected carol added, got added=%v members=%v", resp.Msg.Added, resp.Msg.Group.Members)
	}

	resp, err = env.groups.AddMember(ctx, as(t, env, "bob", &api.AddMemberRequest{GroupID: group.ID, UserID: "carol"}))
	if err != nil {
		t.Fatalf("AddMember (again) failed: %v", err)
	}
	if resp.Msg.Added {
		t.Error("expected second add to be a no-op")
	}

	_, err = env.groups.AddMember(ctx, as(t, env, "mallory", &api.AddMemberRequest{GroupID: group.ID, UserID: "eve"}))
	expectCode(t, err, connect.CodePermissionDenied)

	// carol owes money and cannot leave
	if _, err := env.ledger.CreateEntry(ctx, as(t, env, "alice", &api.CreateEntryRequest{
		GroupID: group.ID, Amount: "30", Participants: []string{"alice", "carol"},
	})); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	_, err = env.groups.RemoveMember(ctx, as(t, env, "carol", &api.RemoveMemberRequest{GroupID: group.ID, UserID: "carol"}))
	expectCode(t, err, connect.CodeFailedPrecondition)

	_, err = env.groups.RemoveMember(ctx, as(t, env, "bob", &api.RemoveMemberRequest{GroupID: group.ID, UserID: "alice"}))
	expectCode(t, err, connect.CodePermissionDenied)

	removed, err := env.groups.RemoveMember(ctx, as(t, env, "alice", &api.RemoveMemberRequest{GroupID: group.ID, UserID: "bob"}))
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if len(removed.Msg.Group.Members) != 2 {
		t.Errorf("expected 2 members after removal, got %v", removed.Msg.Group.Members)
	}
}

func TestInviteAndJoin(t *testing.T) {
	env := setupTestServer(t)
	group := createGroup(t, env, "alice")
	ctx := context.Background()

	_, err := env.groups.CreateInvite(ctx, as(t, env, "dave", &api.CreateInviteRequest{GroupID: group.ID}))
	expectCode(t, err, connect.CodePermissionDenied)

	invite, err := env.groups.CreateInvite(ctx, as(t, env, "alice", &api.CreateInviteRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}
	if invite.Msg.Token == "" || invite.Msg.ExpiresAt == 0 {
		t.Fatalf("expected token and expiry, got %+v", invite.Msg)
	}

	joined, err := env.groups.JoinGroup(ctx, as(t, env, "dave", &api.JoinGroupRequest{Token: invite.Msg.Token}))
	if err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	if len(joined.Msg.Group.Members) != 2 || joined.Msg.Group.Members[1] != "dave" {
		t.Errorf("expected dave to join, got %v", joined.Msg.Group.Members)
	}

	_, err = env.groups.JoinGroup(ctx, as(t, env, "eve", &api.JoinGroupRequest{Token: "bogus"}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestSuggestSettlements(t *testing.T) {
	env := setupTestServer(t)
	group := createGroup(t, env, "A", "B", "C")
	ctx := context.Background()

	if _, err := env.ledger.CreateEntry(ctx, as(t, env, "A", &api.CreateEntryRequest{
		GroupID: group.ID, PayerID: "A", Amount: "300",
	})); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	resp, err := env.groups.SuggestSettlements(ctx, as(t, env, "C", &api.SuggestSettlementsRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("SuggestSettlements failed: %v", err)
	}
	if len(resp.Msg.Transfers) != 2 {
		t.Fatalf("expected 2 transfers, got %+v", resp.Msg.Transfers)
	}
	for _, tr := range resp.Msg.Transfers {
		if tr.ToUserID != "A" || tr.Amount != "100.00" {
			t.Errorf("unexpected transfer %+v", tr)
		}
	}

	_, err = env.groups.SuggestSettlements(ctx, as(t, env, "Z", &api.SuggestSettlementsRequest{GroupID: group.ID}))
	expectCode(t, err, connect.CodePermissionDenied)
}
