package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/ledger"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/pkg/api"
	"github.com/mmynk/groupledger/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	ledger *ledger.Ledger
}

// NewGroupService creates a new GroupService backed by the given ledger.
func NewGroupService(l *ledger.Ledger) *GroupService {
	return &GroupService{ledger: l}
}

// CreateGroup creates a group with the caller as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
		"user_id", userID,
	)

	groupType, err := parseGroupType(req.Msg.Type)
	if err != nil {
		return nil, err
	}

	group, err := s.ledger.CreateGroup(ctx, userID, req.Msg.Name, groupType, req.Msg.Members)
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.ledger.RequireMember(ctx, req.Msg.GroupID, userID)
	if err != nil {
		slog.Warn("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups returns the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.ledger.ListGroupsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}
	slog.Info("ListGroups successful", "count", len(groups), "user_id", userID)

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMember adds a user to a group the caller belongs to.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "member", req.Msg.UserID)

	added, err := s.ledger.AddMember(ctx, userID, req.Msg.GroupID, req.Msg.UserID)
	if err != nil {
		slog.Warn("AddMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	group, err := s.ledger.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.AddMemberResponse{Added: added, Group: toAPIGroup(group)}), nil
}

// RemoveMember removes a member whose balance is settled.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "member", req.Msg.UserID)

	if err := s.ledger.RemoveMember(ctx, userID, req.Msg.GroupID, req.Msg.UserID); err != nil {
		slog.Warn("RemoveMember failed", "group_id", req.Msg.GroupID, "error", err)
		if errors.Is(err, models.ErrBalanceConsistency) {
			return nil, connect.NewError(connect.CodeFailedPrecondition, err)
		}
		return nil, toConnectError(err)
	}

	group, err := s.ledger.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RemoveMemberResponse{Group: toAPIGroup(group)}), nil
}

// CreateInvite issues a join token for the group.
func (s *GroupService) CreateInvite(ctx context.Context, req *connect.Request[api.CreateInviteRequest]) (*connect.Response[api.CreateInviteResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.TTLSeconds < 0 {
		return nil, invalidArgument("ttl_seconds must not be negative")
	}
	ttl := time.Duration(req.Msg.TTLSeconds) * time.Second

	token, invite, err := s.ledger.CreateInvite(ctx, userID, req.Msg.GroupID, ttl)
	if err != nil {
		slog.Warn("CreateInvite failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Invite created", "group_id", invite.GroupID, "user_id", userID, "expires_at", invite.ExpiresAt)
	return connect.NewResponse(&api.CreateInviteResponse{Token: token, ExpiresAt: invite.ExpiresAt}), nil
}

// JoinGroup adds the caller to the group an invite token was issued for.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	group, err := s.ledger.JoinByInvite(ctx, userID, req.Msg.Token)
	if err != nil {
		slog.Warn("JoinGroup failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.JoinGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetBalances returns every member's net balance.
func (s *GroupService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.RequireMember(ctx, req.Msg.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}

	balances, err := s.ledger.Balances(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetBalancesResponse{Balances: toAPIBalances(balances)}), nil
}

// SuggestSettlements proposes payments that would zero every balance.
func (s *GroupService) SuggestSettlements(ctx context.Context, req *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.RequireMember(ctx, req.Msg.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}

	transfers, err := s.ledger.SuggestSettlements(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("SuggestSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SuggestSettlementsResponse{Transfers: toAPITransfers(transfers)}), nil
}
