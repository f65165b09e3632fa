package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/splitrequest"
	"github.com/mmynk/groupledger/pkg/api"
	"github.com/mmynk/groupledger/pkg/api/apiconnect"
)

// SplitRequestService implements the Connect SplitRequestService
type SplitRequestService struct {
	apiconnect.UnimplementedSplitRequestServiceHandler
	engine *splitrequest.Engine
}

// NewSplitRequestService creates a new SplitRequestService.
func NewSplitRequestService(engine *splitrequest.Engine) *SplitRequestService {
	return &SplitRequestService{engine: engine}
}

// CreateSplitRequest asks each participant to pay their share to the caller.
func (s *SplitRequestService) CreateSplitRequest(ctx context.Context, req *connect.Request[api.CreateSplitRequestRequest]) (*connect.Response[api.CreateSplitRequestResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	slog.Info("CreateSplitRequest request received",
		"group_id", m.GroupID,
		"amount", m.Amount,
		"participants_count", len(m.Participants),
		"user_id", userID,
	)

	amount, err := parseAmount("amount", m.Amount)
	if err != nil {
		return nil, err
	}
	method, err := parseSplitMethod(m.SplitMethod)
	if err != nil {
		return nil, err
	}
	inputs, err := parseInputs(m.Inputs)
	if err != nil {
		return nil, err
	}

	sr, err := s.engine.Create(ctx, userID, splitrequest.CreateParams{
		GroupID:      m.GroupID,
		Description:  m.Description,
		Amount:       amount,
		SplitMethod:  method,
		Participants: m.Participants,
		Inputs:       inputs,
	})
	if err != nil {
		slog.Warn("CreateSplitRequest failed", "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CreateSplitRequestResponse{SplitRequest: toAPISplitRequest(sr)}), nil
}

// GetSplitRequest returns a request the caller created or participates in.
func (s *SplitRequestService) GetSplitRequest(ctx context.Context, req *connect.Request[api.GetSplitRequestRequest]) (*connect.Response[api.GetSplitRequestResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	sr, err := s.engine.Get(ctx, req.Msg.SplitRequestID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !splitrequest.AllowedToView(sr, userID) {
		return nil, toConnectError(fmt.Errorf("%w: not part of split request %s", models.ErrForbidden, sr.ID))
	}
	return connect.NewResponse(&api.GetSplitRequestResponse{SplitRequest: toAPISplitRequest(sr)}), nil
}

// ListSplitRequests returns the caller's requests, newest first.
func (s *SplitRequestService) ListSplitRequests(ctx context.Context, req *connect.Request[api.ListSplitRequestsRequest]) (*connect.Response[api.ListSplitRequestsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	reqs, err := s.engine.ListForUser(ctx, userID)
	if err != nil {
		slog.Error("ListSplitRequests failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.SplitRequest, len(reqs))
	for i, r := range reqs {
		out[i] = toAPISplitRequest(r)
	}
	return connect.NewResponse(&api.ListSplitRequestsResponse{SplitRequests: out}), nil
}

// MarkParticipantPaid records a participant's full payment.
func (s *SplitRequestService) MarkParticipantPaid(ctx context.Context, req *connect.Request[api.MarkParticipantPaidRequest]) (*connect.Response[api.MarkParticipantPaidResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	participant := req.Msg.UserID
	if participant == "" {
		participant = userID
	}
	slog.Info("MarkParticipantPaid request received",
		"split_request_id", req.Msg.SplitRequestID,
		"participant", participant,
		"user_id", userID,
	)

	sr, err := s.engine.MarkParticipantPaid(ctx, userID, req.Msg.SplitRequestID, participant)
	if err != nil {
		slog.Warn("MarkParticipantPaid failed", "split_request_id", req.Msg.SplitRequestID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.MarkParticipantPaidResponse{SplitRequest: toAPISplitRequest(sr)}), nil
}

// CancelSplitRequest cancels an open request. Only the requester may cancel.
func (s *SplitRequestService) CancelSplitRequest(ctx context.Context, req *connect.Request[api.CancelSplitRequestRequest]) (*connect.Response[api.CancelSplitRequestResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CancelSplitRequest request received", "split_request_id", req.Msg.SplitRequestID, "user_id", userID)

	sr, err := s.engine.Cancel(ctx, userID, req.Msg.SplitRequestID)
	if err != nil {
		slog.Warn("CancelSplitRequest failed", "split_request_id", req.Msg.SplitRequestID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CancelSplitRequestResponse{SplitRequest: toAPISplitRequest(sr)}), nil
}
