package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/ledger"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/pkg/api"
	"github.com/mmynk/groupledger/pkg/api/apiconnect"
)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	apiconnect.UnimplementedLedgerServiceHandler
	ledger *ledger.Ledger
}

// NewLedgerService creates a new LedgerService backed by the given ledger.
func NewLedgerService(l *ledger.Ledger) *LedgerService {
	return &LedgerService{ledger: l}
}

// PreviewSplit computes shares without recording anything.
func (s *LedgerService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	amount, err := parseAmount("amount", req.Msg.Amount)
	if err != nil {
		return nil, err
	}
	method, err := parseSplitMethod(req.Msg.SplitMethod)
	if err != nil {
		return nil, err
	}
	inputs, err := parseInputs(req.Msg.Inputs)
	if err != nil {
		return nil, err
	}

	shares, err := calculator.ComputeShares(amount, req.Msg.Participants, method, inputs)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.PreviewSplitResponse{Shares: toAPIShares(shares)}), nil
}

func entryParams(groupID, payerID, amountStr, description, category, entryType, splitMethod string, participants []string, rawInputs map[string]string) (ledger.CreateEntryParams, error) {
	amount, err := parseAmount("amount", amountStr)
	if err != nil {
		return ledger.CreateEntryParams{}, err
	}
	t, err := parseEntryType(entryType)
	if err != nil {
		return ledger.CreateEntryParams{}, err
	}
	method, err := parseSplitMethod(splitMethod)
	if err != nil {
		return ledger.CreateEntryParams{}, err
	}
	inputs, err := parseInputs(rawInputs)
	if err != nil {
		return ledger.CreateEntryParams{}, err
	}
	return ledger.CreateEntryParams{
		GroupID:      groupID,
		PayerID:      payerID,
		Amount:       amount,
		Description:  description,
		Category:     category,
		Type:         t,
		SplitMethod:  method,
		Participants: participants,
		Inputs:       inputs,
	}, nil
}

// CreateEntry records an expense or income in a group.
func (s *LedgerService) CreateEntry(ctx context.Context, req *connect.Request[api.CreateEntryRequest]) (*connect.Response[api.CreateEntryResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	slog.Info("CreateEntry request received",
		"group_id", m.GroupID,
		"amount", m.Amount,
		"participants_count", len(m.Participants),
		"user_id", userID,
	)

	payer := m.PayerID
	if payer == "" {
		payer = userID
	}
	entryType := m.Type
	if entryType == "" {
		entryType = string(models.EntryTypeExpense)
	}
	p, err := entryParams(m.GroupID, payer, m.Amount, m.Description, m.Category, entryType, m.SplitMethod, m.Participants, m.Inputs)
	if err != nil {
		return nil, err
	}

	entry, err := s.ledger.CreateEntry(ctx, userID, p)
	if err != nil {
		slog.Warn("CreateEntry failed", "group_id", m.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CreateEntryResponse{Entry: toAPIEntry(entry)}), nil
}

// EditEntry replaces an expense or income with a corrected version.
func (s *LedgerService) EditEntry(ctx context.Context, req *connect.Request[api.EditEntryRequest]) (*connect.Response[api.EditEntryResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	slog.Info("EditEntry request received", "entry_id", m.EntryID, "user_id", userID)

	p, err := entryParams("", m.PayerID, m.Amount, m.Description, m.Category, m.Type, m.SplitMethod, m.Participants, m.Inputs)
	if err != nil {
		return nil, err
	}

	entry, err := s.ledger.EditEntry(ctx, userID, m.EntryID, p)
	if err != nil {
		slog.Warn("EditEntry failed", "entry_id", m.EntryID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.EditEntryResponse{Entry: toAPIEntry(entry)}), nil
}

// DeleteEntry reverses an entry's balance changes.
func (s *LedgerService) DeleteEntry(ctx context.Context, req *connect.Request[api.DeleteEntryRequest]) (*connect.Response[api.DeleteEntryResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteEntry request received", "entry_id", req.Msg.EntryID, "user_id", userID)

	if err := s.ledger.DeleteEntry(ctx, userID, req.Msg.EntryID); err != nil {
		slog.Warn("DeleteEntry failed", "entry_id", req.Msg.EntryID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DeleteEntryResponse{}), nil
}

// GetEntry returns an entry from one of the caller's groups.
func (s *LedgerService) GetEntry(ctx context.Context, req *connect.Request[api.GetEntryRequest]) (*connect.Response[api.GetEntryResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.ledger.GetEntry(ctx, req.Msg.EntryID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := s.ledger.RequireMember(ctx, entry.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetEntryResponse{Entry: toAPIEntry(entry)}), nil
}

// ListEntries returns a group's entries, newest first.
func (s *LedgerService) ListEntries(ctx context.Context, req *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.RequireMember(ctx, req.Msg.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}

	entries, err := s.ledger.ListEntries(ctx, req.Msg.GroupID, req.Msg.IncludeDeleted)
	if err != nil {
		slog.Error("ListEntries failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Entry, len(entries))
	for i, e := range entries {
		out[i] = toAPIEntry(e)
	}
	return connect.NewResponse(&api.ListEntriesResponse{Entries: out}), nil
}

// Settle records a direct payment between two members.
func (s *LedgerService) Settle(ctx context.Context, req *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	m := req.Msg
	slog.Info("Settle request received",
		"group_id", m.GroupID,
		"from", m.FromUserID,
		"to", m.ToUserID,
		"amount", m.Amount,
	)

	amount, err := parseAmount("amount", m.Amount)
	if err != nil {
		return nil, err
	}

	settlement, err := s.ledger.Settle(ctx, userID, ledger.SettleParams{
		GroupID:    m.GroupID,
		FromUserID: m.FromUserID,
		ToUserID:   m.ToUserID,
		Amount:     amount,
		Note:       m.Note,
	})
	if err != nil {
		slog.Warn("Settle failed", "group_id", m.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SettleResponse{Settlement: toAPISettlement(settlement)}), nil
}

// ListSettlements returns a group's live settlements.
func (s *LedgerService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.RequireMember(ctx, req.Msg.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}

	settlements, err := s.ledger.ListSettlements(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = toAPISettlement(st)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}
