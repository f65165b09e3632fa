package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/auth"
	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/middleware"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
	"github.com/mmynk/groupledger/pkg/api"
)

// toConnectError maps domain errors onto Connect codes. Unexpected errors
// are logged and reported as Internal.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, models.ErrInvalidSplit),
		errors.Is(err, models.ErrInvalidSettlement),
		errors.Is(err, models.ErrInvalidArgument):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, models.ErrNotAMember), errors.Is(err, models.ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, models.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, models.ErrTerminalState):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	}

	slog.Error("Unexpected error", "error", err)
	return connect.NewError(connect.CodeInternal, errors.New("internal error"))
}

// requireUser returns the authenticated caller.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

func parseAmount(field, s string) (money.Amount, error) {
	if strings.TrimSpace(s) == "" {
		return 0, invalidArgument("%s is required", field)
	}
	a, err := money.Parse(s)
	if err != nil {
		return 0, invalidArgument("invalid %s %q: %v", field, s, err)
	}
	return a, nil
}

func parseInputs(inputs map[string]string) (map[string]decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	out := make(map[string]decimal.Decimal, len(inputs))
	for userID, v := range inputs {
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v), ",", "."))
		if err != nil {
			return nil, invalidArgument("invalid input %q for %s", v, userID)
		}
		out[userID] = d
	}
	return out, nil
}

func parseSplitMethod(s string) (models.SplitMethod, error) {
	if s == "" {
		return models.SplitEqual, nil
	}
	m := models.SplitMethod(strings.ToLower(s))
	if !m.Valid() {
		return "", invalidArgument("unknown split method %q", s)
	}
	return m, nil
}

// parseEntryType leaves an empty type empty so edits keep the original type.
func parseEntryType(s string) (models.EntryType, error) {
	if s == "" {
		return "", nil
	}
	t := models.EntryType(strings.ToLower(s))
	if t != models.EntryTypeExpense && t != models.EntryTypeIncome {
		return "", invalidArgument("entry type must be expense or income, got %q", s)
	}
	return t, nil
}

func parseGroupType(s string) (models.GroupType, error) {
	if s == "" {
		return models.GroupTypeGeneral, nil
	}
	t := models.GroupType(strings.ToLower(s))
	if !t.Valid() {
		return "", invalidArgument("unknown group type %q", s)
	}
	return t, nil
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Type:      string(g.Type),
		CreatedBy: g.CreatedBy,
		Members:   g.Members,
		CreatedAt: g.CreatedAt,
	}
}

func toAPIShares(shares []models.Share) []api.Share {
	out := make([]api.Share, len(shares))
	for i, s := range shares {
		out[i] = api.Share{UserID: s.UserID, Amount: s.Amount.String()}
	}
	return out
}

func toAPIEntry(e *models.LedgerEntry) *api.Entry {
	deltas := make([]api.Share, len(e.Deltas))
	for i, d := range e.Deltas {
		deltas[i] = api.Share{UserID: d.UserID, Amount: d.Amount.String()}
	}
	return &api.Entry{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Amount:      e.Amount.String(),
		Description: e.Description,
		Category:    e.Category,
		Type:        string(e.Type),
		SplitMethod: string(e.SplitMethod),
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		DeletedAt:   e.DeletedAt,
		Shares:      toAPIShares(e.Shares),
		Deltas:      deltas,
	}
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		EntryID:    s.EntryID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount.String(),
		Note:       s.Note,
		CreatedBy:  s.CreatedBy,
		CreatedAt:  s.CreatedAt,
	}
}

func toAPIBalances(balances []models.MemberBalance) []api.MemberBalance {
	out := make([]api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = api.MemberBalance{UserID: b.UserID, NetBalance: b.NetBalance.String()}
	}
	return out
}

func toAPITransfers(transfers []calculator.Transfer) []api.Transfer {
	out := make([]api.Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = api.Transfer{FromUserID: t.From, ToUserID: t.To, Amount: t.Amount.String()}
	}
	return out
}

func toAPISplitRequest(r *models.SplitRequest) *api.SplitRequest {
	participants := make([]api.SplitParticipant, len(r.Participants))
	for i, p := range r.Participants {
		participants[i] = api.SplitParticipant{
			UserID:         p.UserID,
			AmountOwed:     p.AmountOwed.String(),
			AmountPaid:     p.AmountPaid.String(),
			Status:         string(p.Status),
			PaidAt:         p.PaidAt,
			ReminderSentAt: p.ReminderSentAt,
		}
	}
	return &api.SplitRequest{
		ID:           r.ID,
		RequesterID:  r.RequesterID,
		GroupID:      r.GroupID,
		Description:  r.Description,
		Amount:       r.Amount.String(),
		SplitMethod:  string(r.SplitMethod),
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Participants: participants,
	}
}
