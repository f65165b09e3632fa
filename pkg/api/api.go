// Package api defines the request and response messages of the group
// ledger RPC services.
//
// Money travels as decimal strings with two fraction digits ("300.00") and
// timestamps as Unix seconds. Enumerations use their lower-case names
// ("expense", "partially_paid"). The message shapes and field numbers are
// declared in proto/groupledger/v1.
package api

// Group is a set of people sharing a ledger.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	CreatedBy string   `json:"created_by"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

// MemberBalance is a member's net position. Positive means the group owes them.
type MemberBalance struct {
	UserID     string `json:"user_id"`
	NetBalance string `json:"net_balance"`
}

// Transfer is a suggested payment that moves balances toward zero.
type Transfer struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     string `json:"amount"`
}

// Share is an amount attributed to one user.
type Share struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

// Entry is an expense, income or settlement recorded in a group.
type Entry struct {
	ID          string  `json:"id"`
	GroupID     string  `json:"group_id"`
	PayerID     string  `json:"payer_id"`
	Amount      string  `json:"amount"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Type        string  `json:"type"`
	SplitMethod string  `json:"split_method,omitempty"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   int64   `json:"created_at"`
	DeletedAt   int64   `json:"deleted_at,omitempty"`
	Shares      []Share `json:"shares"`
	Deltas      []Share `json:"deltas"`
}

// Settlement is a direct payment between two members.
type Settlement struct {
	EntryID    string `json:"entry_id"`
	GroupID    string `json:"group_id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     string `json:"amount"`
	Note       string `json:"note,omitempty"`
	CreatedBy  string `json:"created_by"`
	CreatedAt  int64  `json:"created_at"`
}

// SplitParticipant is one participant's share of a split request.
type SplitParticipant struct {
	UserID         string `json:"user_id"`
	AmountOwed     string `json:"amount_owed"`
	AmountPaid     string `json:"amount_paid"`
	Status         string `json:"status"`
	PaidAt         int64  `json:"paid_at,omitempty"`
	ReminderSentAt int64  `json:"reminder_sent_at,omitempty"`
}

// SplitRequest is an ad-hoc bill awaiting payment from each participant.
type SplitRequest struct {
	ID           string             `json:"id"`
	RequesterID  string             `json:"requester_id"`
	GroupID      string             `json:"group_id,omitempty"`
	Description  string             `json:"description,omitempty"`
	Amount       string             `json:"amount"`
	SplitMethod  string             `json:"split_method"`
	Status       string             `json:"status"`
	CreatedAt    int64              `json:"created_at"`
	UpdatedAt    int64              `json:"updated_at"`
	Participants []SplitParticipant `json:"participants"`
}

// GroupService messages.

type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Type    string   `json:"type,omitempty"`
	Members []string `json:"members,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type AddMemberResponse struct {
	// Added is false when the user was already a member.
	Added bool   `json:"added"`
	Group *Group `json:"group"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type RemoveMemberResponse struct {
	Group *Group `json:"group"`
}

type CreateInviteRequest struct {
	GroupID string `json:"group_id"`
	// TTLSeconds defaults to seven days when zero.
	TTLSeconds int64 `json:"ttl_seconds,omitempty"`
}

type CreateInviteResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type JoinGroupRequest struct {
	Token string `json:"token"`
}

type JoinGroupResponse struct {
	Group *Group `json:"group"`
}

type GetBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetBalancesResponse struct {
	Balances []MemberBalance `json:"balances"`
}

type SuggestSettlementsRequest struct {
	GroupID string `json:"group_id"`
}

type SuggestSettlementsResponse struct {
	Transfers []Transfer `json:"transfers"`
}

// LedgerService messages.

type PreviewSplitRequest struct {
	Amount       string            `json:"amount"`
	SplitMethod  string            `json:"split_method,omitempty"`
	Participants []string          `json:"participants"`
	Inputs       map[string]string `json:"inputs,omitempty"`
}

type PreviewSplitResponse struct {
	Shares []Share `json:"shares"`
}

type CreateEntryRequest struct {
	GroupID     string `json:"group_id"`
	PayerID     string `json:"payer_id"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	// Type is expense (default) or income.
	Type         string            `json:"type,omitempty"`
	SplitMethod  string            `json:"split_method,omitempty"`
	Participants []string          `json:"participants,omitempty"`
	Inputs       map[string]string `json:"inputs,omitempty"`
}

type CreateEntryResponse struct {
	Entry *Entry `json:"entry"`
}

type EditEntryRequest struct {
	EntryID      string            `json:"entry_id"`
	PayerID      string            `json:"payer_id"`
	Amount       string            `json:"amount"`
	Description  string            `json:"description,omitempty"`
	Category     string            `json:"category,omitempty"`
	Type         string            `json:"type,omitempty"`
	SplitMethod  string            `json:"split_method,omitempty"`
	Participants []string          `json:"participants,omitempty"`
	Inputs       map[string]string `json:"inputs,omitempty"`
}

type EditEntryResponse struct {
	Entry *Entry `json:"entry"`
}

type DeleteEntryRequest struct {
	EntryID string `json:"entry_id"`
}

type DeleteEntryResponse struct{}

type GetEntryRequest struct {
	EntryID string `json:"entry_id"`
}

type GetEntryResponse struct {
	Entry *Entry `json:"entry"`
}

type ListEntriesRequest struct {
	GroupID        string `json:"group_id"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

type ListEntriesResponse struct {
	Entries []*Entry `json:"entries"`
}

type SettleRequest struct {
	GroupID    string `json:"group_id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     string `json:"amount"`
	Note       string `json:"note,omitempty"`
}

type SettleResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"group_id"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

// SplitRequestService messages.

type CreateSplitRequestRequest struct {
	GroupID      string            `json:"group_id,omitempty"`
	Description  string            `json:"description,omitempty"`
	Amount       string            `json:"amount"`
	SplitMethod  string            `json:"split_method,omitempty"`
	Participants []string          `json:"participants"`
	Inputs       map[string]string `json:"inputs,omitempty"`
}

type CreateSplitRequestResponse struct {
	SplitRequest *SplitRequest `json:"split_request"`
}

type GetSplitRequestRequest struct {
	SplitRequestID string `json:"split_request_id"`
}

type GetSplitRequestResponse struct {
	SplitRequest *SplitRequest `json:"split_request"`
}

type ListSplitRequestsRequest struct{}

type ListSplitRequestsResponse struct {
	SplitRequests []*SplitRequest `json:"split_requests"`
}

type MarkParticipantPaidRequest struct {
	SplitRequestID string `json:"split_request_id"`
	UserID         string `json:"user_id"`
}

type MarkParticipantPaidResponse struct {
	SplitRequest *SplitRequest `json:"split_request"`
}

type CancelSplitRequestRequest struct {
	SplitRequestID string `json:"split_request_id"`
}

type CancelSplitRequestResponse struct {
	SplitRequest *SplitRequest `json:"split_request"`
}
