package models

import "errors"

// Domain errors returned by the ledger. Callers wrap them with context and
// test with errors.Is.
var (
	// ErrInvalidSplit means the shares do not reconcile to the total.
	ErrInvalidSplit = errors.New("invalid split")

	// ErrBalanceConsistency means a balance change would break the zero-sum invariant.
	ErrBalanceConsistency = errors.New("balance consistency violation")

	// ErrInvalidSettlement means the settlement parameters are unacceptable.
	ErrInvalidSettlement = errors.New("invalid settlement")

	// ErrNotAMember means the actor or a participant does not belong to the group.
	ErrNotAMember = errors.New("not a member of the group")

	// ErrTerminalState means a completed or cancelled split request was mutated.
	ErrTerminalState = errors.New("split request is in a terminal state")

	// ErrNotFound means the addressed record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor may not perform the operation on this record.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidArgument covers malformed input not covered by a more specific error.
	ErrInvalidArgument = errors.New("invalid argument")
)

var errorReasons = []struct {
	err    error
	reason string
}{
	{ErrInvalidSplit, "invalid_split"},
	{ErrBalanceConsistency, "balance_consistency"},
	{ErrInvalidSettlement, "invalid_settlement"},
	{ErrNotAMember, "not_a_member"},
	{ErrTerminalState, "terminal_state"},
	{ErrNotFound, "not_found"},
	{ErrForbidden, "forbidden"},
	{ErrInvalidArgument, "invalid_argument"},
}

// ErrorReason returns a short label for the first domain error in err's
// chain, or "" if there is none.
func ErrorReason(err error) string {
	for _, r := range errorReasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ""
}
