package calculator

import (
	"sort"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
)

// Transfer is a suggested payment from a debtor to a creditor.
type Transfer struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount money.Amount
}

type position struct {
	userID string
	amount money.Amount // always positive
}

// SuggestSettlements turns net balances into a short list of payments that
// would bring every balance to zero.
//
// Algorithm:
// - Split members into debtors (negative balance) and creditors (positive)
// - Sort both by amount, largest first, ties by user ID
// - Greedy: match the current debtor with the current creditor for the
//   smaller of the two amounts, advance whichever is exhausted
//
// The result is a suggestion shown to users; settlements may record any amount.
func SuggestSettlements(balances []models.MemberBalance) []Transfer {
	var debtors, creditors []position
	for _, b := range balances {
		switch {
		case b.NetBalance < 0:
			debtors = append(debtors, position{userID: b.UserID, amount: -b.NetBalance})
		case b.NetBalance > 0:
			creditors = append(creditors, position{userID: b.UserID, amount: b.NetBalance})
		}
	}
	sortPositions(debtors)
	sortPositions(creditors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].amount
		if creditors[j].amount < amount {
			amount = creditors[j].amount
		}

		transfers = append(transfers, Transfer{
			From:   debtors[i].userID,
			To:     creditors[j].userID,
			Amount: amount,
		})

		debtors[i].amount -= amount
		creditors[j].amount -= amount

		if debtors[i].amount == 0 {
			i++
		}
		if creditors[j].amount == 0 {
			j++
		}
	}

	return transfers
}

func sortPositions(p []position) {
	sort.Slice(p, func(a, b int) bool {
		if p[a].amount != p[b].amount {
			return p[a].amount > p[b].amount
		}
		return p[a].userID < p[b].userID
	})
}
