package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
)

var (
	oneHundred = decimal.NewFromInt(100)

	// percentageTolerance is how far percentages may drift from 100 in total.
	percentageTolerance = decimal.RequireFromString("0.01")
)

// ComputeShares divides total among participants using the given method.
//
// inputs carries per-participant percentages (percentage) or absolute amounts
// in major units (exact); it is ignored for equal splits. The returned shares
// follow the participant order and always sum to total exactly. Any rounding
// remainder goes to the first participant.
func ComputeShares(total money.Amount, participants []string, method models.SplitMethod, inputs map[string]decimal.Decimal) ([]models.Share, error) {
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total must be greater than zero", models.ErrInvalidSplit)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: must have at least one participant", models.ErrInvalidSplit)
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p == "" {
			return nil, fmt.Errorf("%w: participant id cannot be empty", models.ErrInvalidSplit)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: duplicate participant %s", models.ErrInvalidSplit, p)
		}
		seen[p] = true
	}

	switch method {
	case models.SplitEqual:
		return equalShares(total, participants), nil
	case models.SplitPercentage:
		return percentageShares(total, participants, inputs)
	case models.SplitExact:
		return exactShares(total, participants, inputs)
	default:
		return nil, fmt.Errorf("%w: unknown split method %q", models.ErrInvalidSplit, method)
	}
}

func equalShares(total money.Amount, participants []string) []models.Share {
	n := money.Amount(len(participants))
	base := total / n
	remainder := total - base*n

	shares := make([]models.Share, len(participants))
	for i, p := range participants {
		shares[i] = models.Share{UserID: p, Amount: base}
	}
	shares[0].Amount += remainder
	return shares
}

func percentageShares(total money.Amount, participants []string, inputs map[string]decimal.Decimal) ([]models.Share, error) {
	sum := decimal.Zero
	for _, p := range participants {
		pct, ok := inputs[p]
		if !ok {
			return nil, fmt.Errorf("%w: missing percentage for %s", models.ErrInvalidSplit, p)
		}
		if pct.IsNegative() {
			return nil, fmt.Errorf("%w: negative percentage for %s", models.ErrInvalidSplit, p)
		}
		sum = sum.Add(pct)
	}
	if sum.Sub(oneHundred).Abs().GreaterThan(percentageTolerance) {
		return nil, fmt.Errorf("%w: percentages sum to %s, want 100", models.ErrInvalidSplit, sum.String())
	}
	if err := rejectUnknownInputs(participants, inputs); err != nil {
		return nil, err
	}

	totalDec := total.Decimal()
	shares := make([]models.Share, len(participants))
	var allocated money.Amount
	for i, p := range participants {
		value := totalDec.Mul(inputs[p]).Div(oneHundred)
		if value.GreaterThan(totalDec) {
			return nil, fmt.Errorf("%w: share for %s exceeds total", models.ErrInvalidSplit, p)
		}
		amount := money.RoundDecimal(value)
		shares[i] = models.Share{UserID: p, Amount: amount}
		var err error
		if allocated, err = allocated.Add(amount); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidSplit, err)
		}
	}
	// Rounding (and the tolerance band) can leave a few minor units over or under.
	shares[0].Amount += total - allocated
	if shares[0].Amount < 0 {
		return nil, fmt.Errorf("%w: rounding residual exceeds first share", models.ErrInvalidSplit)
	}
	return shares, nil
}

func exactShares(total money.Amount, participants []string, inputs map[string]decimal.Decimal) ([]models.Share, error) {
	shares := make([]models.Share, len(participants))
	var sum money.Amount
	for i, p := range participants {
		value, ok := inputs[p]
		if !ok {
			return nil, fmt.Errorf("%w: missing amount for %s", models.ErrInvalidSplit, p)
		}
		amount, err := money.FromDecimal(value)
		if err != nil {
			return nil, fmt.Errorf("%w: amount for %s: %v", models.ErrInvalidSplit, p, err)
		}
		if amount < 0 {
			return nil, fmt.Errorf("%w: negative amount for %s", models.ErrInvalidSplit, p)
		}
		if amount > total {
			return nil, fmt.Errorf("%w: amount for %s exceeds total %s", models.ErrInvalidSplit, p, total)
		}
		shares[i] = models.Share{UserID: p, Amount: amount}
		if sum, err = sum.Add(amount); err != nil {
			return nil, fmt.Errorf("%w: amounts overflow: %v", models.ErrInvalidSplit, err)
		}
	}
	if sum != total {
		return nil, fmt.Errorf("%w: amounts sum to %s, want %s", models.ErrInvalidSplit, sum, total)
	}
	if err := rejectUnknownInputs(participants, inputs); err != nil {
		return nil, err
	}
	return shares, nil
}

// rejectUnknownInputs catches inputs addressed to someone outside the split,
// which would otherwise be silently ignored.
func rejectUnknownInputs(participants []string, inputs map[string]decimal.Decimal) error {
	if len(inputs) == len(participants) {
		return nil
	}
	known := make(map[string]bool, len(participants))
	for _, p := range participants {
		known[p] = true
	}
	for id := range inputs {
		if !known[id] {
			return fmt.Errorf("%w: input for non-participant %s", models.ErrInvalidSplit, id)
		}
	}
	return nil
}
