package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/money"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sumShares(shares []models.Share) money.Amount {
	var total money.Amount
	for _, s := range shares {
		total += s.Amount
	}
	return total
}

func TestComputeShares(t *testing.T) {
	tests := []struct {
		name         string
		total        money.Amount
		participants []string
		method       models.SplitMethod
		inputs       map[string]decimal.Decimal
		wantErr      bool
		want         []money.Amount
	}{
		{
			name:         "equal split divides evenly",
			total:        30000,
			participants: []string{"A", "B", "C"},
			method:       models.SplitEqual,
			want:         []money.Amount{10000, 10000, 10000},
		},
		{
			name:         "equal split gives remainder to first participant",
			total:        10000,
			participants: []string{"A", "B", "C"},
			method:       models.SplitEqual,
			want:         []money.Amount{3334, 3333, 3333},
		},
		{
			name:         "equal split single participant",
			total:        999,
			participants: []string{"A"},
			method:       models.SplitEqual,
			want:         []money.Amount{999},
		},
		{
			name:         "percentage split",
			total:        20000,
			participants: []string{"A", "B"},
			method:       models.SplitPercentage,
			inputs:       map[string]decimal.Decimal{"A": dec("75"), "B": dec("25")},
			want:         []money.Amount{15000, 5000},
		},
		{
			name:         "percentage split with thirds reconciles to total",
			total:        10000,
			participants: []string{"A", "B", "C"},
			method:       models.SplitPercentage,
			inputs:       map[string]decimal.Decimal{"A": dec("33.33"), "B": dec("33.33"), "C": dec("33.34")},
			want:         []money.Amount{3333, 3333, 3334},
		},
		{
			name:         "percentage within tolerance gives residual to first",
			total:        10000,
			participants: []string{"A", "B"},
			method:       models.SplitPercentage,
			inputs:       map[string]decimal.Decimal{"A": dec("50.005"), "B": dec("50")},
			want:         []money.Amount{5000, 5000},
		},
		{
			name:         "exact amounts that wrap int64 back to the total",
			total:        1,
			participants: []string{"A", "B", "C"},
			method:       models.SplitExact,
			inputs: map[string]decimal.Decimal{
				"A": dec("92233720368547758.07"),
				"B": dec("92233720368547758.07"),
				"C": dec("0.03"),
			},
			wantErr: true,
		},
		{
			name:         "exact amount larger than total",
			total:        10000,
			participants: []string{"A", "B"},
			method:       models.SplitExact,
			inputs:       map[string]decimal.Decimal{"A": dec("150"), "B": dec("-50")},
			wantErr:      true,
		},
		{
			name:         "percentage share above total",
			total:        10000,
			participants: []string{"A", "B"},
			method:       models.SplitPercentage,
			inputs:       map[string]decimal.Decimal{"A": dec("0"), "B": dec("100.01")},
			wantErr:      true,
		},
		{
			name:         "percentage not summing to 100",
			total:        10000,
			participants: []string{"A", "B"},
			method:       models.SplitPercentage,
			inputs:       map[string]decimal.Decimal{"A": dec("60"), "B": dec("30")},
			wantErr:      true,
		},
		{
			name:         "percentage missing input",
			total:        10000,
			participants: []string{"A", "B"},
			method:       models.SplitPercentage,
			inputs:       map[string]decimal.Decimal{"A": dec("100")},
			wantErr:      true,
		},
		{
			name:         "percentage for non-participant",
			total:        10000,
			participants: []string{"A", "B"},
			method:       models.SplitPercentage,
			inputs:       map[string]decimal.Decimal{"A": dec("50"), "B": dec("50"), "Z": dec("0")},
			wantErr:      true,
		},
		{
			name:         "exact split",
			total:        12000,
			participants: []string{"A", "B", "C"},
			method:       models.SplitExact,
			inputs:       map[string]decimal.Decimal{"A": dec("10"), "B": dec("50.50"), "C": dec("59.50")},
			want:         []money.Amount{1000, 5050, 5950},
		},
		{
			name:         "exact split off by one unit",
			total:        12000,
			participants: []string{"A", "B"},
			method:       models.SplitExact,
			inputs:       map[string]decimal.Decimal{"A": dec("60"), "B": dec("59.99")},
			wantErr:      true,
		},
		{
			name:         "exact split with sub-unit precision",
			total:        1000,
			participants: []string{"A", "B"},
			method:       models.SplitExact,
			inputs:       map[string]decimal.Decimal{"A": dec("5.005"), "B": dec("4.995")},
			wantErr:      true,
		},
		{
			name:         "no participants",
			total:        1000,
			participants: []string{},
			method:       models.SplitEqual,
			wantErr:      true,
		},
		{
			name:         "duplicate participants",
			total:        1000,
			participants: []string{"A", "A"},
			method:       models.SplitEqual,
			wantErr:      true,
		},
		{
			name:         "zero total",
			total:        0,
			participants: []string{"A"},
			method:       models.SplitEqual,
			wantErr:      true,
		},
		{
			name:         "unknown method",
			total:        1000,
			participants: []string{"A"},
			method:       models.SplitMethod("shares"),
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := ComputeShares(tt.total, tt.participants, tt.method, tt.inputs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ComputeShares() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidSplit) {
					t.Errorf("ComputeShares() error = %v, want ErrInvalidSplit", err)
				}
				return
			}
			if len(shares) != len(tt.want) {
				t.Fatalf("got %d shares, want %d", len(shares), len(tt.want))
			}
			for i, s := range shares {
				if s.UserID != tt.participants[i] {
					t.Errorf("share %d user = %s, want %s", i, s.UserID, tt.participants[i])
				}
				if s.Amount != tt.want[i] {
					t.Errorf("share %d (%s) = %d, want %d", i, s.UserID, s.Amount, tt.want[i])
				}
			}
			if got := sumShares(shares); got != tt.total {
				t.Errorf("sum of shares = %d, want %d", got, tt.total)
			}
		})
	}
}

func TestComputeShares_SumAlwaysEqualsTotal(t *testing.T) {
	participants := []string{"A", "B", "C", "D", "E", "F", "G"}
	for total := money.Amount(1); total <= 5000; total += 37 {
		for n := 1; n <= len(participants); n++ {
			shares, err := ComputeShares(total, participants[:n], models.SplitEqual, nil)
			if err != nil {
				t.Fatalf("equal split total=%d n=%d: %v", total, n, err)
			}
			if got := sumShares(shares); got != total {
				t.Fatalf("equal split total=%d n=%d: sum = %d", total, n, got)
			}
		}

		pcts := map[string]decimal.Decimal{"A": dec("33.33"), "B": dec("33.33"), "C": dec("33.34")}
		shares, err := ComputeShares(total, participants[:3], models.SplitPercentage, pcts)
		if err != nil {
			t.Fatalf("percentage split total=%d: %v", total, err)
		}
		if got := sumShares(shares); got != total {
			t.Fatalf("percentage split total=%d: sum = %d", total, got)
		}
	}
}

func TestComputeShares_Deterministic(t *testing.T) {
	first, err := ComputeShares(10001, []string{"A", "B", "C"}, models.SplitEqual, nil)
	if err != nil {
		t.Fatalf("ComputeShares failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := ComputeShares(10001, []string{"A", "B", "C"}, models.SplitEqual, nil)
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d share %d = %+v, want %+v", i, j, again[j], first[j])
			}
		}
	}
}
