package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"donationhub/internal/domain"
)

func TestEligible(t *testing.T) {
	policy := DefaultAdmissionPolicy()
	cases := []struct {
		name   string
		amount string
		optIn  *bool
		want   bool
	}{
		{"in range unspecified", "500", nil, true},
		{"lower bound", "100", nil, true},
		{"upper bound", "7000", nil, true},
		{"just below range", "99.99", nil, false},
		{"just above range", "7000.01", nil, false},
		{"below range", "50", nil, false},
		{"opt-in overrides range", "8000", boolPtr(true), true},
		{"opt-in small amount", "5", boolPtr(true), true},
		{"opt-out in range", "500", boolPtr(false), false},
		{"opt-out above range", "8000", boolPtr(false), false},
		{"zero", "0", nil, false},
		{"negative", "-200", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := policy.Eligible(decimal.RequireFromString(tc.amount), tc.optIn)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEligibleMatchesAdmissionRule(t *testing.T) {
	policy := DefaultAdmissionPolicy()
	lo, hi := decimal.NewFromInt(100), decimal.NewFromInt(7000)

	rapid.Check(t, func(t *rapid.T) {
		amount := decimal.New(rapid.Int64Range(-100_000, 1_000_000).Draw(t, "cents"), -2)
		var optIn *bool
		switch rapid.IntRange(0, 2).Draw(t, "optIn") {
		case 1:
			optIn = boolPtr(true)
		case 2:
			optIn = boolPtr(false)
		}

		inRange := amount.GreaterThanOrEqual(lo) && amount.LessThanOrEqual(hi)
		want := (optIn != nil && *optIn) || (inRange && optIn == nil)
		if got := policy.Eligible(amount, optIn); got != want {
			t.Fatalf("Eligible(%s, %v) = %v, want %v", amount, optIn, got, want)
		}
	})
}

func TestSelectPoolScenarios(t *testing.T) {
	full := domain.Pool{ID: "full", TargetAmount: decimal.NewFromInt(1000), CurrentAmount: decimal.NewFromInt(900), Status: domain.PoolActive}
	roomy := domain.Pool{ID: "roomy", TargetAmount: decimal.NewFromInt(5000), CurrentAmount: decimal.Zero, Status: domain.PoolActive}
	closed := domain.Pool{ID: "closed", TargetAmount: decimal.NewFromInt(5000), Status: domain.PoolCompleted}

	assert.Nil(t, SelectPool([]domain.Pool{full}, decimal.NewFromInt(200)), "900+200 exceeds 1000")
	assert.Equal(t, "full", SelectPool([]domain.Pool{full, roomy}, decimal.NewFromInt(100)).ID, "exact fit is allowed")
	assert.Equal(t, "roomy", SelectPool([]domain.Pool{closed, full, roomy}, decimal.NewFromInt(200)).ID)
	assert.Nil(t, SelectPool(nil, decimal.NewFromInt(1)))
}

func TestSelectPoolIsFirstFit(t *testing.T) {
	statuses := []domain.PoolStatus{domain.PoolActive, domain.PoolActive, domain.PoolCompleted, domain.PoolCancelled}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(t, "pools")
		pools := make([]domain.Pool, n)
		for i := range pools {
			target := rapid.Int64Range(1, 10_000).Draw(t, "target")
			pools[i] = domain.Pool{
				ID:            string(rune('a' + i)),
				TargetAmount:  decimal.NewFromInt(target),
				CurrentAmount: decimal.NewFromInt(rapid.Int64Range(0, target+500).Draw(t, "current")),
				Status:        rapid.SampledFrom(statuses).Draw(t, "status"),
			}
		}
		amount := decimal.NewFromInt(rapid.Int64Range(1, 10_000).Draw(t, "amount"))

		got := SelectPool(pools, amount)
		for i, p := range pools {
			fits := p.Status == domain.PoolActive && p.CurrentAmount.Add(amount).LessThanOrEqual(p.TargetAmount)
			if got != nil && p.ID == got.ID {
				if !fits {
					t.Fatalf("selected pool %s does not fit", p.ID)
				}
				return
			}
			if fits {
				t.Fatalf("pool %d (%s) fits but %v was selected", i, p.ID, got)
			}
		}
		if got != nil {
			t.Fatalf("selected unknown pool %s", got.ID)
		}
	})
}
