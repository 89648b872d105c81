package ledger

import (
	"github.com/shopspring/decimal"

	"donationhub/internal/domain"
)

// AdmissionPolicy decides whether a submitted amount searches for a pool.
// Min and Max are inclusive.
type AdmissionPolicy struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// DefaultAdmissionPolicy admits amounts in [100, 7000].
func DefaultAdmissionPolicy() AdmissionPolicy {
	return AdmissionPolicy{Min: decimal.NewFromInt(100), Max: decimal.NewFromInt(7000)}
}

// Eligible evaluates the tri-state opt-in. An explicit opt-in always searches,
// an explicit opt-out never does, otherwise the amount must fall in range.
func (p AdmissionPolicy) Eligible(amount decimal.Decimal, optIn *bool) bool {
	if optIn != nil && *optIn {
		return true
	}
	if optIn != nil {
		return false
	}
	if !amount.IsPositive() {
		return false
	}
	return amount.GreaterThanOrEqual(p.Min) && amount.LessThanOrEqual(p.Max)
}

// SelectPool returns the first active pool, in the given order, that still fits
// amount. It returns nil when none qualifies.
func SelectPool(pools []domain.Pool, amount decimal.Decimal) *domain.Pool {
	for i := range pools {
		if pools[i].Status != domain.PoolActive {
			continue
		}
		if pools[i].Fits(amount) {
			p := pools[i]
			return &p
		}
	}
	return nil
}
