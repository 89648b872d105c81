package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PoolStatus enumerates pool lifecycle states.
type PoolStatus string

const (
	PoolActive    PoolStatus = "active"
	PoolCompleted PoolStatus = "completed"
	PoolCancelled PoolStatus = "cancelled"
)

// Valid reports whether s is a known pool status.
func (s PoolStatus) Valid() bool {
	switch s {
	case PoolActive, PoolCompleted, PoolCancelled:
		return true
	}
	return false
}

// Pool is a target-bounded fundraising aggregate. CurrentAmount and Members are
// derived from the counted contributions referencing the pool; Version guards
// every aggregate write.
type Pool struct {
	ID            string
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Members       []string
	Status        PoolStatus
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Fits reports whether amount can join the pool without exceeding its target.
func (p Pool) Fits(amount decimal.Decimal) bool {
	return p.CurrentAmount.Add(amount).LessThanOrEqual(p.TargetAmount)
}

// Remaining returns the amount still needed to reach the target (never negative).
func (p Pool) Remaining() decimal.Decimal {
	rest := p.TargetAmount.Sub(p.CurrentAmount)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// OverTarget reports whether the aggregate drifted past the target.
func (p Pool) OverTarget() bool {
	return p.CurrentAmount.GreaterThan(p.TargetAmount)
}

// HasMember reports whether contributorID is in the member set.
func (p Pool) HasMember(contributorID string) bool {
	for _, m := range p.Members {
		if m == contributorID {
			return true
		}
	}
	return false
}
