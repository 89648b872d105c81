package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributionStatus enumerates contribution lifecycle states.
type ContributionStatus string

const (
	ContributionProvisional ContributionStatus = "provisional"
	ContributionConfirmed   ContributionStatus = "confirmed"
	ContributionRejected    ContributionStatus = "rejected"
	ContributionInTransit   ContributionStatus = "in_transit"
	ContributionDelivered   ContributionStatus = "delivered"
)

// CountsTowardPool reports whether a contribution in this state is part of its
// pool's aggregate. Every state other than provisional and rejected counts.
func (s ContributionStatus) CountsTowardPool() bool {
	switch s {
	case "", ContributionProvisional, ContributionRejected:
		return false
	}
	return true
}

// CountedStatuses lists the states that count toward a pool aggregate.
var CountedStatuses = []ContributionStatus{
	ContributionConfirmed,
	ContributionInTransit,
	ContributionDelivered,
}

// PaymentMethod describes how a contribution was paid.
type PaymentMethod string

const (
	// PaymentManual contributions (bank transfer, cash) wait for an administrator.
	PaymentManual PaymentMethod = "manual"
	// PaymentGateway contributions are settled by a payment provider and
	// confirmed without manual approval.
	PaymentGateway PaymentMethod = "gateway"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentManual || m == PaymentGateway
}

// RequiresApproval reports whether an administrator has to confirm the contribution.
func (m PaymentMethod) RequiresApproval() bool {
	return m != PaymentGateway
}

// Contribution is a single monetary donation event.
type Contribution struct {
	ID            string
	PublicID      string
	ContributorID string
	PoolID        *string
	Amount        decimal.Decimal
	Method        PaymentMethod
	Status        ContributionStatus
	Note          string
	Country       string
	DecidedBy     string
	DecidedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Pooled reports whether the contribution carries a pool reference.
func (c Contribution) Pooled() bool {
	return c.PoolID != nil && *c.PoolID != ""
}
