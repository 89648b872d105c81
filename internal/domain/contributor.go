package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role enumerates supported capabilities.
type Role string

const (
	RoleDonor      Role = "donor"
	RoleAdmin      Role = "admin"
	RoleBatchStaff Role = "batch_staff"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleAdmin, RoleBatchStaff:
		return true
	}
	return false
}

// Contributor is a person who may donate. DonationCount and TotalDonated are
// informational running totals; pool accounting never reads them.
type Contributor struct {
	ID            string
	PublicID      string
	Name          string
	Email         string
	Role          Role
	Locale        string
	DonationCount int
	TotalDonated  decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsAdmin reports whether the contributor holds administrator capability.
func (c Contributor) IsAdmin() bool {
	return c.Role == RoleAdmin
}
