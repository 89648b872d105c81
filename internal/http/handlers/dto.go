package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"donationhub/internal/domain"
	"donationhub/internal/ledger"
)

type contributionDTO struct {
	ID            string          `json:"id"`
	PublicID      string          `json:"public_id,omitempty"`
	ContributorID string          `json:"contributor_id"`
	PoolID        *string         `json:"pool_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	Note          string          `json:"note,omitempty"`
	Country       string          `json:"country,omitempty"`
	DecidedBy     string          `json:"decided_by,omitempty"`
	DecidedAt     *time.Time      `json:"decided_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toContributionDTO(c *domain.Contribution) contributionDTO {
	return contributionDTO{
		ID:            c.ID,
		PublicID:      c.PublicID,
		ContributorID: c.ContributorID,
		PoolID:        c.PoolID,
		Amount:        c.Amount,
		Method:        string(c.Method),
		Status:        string(c.Status),
		Note:          c.Note,
		Country:       c.Country,
		DecidedBy:     c.DecidedBy,
		DecidedAt:     c.DecidedAt,
		CreatedAt:     c.CreatedAt,
	}
}

type poolDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Members       []string        `json:"members"`
	Status        string          `json:"status"`
	Version       int             `json:"version"`
	OverTarget    bool            `json:"over_target"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func toPoolDTO(p *domain.Pool) *poolDTO {
	if p == nil {
		return nil
	}
	members := p.Members
	if members == nil {
		members = []string{}
	}
	return &poolDTO{
		ID:            p.ID,
		Name:          p.Name,
		TargetAmount:  p.TargetAmount,
		CurrentAmount: p.CurrentAmount,
		Members:       members,
		Status:        string(p.Status),
		Version:       p.Version,
		OverTarget:    p.OverTarget(),
		UpdatedAt:     p.UpdatedAt,
	}
}

type approvalDTO struct {
	Contribution         contributionDTO `json:"contribution"`
	Pool                 *poolDTO        `json:"pool"`
	ContributorPublicID  string          `json:"contributor_public_id"`
	ContributionPublicID string          `json:"contribution_public_id"`
	OverTarget           bool            `json:"over_target"`
}

func toApprovalDTO(res *ledger.ApprovalResult) approvalDTO {
	return approvalDTO{
		Contribution:         toContributionDTO(res.Contribution),
		Pool:                 toPoolDTO(res.Pool),
		ContributorPublicID:  res.ContributorPublicID,
		ContributionPublicID: res.ContributionPublicID,
		OverTarget:           res.OverTarget,
	}
}

// ReconcileReportDTO is the wire form of a reconciliation report.
type ReconcileReportDTO struct {
	PoolID                  string          `json:"pool_id"`
	PoolName                string          `json:"pool_name"`
	Before                  decimal.Decimal `json:"before"`
	After                   decimal.Decimal `json:"after"`
	MembersAdded            []string        `json:"members_added"`
	MembersRemoved          []string        `json:"members_removed"`
	DanglingContributionIDs []string        `json:"dangling_contribution_ids"`
	Corrected               bool            `json:"corrected"`
}

// ToReconcileDTOs is shared with the operator CLI so both print the same shape.
func ToReconcileDTOs(reports []ledger.ReconcileReport) []ReconcileReportDTO {
	out := make([]ReconcileReportDTO, 0, len(reports))
	for _, r := range reports {
		out = append(out, ReconcileReportDTO{
			PoolID:                  r.PoolID,
			PoolName:                r.PoolName,
			Before:                  r.Before,
			After:                   r.After,
			MembersAdded:            nonNil(r.MembersAdded),
			MembersRemoved:          nonNil(r.MembersRemoved),
			DanglingContributionIDs: nonNil(r.DanglingContributionIDs),
			Corrected:               r.Corrected,
		})
	}
	return out
}

type notificationDTO struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic,omitempty"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationDTOs(items []domain.Notification) []notificationDTO {
	out := make([]notificationDTO, 0, len(items))
	for _, n := range items {
		out = append(out, notificationDTO{
			ID:        n.ID,
			Topic:     n.Topic,
			Message:   n.Message,
			Category:  string(n.Category),
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
