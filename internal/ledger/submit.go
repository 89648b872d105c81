package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"donationhub/internal/domain"
	"donationhub/internal/notify"
)

// Submission is the input of Submit. An empty ContributorID means the actor
// donates for themselves; Method defaults to manual.
type Submission struct {
	ContributorID string
	Amount        decimal.Decimal
	PoolOptIn     *bool
	Method        domain.PaymentMethod
	Note          string
	Country       string
}

// Submit records a provisional contribution, tagging it with the first active
// pool that still fits when the admission policy allows. Tagging never touches
// the pool aggregate. Gateway contributions are approved immediately by the
// system actor and announced on the admins topic; only administrators (the
// gateway's service token) may record them.
func (s *Service) Submit(ctx context.Context, actor Actor, sub Submission) (*domain.Contribution, error) {
	if sub.ContributorID == "" {
		sub.ContributorID = actor.ID
	}
	if sub.Method == "" {
		sub.Method = domain.PaymentManual
	}

	ctx, span := s.tracer.Start(ctx, "ledger.submit", trace.WithAttributes(
		attribute.String("contributor.id", sub.ContributorID),
		attribute.String("amount", sub.Amount.String()),
		attribute.String("method", string(sub.Method)),
	))
	defer span.End()

	if sub.ContributorID != actor.ID && !actor.Admin {
		return nil, fail(span, fmt.Errorf("submit for %s: %w", sub.ContributorID, domain.ErrForbidden))
	}
	if !sub.Amount.IsPositive() {
		return nil, fail(span, fmt.Errorf("amount %s must be positive: %w", sub.Amount, domain.ErrInvalidAmount))
	}
	if !sub.Method.Valid() {
		return nil, fail(span, fmt.Errorf("payment method %q: %w", sub.Method, domain.ErrInvalidInput))
	}
	if !sub.Method.RequiresApproval() && !actor.Admin {
		return nil, fail(span, fmt.Errorf("%s contributions are recorded by the gateway: %w", sub.Method, domain.ErrForbidden))
	}

	repos := s.store.Repos()
	contributor, err := repos.Contributors.GetByID(ctx, sub.ContributorID)
	if err != nil {
		return nil, fail(span, fmt.Errorf("contributor %s: %w", sub.ContributorID, err))
	}

	c := &domain.Contribution{
		ContributorID: contributor.ID,
		Amount:        sub.Amount,
		Method:        sub.Method,
		Status:        domain.ContributionProvisional,
		Note:          sub.Note,
		Country:       sub.Country,
	}

	var pool *domain.Pool
	eligible := s.policy.Eligible(sub.Amount, sub.PoolOptIn)
	if eligible {
		pools, err := repos.Pools.ListActive(ctx)
		if err != nil {
			return nil, fail(span, fmt.Errorf("list active pools: %w", err))
		}
		if pool = SelectPool(pools, sub.Amount); pool != nil {
			c.PoolID = &pool.ID
		}
	}
	span.SetAttributes(attribute.Bool("admission.eligible", eligible), attribute.Bool("pool.tagged", pool != nil))

	if err := repos.Contributions.Create(ctx, c); err != nil {
		return nil, fail(span, fmt.Errorf("create contribution: %w", err))
	}
	s.metrics.submitted.Add(ctx, 1)

	log := s.logger.Info().
		Str("contribution_id", c.ID).
		Str("contributor_id", c.ContributorID).
		Str("amount", c.Amount.String()).
		Bool("eligible", eligible)
	if pool != nil {
		log = log.Str("pool_id", pool.ID)
	}
	log.Msg("contribution submitted")

	if pool != nil {
		s.notifier.Notify(ctx, contributor.ID, contributor.Locale, notify.Message{
			Kind:     notify.KindPoolAssigned,
			Category: domain.NotificationInfo,
			Args:     []any{formatAmount(c.Amount), pool.Name},
		})
	}

	if c.Method.RequiresApproval() {
		return c, nil
	}

	res, err := s.Approve(ctx, SystemActor, c.ID)
	if err != nil {
		return c, fail(span, fmt.Errorf("auto-approve %s: %w", c.ID, err))
	}
	s.notifier.Broadcast(ctx, domain.TopicAdmins, notify.Message{
		Kind:     notify.KindAutoApproved,
		Category: domain.NotificationInfo,
		Args:     []any{contributor.Name, formatAmount(c.Amount)},
	})
	return res.Contribution, nil
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
