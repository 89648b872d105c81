package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"donationhub/internal/domain"
	"donationhub/internal/notify"
)

// ApprovalResult carries the minted public identifiers and the committed state.
type ApprovalResult struct {
	ContributorPublicID  string
	ContributionPublicID string
	Contribution         *domain.Contribution
	// Pool is the credited pool, nil for unpooled contributions.
	Pool *domain.Pool
	// OverTarget is set when crediting pushed the pool past its target.
	OverTarget bool
}

type approval struct {
	result      ApprovalResult
	contributor *domain.Contributor
}

// Approve confirms a provisional contribution. Status, public identifiers,
// contributor totals and the pool credit commit in one unit of work; the pool
// write is a compare-and-swap retried on version conflicts. The target is not
// re-checked, so a pool may end over target.
func (s *Service) Approve(ctx context.Context, actor Actor, contributionID string) (*ApprovalResult, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.approve", trace.WithAttributes(
		attribute.String("contribution.id", contributionID),
		attribute.String("actor.id", actor.ID),
	))
	defer span.End()

	if !actor.Admin {
		return nil, fail(span, fmt.Errorf("approve %s: %w", contributionID, domain.ErrForbidden))
	}

	out, err := retry(ctx, s, span, func() (*approval, error) {
		return s.approveOnce(ctx, actor, contributionID)
	})
	if err != nil {
		return nil, fail(span, err)
	}
	s.metrics.approved.Add(ctx, 1)

	res := &out.result
	c := res.Contribution
	event := s.logger.Info().
		Str("contribution_id", c.ID).
		Str("contribution_public_id", res.ContributionPublicID).
		Str("actor_id", actor.ID).
		Str("amount", c.Amount.String())
	if res.Pool != nil {
		span.SetAttributes(attribute.String("pool.id", res.Pool.ID), attribute.Int("pool.version", res.Pool.Version))
		event = event.Str("pool_id", res.Pool.ID).Str("pool_current", res.Pool.CurrentAmount.String())
	}
	event.Msg("contribution approved")

	s.announceApproval(ctx, actor, out)
	return res, nil
}

func (s *Service) approveOnce(ctx context.Context, actor Actor, contributionID string) (*approval, error) {
	var out approval
	err := s.store.Atomic(ctx, func(ctx context.Context, repos domain.Repositories) error {
		c, err := repos.Contributions.GetByID(ctx, contributionID)
		if err != nil {
			return fmt.Errorf("contribution %s: %w", contributionID, err)
		}
		if c.Status != domain.ContributionProvisional {
			return fmt.Errorf("approve contribution %s in state %s: %w", c.ID, c.Status, domain.ErrInvalidState)
		}

		contributor, err := repos.Contributors.GetByID(ctx, c.ContributorID)
		if err != nil {
			return fmt.Errorf("contributor %s of contribution %s: %w", c.ContributorID, c.ID, err)
		}

		if contributor.PublicID == "" {
			contributor.PublicID = s.ids.Contributor()
		}
		if c.PublicID == "" {
			c.PublicID = s.ids.Contribution()
		}
		decidedAt := s.now().UTC()
		c.Status = domain.ContributionConfirmed
		c.DecidedBy = actor.ID
		c.DecidedAt = &decidedAt
		if err := repos.Contributions.Transition(ctx, c, domain.ContributionProvisional); err != nil {
			return err
		}

		contributor.DonationCount++
		contributor.TotalDonated = contributor.TotalDonated.Add(c.Amount)
		if err := repos.Contributors.UpdateLedger(ctx, contributor); err != nil {
			return fmt.Errorf("update contributor %s: %w", contributor.ID, err)
		}

		out = approval{
			result: ApprovalResult{
				ContributorPublicID:  contributor.PublicID,
				ContributionPublicID: c.PublicID,
				Contribution:         c,
			},
			contributor: contributor,
		}

		if !c.Pooled() {
			return nil
		}
		pool, err := repos.Pools.GetByID(ctx, *c.PoolID)
		if err != nil {
			return fmt.Errorf("pool %s: %w", *c.PoolID, err)
		}
		credited, err := repos.Pools.Credit(ctx, pool.ID, c.Amount, contributor.ID, pool.Version)
		if err != nil {
			return err
		}
		out.result.Pool = credited
		out.result.OverTarget = credited.OverTarget()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) announceApproval(ctx context.Context, actor Actor, out *approval) {
	res := out.result
	c := res.Contribution
	contributor := out.contributor

	if res.Pool == nil {
		s.notifier.Notify(ctx, contributor.ID, contributor.Locale, notify.Message{
			Kind:     notify.KindDonationConfirmedDirect,
			Category: domain.NotificationSuccess,
			Args:     []any{formatAmount(c.Amount)},
		})
		return
	}

	if !actor.IsSystem() {
		s.notifier.Notify(ctx, actor.ID, actor.Locale, notify.Message{
			Kind:     notify.KindMemberAdded,
			Category: domain.NotificationInfo,
			Args:     []any{contributor.Name, res.Pool.Name},
		})
	}
	s.notifier.Notify(ctx, contributor.ID, contributor.Locale, notify.Message{
		Kind:     notify.KindDonationConfirmed,
		Category: domain.NotificationSuccess,
		Args:     []any{formatAmount(c.Amount), res.Pool.Name},
	})

	if res.OverTarget {
		s.logger.Warn().
			Str("pool_id", res.Pool.ID).
			Str("current", res.Pool.CurrentAmount.String()).
			Str("target", res.Pool.TargetAmount.String()).
			Msg("pool over target after approval")
		s.notifier.Broadcast(ctx, domain.TopicAdmins, notify.Message{
			Kind:     notify.KindPoolOverTarget,
			Category: domain.NotificationWarning,
			Args:     []any{res.Pool.Name, formatAmount(res.Pool.CurrentAmount), formatAmount(res.Pool.TargetAmount)},
		})
	}
}

// Reject moves a provisional contribution to rejected. It has no pool or
// contributor side effects.
func (s *Service) Reject(ctx context.Context, actor Actor, contributionID string) error {
	ctx, span := s.tracer.Start(ctx, "ledger.reject", trace.WithAttributes(
		attribute.String("contribution.id", contributionID),
		attribute.String("actor.id", actor.ID),
	))
	defer span.End()

	if !actor.Admin {
		return fail(span, fmt.Errorf("reject %s: %w", contributionID, domain.ErrForbidden))
	}

	repos := s.store.Repos()
	c, err := repos.Contributions.GetByID(ctx, contributionID)
	if err != nil {
		return fail(span, fmt.Errorf("contribution %s: %w", contributionID, err))
	}
	if c.Status != domain.ContributionProvisional {
		return fail(span, fmt.Errorf("reject contribution %s in state %s: %w", c.ID, c.Status, domain.ErrInvalidState))
	}

	decidedAt := s.now().UTC()
	c.Status = domain.ContributionRejected
	c.DecidedBy = actor.ID
	c.DecidedAt = &decidedAt
	if err := repos.Contributions.Transition(ctx, c, domain.ContributionProvisional); err != nil {
		return fail(span, err)
	}
	s.metrics.rejected.Add(ctx, 1)
	s.logger.Info().Str("contribution_id", c.ID).Str("actor_id", actor.ID).Msg("contribution rejected")

	locale := ""
	if contributor, err := repos.Contributors.GetByID(ctx, c.ContributorID); err == nil {
		locale = contributor.Locale
	}
	s.notifier.Notify(ctx, c.ContributorID, locale, notify.Message{
		Kind:     notify.KindDonationRejected,
		Category: domain.NotificationWarning,
		Args:     []any{formatAmount(c.Amount)},
	})
	return nil
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConcurrencyConflict)
}
