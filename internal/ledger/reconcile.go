package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"donationhub/internal/domain"
	"donationhub/internal/notify"
)

// ReconcileReport describes one pool after a reconciliation pass.
type ReconcileReport struct {
	PoolID         string
	PoolName       string
	Before         decimal.Decimal
	After          decimal.Decimal
	MembersAdded   []string
	MembersRemoved []string
	// DanglingContributionIDs lists counted contributions whose contributor
	// cannot be resolved. Their amounts still count; their owners are not members.
	DanglingContributionIDs []string
	Corrected               bool
}

// Reconcile recomputes every pool aggregate from its counted contributions and
// restates pools that drifted. Running it twice without intervening writes
// corrects nothing the second time.
func (s *Service) Reconcile(ctx context.Context, actor Actor) ([]ReconcileReport, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.reconcile", trace.WithAttributes(attribute.String("actor.id", actor.ID)))
	defer span.End()

	if !actor.Admin {
		return nil, fail(span, fmt.Errorf("reconcile: %w", domain.ErrForbidden))
	}

	pools, err := s.store.Repos().Pools.List(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list pools: %w", err))
	}

	reports := make([]ReconcileReport, 0, len(pools))
	corrected := 0
	for _, p := range pools {
		rep, err := retry(ctx, s, span, func() (*ReconcileReport, error) {
			return s.reconcileOnce(ctx, p.ID)
		})
		if err != nil {
			return reports, fail(span, fmt.Errorf("reconcile pool %s: %w", p.ID, err))
		}
		reports = append(reports, *rep)

		if len(rep.DanglingContributionIDs) > 0 {
			s.logger.Warn().
				Str("pool_id", rep.PoolID).
				Strs("contribution_ids", rep.DanglingContributionIDs).
				Msg("dangling contributor references")
		}
		if !rep.Corrected {
			continue
		}
		corrected++
		s.metrics.corrections.Add(ctx, 1)
		s.logger.Warn().
			Str("pool_id", rep.PoolID).
			Str("before", rep.Before.String()).
			Str("after", rep.After.String()).
			Strs("members_added", rep.MembersAdded).
			Strs("members_removed", rep.MembersRemoved).
			Msg("pool aggregate corrected")
		s.notifier.Broadcast(ctx, domain.TopicAdmins, notify.Message{
			Kind:     notify.KindPoolCorrected,
			Category: domain.NotificationWarning,
			Args:     []any{rep.PoolName, formatAmount(rep.Before), formatAmount(rep.After)},
		})
	}

	span.SetAttributes(attribute.Int("pools.checked", len(reports)), attribute.Int("pools.corrected", corrected))
	s.logger.Info().Int("pools", len(reports)).Int("corrected", corrected).Str("actor_id", actor.ID).Msg("reconciliation finished")
	return reports, nil
}

func (s *Service) reconcileOnce(ctx context.Context, poolID string) (*ReconcileReport, error) {
	var rep ReconcileReport
	err := s.store.Atomic(ctx, func(ctx context.Context, repos domain.Repositories) error {
		pool, err := repos.Pools.GetByID(ctx, poolID)
		if err != nil {
			return fmt.Errorf("pool %s: %w", poolID, err)
		}
		counted, err := repos.Contributions.ListCountedByPool(ctx, pool.ID)
		if err != nil {
			return fmt.Errorf("list contributions of pool %s: %w", pool.ID, err)
		}

		sum := decimal.Zero
		members := make([]string, 0, len(counted))
		resolved := make(map[string]bool, len(counted))
		rep = ReconcileReport{PoolID: pool.ID, PoolName: pool.Name, Before: pool.CurrentAmount}

		for _, c := range counted {
			sum = sum.Add(c.Amount)
			ok, seen := resolved[c.ContributorID]
			if !seen {
				_, err := repos.Contributors.GetByID(ctx, c.ContributorID)
				switch {
				case err == nil:
					ok = true
					members = append(members, c.ContributorID)
				case errors.Is(err, domain.ErrNotFound):
					ok = false
				default:
					return fmt.Errorf("contributor %s: %w", c.ContributorID, err)
				}
				resolved[c.ContributorID] = ok
			}
			if !ok {
				rep.DanglingContributionIDs = append(rep.DanglingContributionIDs, c.ID)
			}
		}

		rep.After = sum
		rep.MembersAdded = difference(members, pool.Members)
		rep.MembersRemoved = difference(pool.Members, members)
		rep.Corrected = !sum.Equal(pool.CurrentAmount) || len(rep.MembersAdded) > 0 || len(rep.MembersRemoved) > 0
		if !rep.Corrected {
			return nil
		}
		_, err = repos.Pools.Restate(ctx, pool.ID, sum, members, pool.Version)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// difference returns the elements of a missing from b, keeping a's order.
func difference(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, v := range b {
		in[v] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := in[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
