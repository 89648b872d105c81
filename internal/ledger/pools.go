package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"donationhub/internal/domain"
)

// CreatePool opens an active pool with an empty aggregate.
func (s *Service) CreatePool(ctx context.Context, actor Actor, name string, target decimal.Decimal) (*domain.Pool, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.create_pool", trace.WithAttributes(attribute.String("actor.id", actor.ID)))
	defer span.End()

	if !actor.Admin {
		return nil, fail(span, fmt.Errorf("create pool: %w", domain.ErrForbidden))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fail(span, fmt.Errorf("pool name is required: %w", domain.ErrInvalidInput))
	}
	if !target.IsPositive() {
		return nil, fail(span, fmt.Errorf("target %s must be positive: %w", target, domain.ErrInvalidAmount))
	}

	p := &domain.Pool{
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: decimal.Zero,
		Members:       []string{},
		Status:        domain.PoolActive,
		Version:       1,
	}
	if err := s.store.Repos().Pools.Create(ctx, p); err != nil {
		return nil, fail(span, fmt.Errorf("create pool: %w", err))
	}
	s.logger.Info().Str("pool_id", p.ID).Str("target", target.String()).Str("actor_id", actor.ID).Msg("pool created")
	return p, nil
}

// SetPoolStatus closes an active pool as completed or cancelled. Closed pools
// keep their aggregate but stop receiving new admissions.
func (s *Service) SetPoolStatus(ctx context.Context, actor Actor, poolID string, status domain.PoolStatus) (*domain.Pool, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.set_pool_status", trace.WithAttributes(
		attribute.String("pool.id", poolID),
		attribute.String("status", string(status)),
	))
	defer span.End()

	if !actor.Admin {
		return nil, fail(span, fmt.Errorf("set pool status: %w", domain.ErrForbidden))
	}
	if status != domain.PoolCompleted && status != domain.PoolCancelled {
		return nil, fail(span, fmt.Errorf("pool status %q: %w", status, domain.ErrInvalidInput))
	}

	updated, err := retry(ctx, s, span, func() (*domain.Pool, error) {
		pools := s.store.Repos().Pools
		p, err := pools.GetByID(ctx, poolID)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", poolID, err)
		}
		if p.Status != domain.PoolActive {
			return nil, fmt.Errorf("pool %s is %s: %w", p.ID, p.Status, domain.ErrInvalidState)
		}
		return pools.SetStatus(ctx, p.ID, status, p.Version)
	})
	if err != nil {
		return nil, fail(span, err)
	}
	s.logger.Info().Str("pool_id", updated.ID).Str("status", string(status)).Str("actor_id", actor.ID).Msg("pool status changed")
	return updated, nil
}

// GetPool returns a pool snapshot.
func (s *Service) GetPool(ctx context.Context, poolID string) (*domain.Pool, error) {
	p, err := s.store.Repos().Pools.GetByID(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", poolID, err)
	}
	return p, nil
}

// GetContribution returns a contribution to its owner or an administrator.
// Other callers see ErrNotFound so ids cannot be probed.
func (s *Service) GetContribution(ctx context.Context, actor Actor, contributionID string) (*domain.Contribution, error) {
	c, err := s.store.Repos().Contributions.GetByID(ctx, contributionID)
	if err != nil {
		return nil, fmt.Errorf("contribution %s: %w", contributionID, err)
	}
	if !actor.Admin && c.ContributorID != actor.ID {
		return nil, fmt.Errorf("contribution %s: %w", contributionID, domain.ErrNotFound)
	}
	return c, nil
}

// RegisterContributor creates a contributor record. The identity collaborator
// owns authentication; this only stores the profile used by the ledger.
func (s *Service) RegisterContributor(ctx context.Context, c *domain.Contributor) error {
	c.Email = strings.TrimSpace(c.Email)
	c.Name = strings.TrimSpace(c.Name)
	if c.Email == "" || c.Name == "" {
		return fmt.Errorf("name and email are required: %w", domain.ErrInvalidInput)
	}
	if c.Role == "" {
		c.Role = domain.RoleDonor
	}
	if !c.Role.Valid() {
		return fmt.Errorf("role %q: %w", c.Role, domain.ErrInvalidInput)
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if err := s.store.Repos().Contributors.Create(ctx, c); err != nil {
		return fmt.Errorf("create contributor: %w", err)
	}
	s.logger.Info().Str("contributor_id", c.ID).Str("role", string(c.Role)).Msg("contributor registered")
	return nil
}

// LookupContributor finds a contributor by email.
func (s *Service) LookupContributor(ctx context.Context, email string) (*domain.Contributor, error) {
	c, err := s.store.Repos().Contributors.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("contributor %s: %w", email, err)
	}
	return c, nil
}
