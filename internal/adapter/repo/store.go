package repo

import (
	"context"

	"donationhub/internal/domain"
	"donationhub/internal/infra"
)

// Store is the PostgreSQL-backed domain.Store.
type Store struct {
	runner *infra.SQLRunner
}

// NewStore wraps runner. Repos share the pool; Atomic binds them to one transaction.
func NewStore(runner *infra.SQLRunner) *Store {
	return &Store{runner: runner}
}

func (s *Store) Repos() domain.Repositories {
	return reposFor(s.runner)
}

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	err := s.runner.InTx(ctx, func(ctx context.Context, tx *infra.SQLRunner) error {
		return fn(ctx, reposFor(tx))
	})
	return mapErr(err)
}

func reposFor(runner *infra.SQLRunner) domain.Repositories {
	return domain.Repositories{
		Contributors:  NewContributorRepository(runner),
		Contributions: NewContributionRepository(runner),
		Pools:         NewPoolRepository(runner),
		Notifications: NewNotificationRepository(runner),
	}
}

var _ domain.Store = (*Store)(nil)
