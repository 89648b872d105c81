package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// ContributorRepository defines access methods for contributors.
type ContributorRepository interface {
	Create(ctx context.Context, contributor *Contributor) error
	GetByID(ctx context.Context, id string) (*Contributor, error)
	GetByEmail(ctx context.Context, email string) (*Contributor, error)
	// UpdateLedger persists the public id and running totals.
	UpdateLedger(ctx context.Context, contributor *Contributor) error
}

// ContributionRepository handles contribution persistence.
type ContributionRepository interface {
	Create(ctx context.Context, contribution *Contribution) error
	GetByID(ctx context.Context, id string) (*Contribution, error)
	// Transition persists status, public id and decision fields only when the
	// stored status still equals from. Otherwise it returns ErrInvalidState.
	Transition(ctx context.Context, contribution *Contribution, from ContributionStatus) error
	// ListCountedByPool returns the contributions that count toward the pool,
	// oldest first.
	ListCountedByPool(ctx context.Context, poolID string) ([]Contribution, error)
}

// PoolRepository handles pool persistence. Aggregate writes are
// compare-and-swap on Pool.Version and fail with ErrConcurrencyConflict.
type PoolRepository interface {
	Create(ctx context.Context, pool *Pool) error
	GetByID(ctx context.Context, id string) (*Pool, error)
	// List returns every pool in creation order.
	List(ctx context.Context) ([]Pool, error)
	// ListActive returns active pools in creation order.
	ListActive(ctx context.Context) ([]Pool, error)
	// Credit adds amount to the aggregate and memberID to the member set
	// (add-if-absent).
	Credit(ctx context.Context, poolID string, amount decimal.Decimal, memberID string, expectedVersion int) (*Pool, error)
	// Restate overwrites the aggregate and member set.
	Restate(ctx context.Context, poolID string, current decimal.Decimal, members []string, expectedVersion int) (*Pool, error)
	SetStatus(ctx context.Context, poolID string, status PoolStatus, expectedVersion int) (*Pool, error)
}

// NotificationRepository stores direct and topic notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	// ListFor returns notifications addressed to readerID or published on one of topics, newest first.
	ListFor(ctx context.Context, readerID string, topics []string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, notificationID, readerID string, topics []string) error
}

// Repositories groups the repositories sharing one storage session.
type Repositories struct {
	Contributors  ContributorRepository
	Contributions ContributionRepository
	Pools         PoolRepository
	Notifications NotificationRepository
}

// Store exposes repositories and a transactional unit of work.
type Store interface {
	Repos() Repositories
	// Atomic runs fn with repositories bound to a single transaction. Every
	// write made through them commits together or not at all.
	Atomic(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
