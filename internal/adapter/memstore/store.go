// Package memstore is an in-memory domain.Store used in development and tests.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"donationhub/internal/domain"
)

type state struct {
	contributors      map[string]domain.Contributor
	contributions     map[string]domain.Contribution
	contributionOrder []string
	pools             map[string]domain.Pool
	poolOrder         []string
	notifications     []domain.Notification
	reads             map[string]map[string]struct{}
}

func newState() *state {
	return &state{
		contributors:  make(map[string]domain.Contributor),
		contributions: make(map[string]domain.Contribution),
		pools:         make(map[string]domain.Pool),
		reads:         make(map[string]map[string]struct{}),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.contributors {
		c.contributors[k] = v
	}
	for k, v := range s.contributions {
		c.contributions[k] = copyContribution(v)
	}
	for k, v := range s.pools {
		c.pools[k] = copyPool(v)
	}
	c.contributionOrder = append([]string(nil), s.contributionOrder...)
	c.poolOrder = append([]string(nil), s.poolOrder...)
	c.notifications = append([]domain.Notification(nil), s.notifications...)
	for k, readers := range s.reads {
		m := make(map[string]struct{}, len(readers))
		for r := range readers {
			m[r] = struct{}{}
		}
		c.reads[k] = m
	}
	return c
}

// Store keeps every entity in process memory. Atomic serializes units of work
// and discards their writes when fn fails.
type Store struct {
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{data: newState(), now: time.Now}
}

// Repos returns repositories whose calls are individually synchronized.
func (s *Store) Repos() domain.Repositories {
	return s.view(&s.mu, func() *state { return s.data })
}

// Atomic runs fn against a private copy of the data and publishes it on success.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	working := s.data.clone()
	if err := fn(ctx, s.view(nopLocker{}, func() *state { return working })); err != nil {
		return err
	}
	s.data = working
	return nil
}

func (s *Store) view(lock sync.Locker, st func() *state) domain.Repositories {
	v := &view{lock: lock, st: st, now: s.now}
	return domain.Repositories{
		Contributors:  contributorRepo{v},
		Contributions: contributionRepo{v},
		Pools:         poolRepo{v},
		Notifications: notificationRepo{v},
	}
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

type view struct {
	lock sync.Locker
	st   func() *state
	now  func() time.Time
}

func (v *view) do(fn func(st *state) error) error {
	v.lock.Lock()
	defer v.lock.Unlock()
	return fn(v.st())
}

type contributorRepo struct{ v *view }

func (r contributorRepo) Create(_ context.Context, c *domain.Contributor) error {
	return r.v.do(func(st *state) error {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if _, ok := st.contributors[c.ID]; ok {
			return fmt.Errorf("contributor %s already exists", c.ID)
		}
		for _, existing := range st.contributors {
			if strings.EqualFold(existing.Email, c.Email) {
				return fmt.Errorf("contributor email %s already exists", c.Email)
			}
		}
		now := r.v.now()
		c.CreatedAt, c.UpdatedAt = now, now
		st.contributors[c.ID] = *c
		return nil
	})
}

func (r contributorRepo) GetByID(_ context.Context, id string) (*domain.Contributor, error) {
	var out domain.Contributor
	err := r.v.do(func(st *state) error {
		c, ok := st.contributors[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r contributorRepo) GetByEmail(_ context.Context, email string) (*domain.Contributor, error) {
	var out *domain.Contributor
	err := r.v.do(func(st *state) error {
		for _, c := range st.contributors {
			if strings.EqualFold(c.Email, email) {
				c := c
				out = &c
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r contributorRepo) UpdateLedger(_ context.Context, c *domain.Contributor) error {
	return r.v.do(func(st *state) error {
		stored, ok := st.contributors[c.ID]
		if !ok {
			return domain.ErrNotFound
		}
		stored.PublicID = c.PublicID
		stored.DonationCount = c.DonationCount
		stored.TotalDonated = c.TotalDonated
		stored.UpdatedAt = r.v.now()
		st.contributors[c.ID] = stored
		c.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

type contributionRepo struct{ v *view }

func (r contributionRepo) Create(_ context.Context, c *domain.Contribution) error {
	return r.v.do(func(st *state) error {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if _, ok := st.contributions[c.ID]; ok {
			return fmt.Errorf("contribution %s already exists", c.ID)
		}
		if c.Pooled() {
			if _, ok := st.pools[*c.PoolID]; !ok {
				return fmt.Errorf("pool %s: %w", *c.PoolID, domain.ErrNotFound)
			}
		}
		now := r.v.now()
		c.CreatedAt, c.UpdatedAt = now, now
		st.contributions[c.ID] = copyContribution(*c)
		st.contributionOrder = append(st.contributionOrder, c.ID)
		return nil
	})
}

func (r contributionRepo) GetByID(_ context.Context, id string) (*domain.Contribution, error) {
	var out domain.Contribution
	err := r.v.do(func(st *state) error {
		c, ok := st.contributions[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = copyContribution(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r contributionRepo) Transition(_ context.Context, c *domain.Contribution, from domain.ContributionStatus) error {
	return r.v.do(func(st *state) error {
		stored, ok := st.contributions[c.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if stored.Status != from {
			return fmt.Errorf("contribution %s is %s: %w", c.ID, stored.Status, domain.ErrInvalidState)
		}
		stored.Status = c.Status
		stored.PublicID = c.PublicID
		stored.DecidedBy = c.DecidedBy
		stored.DecidedAt = c.DecidedAt
		stored.UpdatedAt = r.v.now()
		st.contributions[c.ID] = stored
		c.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

func (r contributionRepo) ListCountedByPool(_ context.Context, poolID string) ([]domain.Contribution, error) {
	var out []domain.Contribution
	err := r.v.do(func(st *state) error {
		for _, id := range st.contributionOrder {
			c := st.contributions[id]
			if c.Pooled() && *c.PoolID == poolID && c.Status.CountsTowardPool() {
				out = append(out, copyContribution(c))
			}
		}
		return nil
	})
	return out, err
}

// Seed stores c as-is, bypassing lifecycle rules. Tests use it to stage
// contributions in arbitrary states.
func (s *Store) Seed(c domain.Contribution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := s.data.contributions[c.ID]; !exists {
		s.data.contributionOrder = append(s.data.contributionOrder, c.ID)
	}
	s.data.contributions[c.ID] = copyContribution(c)
}

// Drift overwrites a pool aggregate without touching its version, simulating
// an out-of-band write.
func (s *Store) Drift(poolID string, current decimal.Decimal, members []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.pools[poolID]
	if !ok {
		return
	}
	p.CurrentAmount = current
	p.Members = append([]string(nil), members...)
	s.data.pools[poolID] = p
}

type poolRepo struct{ v *view }

func (r poolRepo) Create(_ context.Context, p *domain.Pool) error {
	return r.v.do(func(st *state) error {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, ok := st.pools[p.ID]; ok {
			return fmt.Errorf("pool %s already exists", p.ID)
		}
		if p.Status == "" {
			p.Status = domain.PoolActive
		}
		if p.Version == 0 {
			p.Version = 1
		}
		if p.Members == nil {
			p.Members = []string{}
		}
		now := r.v.now()
		p.CreatedAt, p.UpdatedAt = now, now
		st.pools[p.ID] = copyPool(*p)
		st.poolOrder = append(st.poolOrder, p.ID)
		return nil
	})
}

func (r poolRepo) GetByID(_ context.Context, id string) (*domain.Pool, error) {
	var out domain.Pool
	err := r.v.do(func(st *state) error {
		p, ok := st.pools[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = copyPool(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r poolRepo) List(_ context.Context) ([]domain.Pool, error) {
	return r.list(func(domain.Pool) bool { return true })
}

func (r poolRepo) ListActive(_ context.Context) ([]domain.Pool, error) {
	return r.list(func(p domain.Pool) bool { return p.Status == domain.PoolActive })
}

func (r poolRepo) list(keep func(domain.Pool) bool) ([]domain.Pool, error) {
	var out []domain.Pool
	err := r.v.do(func(st *state) error {
		for _, id := range st.poolOrder {
			if p := st.pools[id]; keep(p) {
				out = append(out, copyPool(p))
			}
		}
		return nil
	})
	return out, err
}

func (r poolRepo) Credit(_ context.Context, poolID string, amount decimal.Decimal, memberID string, expectedVersion int) (*domain.Pool, error) {
	return r.swap(poolID, expectedVersion, func(p *domain.Pool) {
		p.CurrentAmount = p.CurrentAmount.Add(amount)
		if !p.HasMember(memberID) {
			p.Members = append(p.Members, memberID)
		}
	})
}

func (r poolRepo) Restate(_ context.Context, poolID string, current decimal.Decimal, members []string, expectedVersion int) (*domain.Pool, error) {
	return r.swap(poolID, expectedVersion, func(p *domain.Pool) {
		p.CurrentAmount = current
		p.Members = append([]string{}, members...)
	})
}

func (r poolRepo) SetStatus(_ context.Context, poolID string, status domain.PoolStatus, expectedVersion int) (*domain.Pool, error) {
	return r.swap(poolID, expectedVersion, func(p *domain.Pool) {
		p.Status = status
	})
}

func (r poolRepo) swap(poolID string, expectedVersion int, mutate func(p *domain.Pool)) (*domain.Pool, error) {
	var out domain.Pool
	err := r.v.do(func(st *state) error {
		p, ok := st.pools[poolID]
		if !ok {
			return domain.ErrNotFound
		}
		if p.Version != expectedVersion {
			return fmt.Errorf("pool %s at version %d, expected %d: %w", poolID, p.Version, expectedVersion, domain.ErrConcurrencyConflict)
		}
		p = copyPool(p)
		mutate(&p)
		p.Version++
		p.UpdatedAt = r.v.now()
		st.pools[poolID] = p
		out = copyPool(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type notificationRepo struct{ v *view }

func (r notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	return r.v.do(func(st *state) error {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		n.CreatedAt = r.v.now()
		st.notifications = append(st.notifications, *n)
		return nil
	})
}

func (r notificationRepo) ListFor(_ context.Context, readerID string, topics []string, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	err := r.v.do(func(st *state) error {
		for i := len(st.notifications) - 1; i >= 0; i-- {
			n := st.notifications[i]
			if !visible(n, readerID, topics) {
				continue
			}
			_, n.Read = st.reads[n.ID][readerID]
			out = append(out, n)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r notificationRepo) MarkRead(_ context.Context, notificationID, readerID string, topics []string) error {
	return r.v.do(func(st *state) error {
		for _, n := range st.notifications {
			if n.ID != notificationID {
				continue
			}
			if !visible(n, readerID, topics) {
				return domain.ErrNotFound
			}
			if st.reads[n.ID] == nil {
				st.reads[n.ID] = make(map[string]struct{})
			}
			st.reads[n.ID][readerID] = struct{}{}
			return nil
		}
		return domain.ErrNotFound
	})
}

func visible(n domain.Notification, readerID string, topics []string) bool {
	if n.RecipientID != "" {
		return n.RecipientID == readerID
	}
	for _, t := range topics {
		if t == n.Topic {
			return true
		}
	}
	return false
}

func copyPool(p domain.Pool) domain.Pool {
	p.Members = append([]string{}, p.Members...)
	return p
}

func copyContribution(c domain.Contribution) domain.Contribution {
	if c.PoolID != nil {
		id := *c.PoolID
		c.PoolID = &id
	}
	if c.DecidedAt != nil {
		at := *c.DecidedAt
		c.DecidedAt = &at
	}
	return c
}
