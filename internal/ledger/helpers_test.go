package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"donationhub/internal/adapter/memstore"
	"donationhub/internal/domain"
	"donationhub/internal/notify"
)

type sent struct {
	recipient string
	topic     string
	locale    string
	msg       notify.Message
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recordingNotifier) Notify(_ context.Context, recipientID, locale string, msg notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{recipient: recipientID, locale: locale, msg: msg})
}

func (r *recordingNotifier) Broadcast(_ context.Context, topic string, msg notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{topic: topic, msg: msg})
}

func (r *recordingNotifier) kinds(recipient string) []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Kind
	for _, s := range r.sent {
		if s.recipient == recipient {
			out = append(out, s.msg.Kind)
		}
	}
	return out
}

func (r *recordingNotifier) broadcasts(topic string) []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Message
	for _, s := range r.sent {
		if s.topic == topic {
			out = append(out, s.msg)
		}
	}
	return out
}

type fixture struct {
	store *memstore.Store
	notes *recordingNotifier
	svc   *Service
	admin Actor
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	return newFixtureWithStore(t, memstore.New(), Options{})
}

func newFixtureWithStore(t testing.TB, store *memstore.Store, opts Options) *fixture {
	t.Helper()
	notes := &recordingNotifier{}
	opts.Logger = zerolog.Nop()
	if opts.RetryInterval == 0 {
		opts.RetryInterval = time.Millisecond
	}
	f := &fixture{store: store, notes: notes}
	f.svc = NewService(store, notes, opts)
	admin := &domain.Contributor{Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin}
	require.NoError(t, f.svc.RegisterContributor(context.Background(), admin))
	f.admin = Actor{ID: admin.ID, Admin: true, Locale: "en"}
	return f
}

func (f *fixture) withService(store domain.Store, opts Options) *Service {
	opts.Logger = zerolog.Nop()
	if opts.RetryInterval == 0 {
		opts.RetryInterval = time.Millisecond
	}
	return NewService(store, f.notes, opts)
}

var donorSeq atomic.Int64

func (f *fixture) donor(t testing.TB) (*domain.Contributor, Actor) {
	t.Helper()
	n := donorSeq.Add(1)
	c := &domain.Contributor{
		Name:   "Donor",
		Email:  "donor" + decimal.NewFromInt(n).String() + "@example.com",
		Locale: "id",
	}
	require.NoError(t, f.svc.RegisterContributor(context.Background(), c))
	return c, Actor{ID: c.ID, Locale: c.Locale}
}

func (f *fixture) pool(t testing.TB, target, current int64) *domain.Pool {
	t.Helper()
	p, err := f.svc.CreatePool(context.Background(), f.admin, "Pool", decimal.NewFromInt(target))
	require.NoError(t, err)
	if current != 0 {
		f.store.Drift(p.ID, decimal.NewFromInt(current), nil)
		p, err = f.svc.GetPool(context.Background(), p.ID)
		require.NoError(t, err)
	}
	return p
}

func (f *fixture) submit(t testing.TB, actor Actor, amount int64, optIn *bool) *domain.Contribution {
	t.Helper()
	c, err := f.svc.Submit(context.Background(), actor, Submission{Amount: decimal.NewFromInt(amount), PoolOptIn: optIn})
	require.NoError(t, err)
	return c
}

func boolPtr(b bool) *bool { return &b }

// flakyStore fails the first n pool credits with a version conflict.
type flakyStore struct {
	*memstore.Store
	remaining atomic.Int32
}

func (f *flakyStore) Atomic(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	return f.Store.Atomic(ctx, func(ctx context.Context, repos domain.Repositories) error {
		repos.Pools = flakyPools{PoolRepository: repos.Pools, owner: f}
		return fn(ctx, repos)
	})
}

type flakyPools struct {
	domain.PoolRepository
	owner *flakyStore
}

func (p flakyPools) Credit(ctx context.Context, poolID string, amount decimal.Decimal, memberID string, expectedVersion int) (*domain.Pool, error) {
	if p.owner.remaining.Add(-1) >= 0 {
		return nil, domain.ErrConcurrencyConflict
	}
	return p.PoolRepository.Credit(ctx, poolID, amount, memberID, expectedVersion)
}
