package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donationhub/internal/domain"
)

func seedPool(t *testing.T, s *Store, target int64) *domain.Pool {
	t.Helper()
	p := &domain.Pool{Name: "school kits", TargetAmount: decimal.NewFromInt(target)}
	require.NoError(t, s.Repos().Pools.Create(context.Background(), p))
	return p
}

func TestCreditIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedPool(t, s, 1000)

	updated, err := s.Repos().Pools.Credit(ctx, p.ID, decimal.NewFromInt(300), "u-1", p.Version)
	require.NoError(t, err)
	assert.True(t, updated.CurrentAmount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, []string{"u-1"}, updated.Members)
	assert.Equal(t, p.Version+1, updated.Version)

	_, err = s.Repos().Pools.Credit(ctx, p.ID, decimal.NewFromInt(50), "u-2", p.Version)
	require.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	stored, err := s.Repos().Pools.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentAmount.Equal(decimal.NewFromInt(300)), "stale credit must not mutate")
	assert.Equal(t, []string{"u-1"}, stored.Members)

	again, err := s.Repos().Pools.Credit(ctx, p.ID, decimal.NewFromInt(50), "u-1", stored.Version)
	require.NoError(t, err)
	assert.Equal(t, []string{"u-1"}, again.Members, "member set is add-if-absent")
}

func TestAtomicDiscardsWritesOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedPool(t, s, 1000)
	boom := errors.New("boom")

	err := s.Atomic(ctx, func(ctx context.Context, repos domain.Repositories) error {
		_, err := repos.Pools.Credit(ctx, p.ID, decimal.NewFromInt(400), "u-1", p.Version)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := s.Repos().Pools.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentAmount.IsZero())
	assert.Empty(t, stored.Members)
	assert.Equal(t, p.Version, stored.Version)
}

func TestAtomicPublishesWritesOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedPool(t, s, 1000)

	err := s.Atomic(ctx, func(ctx context.Context, repos domain.Repositories) error {
		_, err := repos.Pools.Restate(ctx, p.ID, decimal.NewFromInt(10), []string{"a", "b"}, p.Version)
		return err
	})
	require.NoError(t, err)

	stored, err := s.Repos().Pools.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, stored.Members)
}

func TestTransitionRequiresExpectedStatus(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := &domain.Contribution{ContributorID: "u-1", Amount: decimal.NewFromInt(10), Status: domain.ContributionProvisional}
	require.NoError(t, s.Repos().Contributions.Create(ctx, c))

	c.Status = domain.ContributionRejected
	require.NoError(t, s.Repos().Contributions.Transition(ctx, c, domain.ContributionProvisional))

	c.Status = domain.ContributionConfirmed
	err := s.Repos().Contributions.Transition(ctx, c, domain.ContributionProvisional)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	err = s.Repos().Contributions.Transition(ctx, &domain.Contribution{ID: "nope"}, domain.ContributionProvisional)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateContributionRejectsUnknownPool(t *testing.T) {
	missing := "missing"
	c := &domain.Contribution{ContributorID: "u-1", PoolID: &missing, Amount: decimal.NewFromInt(10)}
	err := New().Repos().Contributions.Create(context.Background(), c)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListCountedByPoolKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := seedPool(t, s, 1000)
	other := seedPool(t, s, 1000)

	statuses := []domain.ContributionStatus{
		domain.ContributionConfirmed,
		domain.ContributionProvisional,
		domain.ContributionDelivered,
		domain.ContributionRejected,
		domain.ContributionInTransit,
	}
	for i, st := range statuses {
		s.Seed(domain.Contribution{
			ID:            string(rune('a' + i)),
			ContributorID: "u",
			PoolID:        &p.ID,
			Amount:        decimal.NewFromInt(int64(i + 1)),
			Status:        st,
		})
	}
	s.Seed(domain.Contribution{ID: "z", ContributorID: "u", PoolID: &other.ID, Amount: decimal.NewFromInt(9), Status: domain.ContributionConfirmed})

	got, err := s.Repos().Contributions.ListCountedByPool(ctx, p.ID)
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"a", "c", "e"}, ids)
}

func TestNotificationsVisibilityAndReads(t *testing.T) {
	ctx := context.Background()
	repo := New().Repos().Notifications

	direct := &domain.Notification{RecipientID: "u-1", Message: "hi", Category: domain.NotificationInfo}
	broadcast := &domain.Notification{Topic: domain.TopicAdmins, Message: "auto", Category: domain.NotificationInfo}
	require.NoError(t, repo.Create(ctx, direct))
	require.NoError(t, repo.Create(ctx, broadcast))

	donorView, err := repo.ListFor(ctx, "u-1", nil, 0)
	require.NoError(t, err)
	require.Len(t, donorView, 1)
	assert.Equal(t, direct.ID, donorView[0].ID)

	adminView, err := repo.ListFor(ctx, "admin-1", []string{domain.TopicAdmins}, 0)
	require.NoError(t, err)
	require.Len(t, adminView, 1)

	require.ErrorIs(t, repo.MarkRead(ctx, broadcast.ID, "u-1", nil), domain.ErrNotFound)
	require.NoError(t, repo.MarkRead(ctx, broadcast.ID, "admin-1", []string{domain.TopicAdmins}))

	adminView, err = repo.ListFor(ctx, "admin-1", []string{domain.TopicAdmins}, 0)
	require.NoError(t, err)
	assert.True(t, adminView[0].Read)

	otherAdmin, err := repo.ListFor(ctx, "admin-2", []string{domain.TopicAdmins}, 1)
	require.NoError(t, err)
	assert.False(t, otherAdmin[0].Read, "reads are tracked per reader")
}
