package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/plant_shop/internal/actor"
	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/pkg/metrics"
)

type memCache struct {
	entries map[string]time.Time
}

func newMemCache() *memCache { return &memCache{entries: map[string]time.Time{}} }

func (c *memCache) Get(_ context.Context, id string) (time.Time, bool, error) {
	exp, ok := c.entries[id]
	return exp, ok, nil
}

func (c *memCache) Set(_ context.Context, id string, exp time.Time) error {
	c.entries[id] = exp
	return nil
}

func (c *memCache) Delete(_ context.Context, id string) error {
	delete(c.entries, id)
	return nil
}

func newGuestService(t *testing.T) (*GuestService, *clock, *memCache) {
	t.Helper()
	clk := newClock()
	cache := newMemCache()
	return &GuestService{
		Repo:    newTestRepo(t),
		Cache:   cache,
		TTL:     24 * time.Hour,
		Metrics: metrics.NewServerMetrics(prometheus.NewRegistry()),
		Now:     clk.Now,
	}, clk, cache
}

func TestGenerateGuestID(t *testing.T) {
	t.Parallel()

	a, b := GenerateGuestID(), GenerateGuestID()
	assert.True(t, strings.HasPrefix(a, GuestIDPrefix))
	assert.Len(t, a, len(GuestIDPrefix)+32)
	assert.NotEqual(t, a, b)
}

func TestGuestSession_Lifecycle(t *testing.T) {
	t.Parallel()
	s, clk, cache := newGuestService(t)
	ctx := context.Background()

	sess, err := s.CreateSession(ctx, "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(24*time.Hour), sess.ExpiresAt.UTC())
	assert.Contains(t, cache.entries, sess.ID)

	ok, err := s.IsValid(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	clk.Advance(20 * time.Hour)
	exp, err := s.ExtendSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(24*time.Hour), exp)

	clk.Advance(23 * time.Hour)
	ok, err = s.Touch(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	clk.Advance(25 * time.Hour)
	ok, err = s.Touch(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.ExtendSession(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotContains(t, cache.entries, sess.ID)
}

func TestGuestSession_RejectsUnknownTokens(t *testing.T) {
	t.Parallel()
	s, _, _ := newGuestService(t)
	ctx := context.Background()

	for _, id := range []string{"", "abc", "guest_doesnotexist"} {
		ok, err := s.IsValid(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok, id)
	}
}

func TestGuestSession_CleanExpired(t *testing.T) {
	t.Parallel()
	s, clk, cache := newGuestService(t)
	ctx := context.Background()
	carts := &CartService{Repo: s.Repo}
	favs := &FavoriteService{Repo: s.Repo}
	p := seedProduct(t, s.Repo, "Monstera", "100.00", "")

	old, err := s.CreateSession(ctx, "", "")
	require.NoError(t, err)
	_, err = carts.AddLine(ctx, actor.Guest(old.ID), p.ID, models.VariantCutting, 1)
	require.NoError(t, err)
	require.NoError(t, favs.Add(ctx, actor.Guest(old.ID), p.ID))

	clk.Advance(12 * time.Hour)
	fresh, err := s.CreateSession(ctx, "", "")
	require.NoError(t, err)

	clk.Advance(13 * time.Hour)
	n, err := s.CleanExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotContains(t, cache.entries, old.ID)

	ok, err := s.IsValid(ctx, fresh.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	lines, err := s.Repo.CartLines(ctx, models.GuestOwner(old.ID))
	require.NoError(t, err)
	assert.Empty(t, lines)
	left, err := s.Repo.AllFavorites(ctx, models.GuestOwner(old.ID))
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestMigrate_MergesCartAndFavorites(t *testing.T) {
	t.Parallel()
	s, _, cache := newGuestService(t)
	ctx := context.Background()
	carts := &CartService{Repo: s.Repo}
	favs := &FavoriteService{Repo: s.Repo}
	a := seedProduct(t, s.Repo, "Monstera", "100.00", "")
	b := seedProduct(t, s.Repo, "Pothos", "20.00", "")

	sess, err := s.CreateSession(ctx, "", "")
	require.NoError(t, err)
	guest := actor.Guest(sess.ID)
	user := actor.User(uuid.New(), "user")

	_, err = carts.AddLine(ctx, user, a.ID, models.VariantCutting, 3)
	require.NoError(t, err)
	_, err = carts.AddLine(ctx, guest, a.ID, models.VariantCutting, 2)
	require.NoError(t, err)
	_, err = carts.AddLine(ctx, guest, b.ID, models.VariantCutting, 1)
	require.NoError(t, err)
	require.NoError(t, favs.Add(ctx, user, a.ID))
	require.NoError(t, favs.Add(ctx, guest, a.ID))
	require.NoError(t, favs.Add(ctx, guest, b.ID))

	res, err := s.Migrate(ctx, sess.ID, user.UserID())
	require.NoError(t, err)
	assert.Equal(t, &MigrationResult{MovedLines: 1, MergedLines: 1, MovedFavorites: 1, DroppedFavorites: 1}, res)

	view, err := carts.GetCart(ctx, user)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, 5, lineFor(t, view, a.ID).Quantity)
	assert.Equal(t, 1, lineFor(t, view, b.ID).Quantity)

	guestLines, err := s.Repo.CartLines(ctx, models.GuestOwner(sess.ID))
	require.NoError(t, err)
	assert.Empty(t, guestLines)

	userFavs, err := s.Repo.AllFavorites(ctx, models.UserOwner(user.UserID()))
	require.NoError(t, err)
	assert.Len(t, userFavs, 2)

	ok, err := s.IsValid(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotContains(t, cache.entries, sess.ID)
	assert.Equal(t, float64(1), testutil.ToFloat64(s.Metrics.CartMigrations))

	_, err = s.Migrate(ctx, sess.ID, user.UserID())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMigrate_ExpiredSession(t *testing.T) {
	t.Parallel()
	s, clk, _ := newGuestService(t)
	ctx := context.Background()

	sess, err := s.CreateSession(ctx, "", "")
	require.NoError(t, err)
	clk.Advance(25 * time.Hour)

	_, err = s.Migrate(ctx, sess.ID, uuid.New())
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.Migrate(ctx, sess.ID, uuid.Nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMigrate_IgnoresStaleCachedSession(t *testing.T) {
	t.Parallel()
	s, clk, cache := newGuestService(t)
	ctx := context.Background()
	carts := &CartService{Repo: s.Repo}
	p := seedProduct(t, s.Repo, "Monstera", "100.00", "")

	sess, err := s.CreateSession(ctx, "", "")
	require.NoError(t, err)
	guest := actor.Guest(sess.ID)
	_, err = carts.AddLine(ctx, guest, p.ID, models.VariantCutting, 2)
	require.NoError(t, err)

	// the row is gone while the cache still vouches for it
	require.NoError(t, s.Repo.DeleteGuestSession(ctx, sess.ID))
	cache.entries[sess.ID] = clk.Now().Add(time.Hour)
	ok, err := s.IsValid(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, ok)

	user := actor.User(uuid.New(), "user")
	_, err = s.Migrate(ctx, sess.ID, user.UserID())
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotContains(t, cache.entries, sess.ID)

	userLines, err := s.Repo.CartLines(ctx, models.UserOwner(user.UserID()))
	require.NoError(t, err)
	assert.Empty(t, userLines)
	guestLines, err := s.Repo.CartLines(ctx, models.GuestOwner(sess.ID))
	require.NoError(t, err)
	assert.Len(t, guestLines, 1)
}
