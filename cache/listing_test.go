package cache

import (
	"context"
	"eventers-ticketing/model"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListings(t *testing.T) (*Listings, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewListings(client, 30*time.Second), mr
}

func listing() []model.PublicEvent {
	e := model.Event{EventID: 3, Title: "Rooftop Sessions", Price: 1500, Capacity: 10, Sold: 4}
	return []model.PublicEvent{model.NewPublicEvent(e)}
}

func TestListingsRoundTrip(t *testing.T) {
	l, _ := newListings(t)
	ctx := context.Background()

	_, gen, ok, err := l.Get(ctx, "type=concert")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Set(ctx, "type=concert", gen, listing()))

	got, _, ok, err := l.Get(ctx, "type=concert")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].EventID)
	assert.Equal(t, 6, got[0].Available)
}

func TestInvalidateOrphansEveryListing(t *testing.T) {
	l, _ := newListings(t)
	ctx := context.Background()

	require.NoError(t, l.Set(ctx, "a", 0, listing()))
	require.NoError(t, l.Set(ctx, "b", 0, listing()))
	require.NoError(t, l.Invalidate(ctx))

	for _, key := range []string{"a", "b"} {
		_, _, ok, err := l.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestListingsExpire(t *testing.T) {
	l, mr := newListings(t)
	ctx := context.Background()

	require.NoError(t, l.Set(ctx, "a", 0, listing()))
	mr.FastForward(31 * time.Second)

	_, _, ok, err := l.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListingsReportUnavailableRedis(t *testing.T) {
	l, mr := newListings(t)
	mr.Close()

	_, _, _, err := l.Get(context.Background(), "a")
	assert.Error(t, err)
	assert.Error(t, l.Invalidate(context.Background()))
}

func TestListingReadBeforeInvalidateIsNeverServed(t *testing.T) {
	l, _ := newListings(t)
	ctx := context.Background()

	_, gen, ok, err := l.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, l.Invalidate(ctx))
	require.NoError(t, l.Set(ctx, "k", gen, listing()))

	_, current, ok, err := l.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "a listing read before the invalidation must not be served after it")
	assert.Equal(t, gen+1, current)

	require.NoError(t, l.Set(ctx, "k", current, listing()))
	_, _, ok, err = l.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}
