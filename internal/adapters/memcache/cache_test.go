package memcache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelmap/internal/adapters/memcache"
	"hotelmap/internal/domain"
)

func TestCache_RoundTrip(t *testing.T) {
	c := memcache.New(time.Hour, time.Minute)
	ctx := context.Background()

	var got domain.Location
	ok, err := c.Get(ctx, "geo:bali", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "geo:bali", domain.Location{Lat: -8.4, Lng: 115.2}, 60))
	ok, err = c.Get(ctx, "geo:bali", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Location{Lat: -8.4, Lng: 115.2}, got)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Del(ctx, "geo:bali"))
	ok, _ = c.Get(ctx, "geo:bali", &got)
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c := memcache.New(time.Hour, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", domain.Location{Lat: 1, Lng: 1}, 1))
	time.Sleep(1100 * time.Millisecond)

	var got domain.Location
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}
