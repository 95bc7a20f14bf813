package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Without a Redis client the cache must degrade: reads miss, writes
// fail with ErrCacheUnavailable, and nothing panics.
func TestVehicleCacheWithoutClient(t *testing.T) {
	c := NewVehicleCache(nil, time.Minute)
	ctx := context.Background()

	got, ok := c.GetPublicVehicles(ctx)
	assert.False(t, ok)
	assert.Nil(t, got)

	assert.ErrorIs(t, c.SetPublicVehicles(ctx, nil), ErrCacheUnavailable)
	assert.ErrorIs(t, c.Invalidate(ctx), ErrCacheUnavailable)
}

func TestNewVehicleCacheDefaultTTL(t *testing.T) {
	c := NewVehicleCache(nil, 0)
	assert.Equal(t, 5*time.Minute, c.TTL)

	c = NewVehicleCache(nil, 30*time.Second)
	assert.Equal(t, 30*time.Second, c.TTL)
}
