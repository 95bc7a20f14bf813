// Package cache implements the read-through cache for the public
// vehicle listing. A single shared key holds the serialized snapshot;
// any mutation that can change which vehicles are publicly listable
// deletes the key before its request completes. The TTL is only a
// backstop bounding staleness when an invalidation is lost.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/fleet-booking/internal/model"
)

// PublicVehiclesKey is the shared cache key for the public listing.
const PublicVehiclesKey = "public:vehicles"

// ErrCacheUnavailable is returned by writes when no Redis client is
// configured. Reads never return it; they report a miss instead so the
// listing degrades to hitting the database.
var ErrCacheUnavailable = errors.New("availability cache unavailable")

// VehicleCache is the availability cache handle. A nil client disables
// caching entirely: every read misses and every write fails with
// ErrCacheUnavailable, which callers log and ignore.
type VehicleCache struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewVehicleCache(rdb *redis.Client, ttl time.Duration) *VehicleCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &VehicleCache{RDB: rdb, TTL: ttl}
}

// GetPublicVehicles returns the cached snapshot and true on a hit. Any
// failure (no client, connection error, undecodable payload) counts as
// a miss.
func (c *VehicleCache) GetPublicVehicles(ctx context.Context) ([]model.PublicVehicle, bool) {
	if c == nil || c.RDB == nil {
		return nil, false
	}
	bs, err := c.RDB.Get(ctx, PublicVehiclesKey).Bytes()
	if err != nil {
		return nil, false
	}
	var out []model.PublicVehicle
	if err := json.Unmarshal(bs, &out); err != nil {
		return nil, false
	}
	return out, true
}

// SetPublicVehicles stores a freshly computed snapshot with the
// configured TTL.
func (c *VehicleCache) SetPublicVehicles(ctx context.Context, vehicles []model.PublicVehicle) error {
	if c == nil || c.RDB == nil {
		return ErrCacheUnavailable
	}
	bs, err := json.Marshal(vehicles)
	if err != nil {
		return err
	}
	return c.RDB.SetEx(ctx, PublicVehiclesKey, bs, c.TTL).Err()
}

// Invalidate deletes the snapshot. It must run before the triggering
// mutation responds; a concurrent reader may still repopulate the key
// from pre-mutation state, a race the TTL bounds.
func (c *VehicleCache) Invalidate(ctx context.Context) error {
	if c == nil || c.RDB == nil {
		return ErrCacheUnavailable
	}
	return c.RDB.Del(ctx, PublicVehiclesKey).Err()
}
