package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"hotelfront/internal/app/policies"
	"hotelfront/internal/domain/hotels"
)

const (
	keyPrefix    = "hotelfront:"
	locationsKey = keyPrefix + "locations"
)

// KV is the slice of the redis API the catalog cache needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Recorder counts lookups by result ("hit", "miss", "error").
type Recorder interface {
	CacheLookup(kind, result string)
}

// Catalog caches hotel details and the location list in front of another
// catalog. Listing pages and search results always go to the backend. Redis
// failures degrade to a backend call.
type Catalog struct {
	next    policies.HotelCatalog
	kv      KV
	ttl     time.Duration
	logger  *slog.Logger
	metrics Recorder
}

var (
	_ policies.HotelCatalog       = (*Catalog)(nil)
	_ policies.CatalogInvalidator = (*Catalog)(nil)
)

func NewCatalog(next policies.HotelCatalog, kv KV, ttl time.Duration, logger *slog.Logger, metrics Recorder) *Catalog {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Catalog{next: next, kv: kv, ttl: ttl, logger: logger, metrics: metrics}
}

func hotelKey(id string) string {
	return keyPrefix + "hotel:" + id
}

func (c *Catalog) ListHotels(ctx context.Context, q policies.CatalogQuery) (hotels.Page, error) {
	return c.next.ListHotels(ctx, q)
}

func (c *Catalog) SearchHotels(ctx context.Context, query string) ([]hotels.Hotel, error) {
	return c.next.SearchHotels(ctx, query)
}

func (c *Catalog) GetHotel(ctx context.Context, id string) (hotels.Hotel, error) {
	var h hotels.Hotel
	if c.load(ctx, "hotel", hotelKey(id), &h) {
		return h, nil
	}
	h, err := c.next.GetHotel(ctx, id)
	if err != nil {
		return hotels.Hotel{}, err
	}
	c.store(ctx, hotelKey(id), h)
	return h, nil
}

func (c *Catalog) ListLocations(ctx context.Context) ([]hotels.Location, error) {
	var locs []hotels.Location
	if c.load(ctx, "locations", locationsKey, &locs) {
		return locs, nil
	}
	locs, err := c.next.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, locationsKey, locs)
	return locs, nil
}

// CreateHotel forwards and drops the location list, which may have grown.
func (c *Catalog) CreateHotel(ctx context.Context, params hotels.CreateParams) (hotels.Hotel, error) {
	h, err := c.next.CreateHotel(ctx, params)
	if err != nil {
		return hotels.Hotel{}, err
	}
	if err := c.InvalidateLocations(ctx); err != nil && c.logger != nil {
		c.logger.Warn("locations cache invalidation failed", "error", err)
	}
	return h, nil
}

func (c *Catalog) InvalidateHotel(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return c.kv.Del(ctx, hotelKey(id)).Err()
}

func (c *Catalog) InvalidateLocations(ctx context.Context) error {
	return c.kv.Del(ctx, locationsKey).Err()
}

func (c *Catalog) load(ctx context.Context, kind, key string, out any) bool {
	data, err := c.kv.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.count(kind, "miss")
		return false
	case err != nil:
		c.count(kind, "error")
		if c.logger != nil {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.count(kind, "error")
		return false
	}
	c.count(kind, "hit")
	return true
}

func (c *Catalog) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.kv.Set(ctx, key, data, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func (c *Catalog) count(kind, result string) {
	if c.metrics != nil {
		c.metrics.CacheLookup(kind, result)
	}
}
