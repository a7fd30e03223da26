package schedule

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/cache"
)

// CacheKey is the blob key of the ephemeral schedule collection.
const CacheKey = "schedule.ephemeral"

// Cache stores the ephemeral collection as one JSON blob.
type Cache struct {
	store cache.Store
	key   string
}

func NewCache(store cache.Store) *Cache {
	return &Cache{store: store, key: CacheKey}
}

// ReadCollection returns the cached records; a missing key is an empty
// collection.
func (c *Cache) ReadCollection(ctx context.Context) ([]Record, error) {
	blob, err := c.store.Read(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	if len(blob) == 0 {
		return nil, nil
	}
	var recs []Record
	if err := json.Unmarshal(blob, &recs); err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}
	for i := range recs {
		recs[i].Origin = OriginEphemeral
		recs[i].ID = 0
	}
	return recs, nil
}

// WriteCollection replaces the whole collection.
func (c *Cache) WriteCollection(ctx context.Context, recs []Record) error {
	if recs == nil {
		recs = []Record{}
	}
	blob, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := c.store.Write(ctx, c.key, blob); err != nil {
		return fmt.Errorf("%w: %w", ErrCacheWrite, err)
	}
	return nil
}
