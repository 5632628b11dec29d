// Package reportcache caches built progress reports in redis. Entries are
// keyed by a fingerprint of the plan collection and the minute-bucketed
// evaluation time, so a cached report can never outlive the data or the
// minute it was computed for. Cache failures are returned to the caller,
// who degrades to recomputing.
package reportcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TabibitoDK/Study-Multiply-Go-Beyond-sub000/internal/domain"
)

const (
	reportKeyPrefix = "progress:report:"

	reportTTL = 2 * time.Minute
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{
		client: client,
	}
}

// Fingerprint derives the cache key component from the plan collection,
// the evaluation minute and any report parameters.
func Fingerprint(plans []domain.Plan, at time.Time, params string) (string, error) {
	data, err := json.Marshal(plans)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plans for fingerprint: %w", err)
	}

	h := fnv.New64a()
	h.Write(data)
	h.Write([]byte(at.UTC().Truncate(time.Minute).Format("2006-01-02-15-04")))
	h.Write([]byte(params))

	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// Key builds the full redis key for a report kind and fingerprint.
func Key(kind, fingerprint string) string {
	return reportKeyPrefix + kind + ":" + fingerprint
}

func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return ErrInvalidReportData
	}

	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return ErrInvalidReportData
	}

	return c.client.Set(ctx, key, data, reportTTL).Err()
}
