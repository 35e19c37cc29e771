package annotation

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/labelquorum/quorum/internal/labeling"
	"github.com/labelquorum/quorum/internal/observability/metrics"
)

// PolicyLoader reads a project's policy from the store.
type PolicyLoader func(ctx context.Context, projectID uint) (labeling.Policy, error)

// PolicyCache keeps project policies in memory for ttl. Concurrent misses
// for the same project share one load.
type PolicyCache struct {
	cache   *cache.Cache
	group   singleflight.Group
	load    PolicyLoader
	metrics metrics.Recorder
}

// NewPolicyCache creates a cache in front of load. A ttl of zero or less
// disables caching; every Get then calls load.
func NewPolicyCache(ttl time.Duration, load PolicyLoader, rec metrics.Recorder) *PolicyCache {
	c := &PolicyCache{load: load, metrics: metrics.OrNoop(rec)}
	if ttl > 0 {
		c.cache = cache.New(ttl, ttl*2)
	}
	return c
}

// Get returns the policy of projectID.
func (c *PolicyCache) Get(ctx context.Context, projectID uint) (labeling.Policy, error) {
	if c.cache == nil {
		return c.load(ctx, projectID)
	}

	key := strconv.FormatUint(uint64(projectID), 10)
	if cached, found := c.cache.Get(key); found {
		c.metrics.RecordOperation(metrics.OpPolicyCache, metrics.StatusHit)
		return cached.(labeling.Policy), nil
	}
	c.metrics.RecordOperation(metrics.OpPolicyCache, metrics.StatusMiss)

	v, err, _ := c.group.Do(key, func() (any, error) {
		policy, err := c.load(ctx, projectID)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, policy, cache.DefaultExpiration)
		return policy, nil
	})
	if err != nil {
		return labeling.Policy{}, err
	}
	return v.(labeling.Policy), nil
}

// Invalidate drops the cached policy of projectID.
func (c *PolicyCache) Invalidate(projectID uint) {
	if c.cache != nil {
		c.cache.Delete(strconv.FormatUint(uint64(projectID), 10))
	}
}
