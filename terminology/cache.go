package terminology

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"
)

const (
	// DefaultShardCount is the default number of cache shards.
	// Use a power of 2 for efficient modulo operation.
	DefaultShardCount = 64

	// DefaultCacheTTL is the default time-to-live for cache entries.
	DefaultCacheTTL = 15 * time.Minute
)

// ShardedCache provides a thread-safe, sharded cache for expansion and
// lookup results. Multiple shards reduce lock contention when terms
// resolve in parallel.
type ShardedCache struct {
	shards    []*cacheShard
	shardMask uint32
	ttl       time.Duration
}

type cacheShard struct {
	mu         sync.RWMutex
	expansions map[string]*cachedExpansion
	lookups    map[string]*cachedLookup
}

type cachedExpansion struct {
	candidates []Candidate
	expiresAt  time.Time
}

type cachedLookup struct {
	detail    *ConceptDetail
	expiresAt time.Time
}

// CacheConfig holds configuration options for the cache.
type CacheConfig struct {
	// ShardCount is the number of shards. Rounded up to a power of 2.
	ShardCount int

	// TTL is the time-to-live for cache entries.
	TTL time.Duration
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ShardCount: DefaultShardCount,
		TTL:        DefaultCacheTTL,
	}
}

// NewShardedCache creates a new sharded cache with the given configuration.
func NewShardedCache(config CacheConfig) *ShardedCache {
	shardCount := config.ShardCount
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	shardCount = nextPowerOf2(shardCount)

	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	shards := make([]*cacheShard, shardCount)
	for i := range shards {
		shards[i] = &cacheShard{
			expansions: make(map[string]*cachedExpansion),
			lookups:    make(map[string]*cachedLookup),
		}
	}

	return &ShardedCache{
		shards:    shards,
		shardMask: uint32(shardCount - 1),
		ttl:       ttl,
	}
}

func (c *ShardedCache) getShard(key string) *cacheShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()&c.shardMask]
}

// GetExpansion retrieves a cached expansion result.
func (c *ShardedCache) GetExpansion(key string) ([]Candidate, bool) {
	shard := c.getShard(key)
	shard.mu.RLock()
	cached, ok := shard.expansions[key]
	shard.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(cached.expiresAt) {
		shard.mu.Lock()
		delete(shard.expansions, key)
		shard.mu.Unlock()
		return nil, false
	}
	return cached.candidates, true
}

// SetExpansion stores an expansion result in the cache.
func (c *ShardedCache) SetExpansion(key string, candidates []Candidate) {
	shard := c.getShard(key)
	shard.mu.Lock()
	shard.expansions[key] = &cachedExpansion{
		candidates: candidates,
		expiresAt:  time.Now().Add(c.ttl),
	}
	shard.mu.Unlock()
}

// GetLookup retrieves a cached concept detail.
func (c *ShardedCache) GetLookup(code string) (*ConceptDetail, bool) {
	shard := c.getShard(code)
	shard.mu.RLock()
	cached, ok := shard.lookups[code]
	shard.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(cached.expiresAt) {
		shard.mu.Lock()
		delete(shard.lookups, code)
		shard.mu.Unlock()
		return nil, false
	}
	return cached.detail, true
}

// SetLookup stores a concept detail in the cache.
func (c *ShardedCache) SetLookup(code string, detail *ConceptDetail) {
	shard := c.getShard(code)
	shard.mu.Lock()
	shard.lookups[code] = &cachedLookup{
		detail:    detail,
		expiresAt: time.Now().Add(c.ttl),
	}
	shard.mu.Unlock()
}

// Clear removes all entries from the cache.
func (c *ShardedCache) Clear() {
	for _, shard := range c.shards {
		shard.mu.Lock()
		shard.expansions = make(map[string]*cachedExpansion)
		shard.lookups = make(map[string]*cachedLookup)
		shard.mu.Unlock()
	}
}

// CacheStats holds cache entry counts.
type CacheStats struct {
	Expansions int
	Lookups    int
	Shards     int
}

// Stats returns current cache statistics.
func (c *ShardedCache) Stats() CacheStats {
	var expansions, lookups int
	for _, shard := range c.shards {
		shard.mu.RLock()
		expansions += len(shard.expansions)
		lookups += len(shard.lookups)
		shard.mu.RUnlock()
	}
	return CacheStats{
		Expansions: expansions,
		Lookups:    lookups,
		Shards:     len(c.shards),
	}
}

// MakeExpansionKey creates a cache key for an expansion request.
func MakeExpansionKey(filter string, count int) string {
	// Separator that won't appear in filters
	return filter + "\x00" + strconv.Itoa(count)
}

// nextPowerOf2 returns the smallest power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}

// CachedService wraps a Service with a ShardedCache. Identical
// expansion and lookup requests within the TTL are served from memory.
type CachedService struct {
	inner Service
	cache *ShardedCache
}

// NewCachedService wraps svc with a cache using the given configuration.
func NewCachedService(svc Service, config CacheConfig) *CachedService {
	return &CachedService{
		inner: svc,
		cache: NewShardedCache(config),
	}
}

// Inner returns the wrapped service.
func (s *CachedService) Inner() Service {
	return s.inner
}

// Cache returns the underlying cache for inspection.
func (s *CachedService) Cache() *ShardedCache {
	return s.cache
}

// Expand implements Expander with caching.
func (s *CachedService) Expand(ctx context.Context, filter string, count int) ([]Candidate, error) {
	key := MakeExpansionKey(filter, count)
	if cached, ok := s.cache.GetExpansion(key); ok {
		return cached, nil
	}
	candidates, err := s.inner.Expand(ctx, filter, count)
	if err != nil {
		return nil, err
	}
	s.cache.SetExpansion(key, candidates)
	return candidates, nil
}

// Lookup implements Lookuper with caching.
func (s *CachedService) Lookup(ctx context.Context, code string) (*ConceptDetail, error) {
	if cached, ok := s.cache.GetLookup(code); ok {
		return cached, nil
	}
	detail, err := s.inner.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	s.cache.SetLookup(code, detail)
	return detail, nil
}

// Probe delegates to the wrapped service when it supports probing.
func (s *CachedService) Probe(ctx context.Context) error {
	if p, ok := s.inner.(Prober); ok {
		return p.Probe(ctx)
	}
	return nil
}

// Verify interface compliance
var _ Service = (*CachedService)(nil)
var _ Prober = (*CachedService)(nil)
