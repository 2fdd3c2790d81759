package tenantcfg

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"scimgate/pkg/scimerr"
)

// CachedStore is the TenantConfigStore: a read-through cache over a durable
// Store with a bounded freshness window. A tenant's first-ever Get generates
// and persists a default document. Updates deep-merge a partial document into
// the stored one under a per-tenant lock, so concurrent writers cannot lose
// each other's changes, then drop the cache entry so the next Get reloads.
type CachedStore struct {
	backend  Store
	defaults Defaults
	ttl      time.Duration
	clock    clockwork.Clock
	log      *zap.SugaredLogger

	mu      sync.Mutex
	entries map[string]cacheEntry
	locks   map[string]*sync.Mutex
}

type cacheEntry struct {
	cfg     *TenantConfig
	fetched time.Time
}

func NewCachedStore(backend Store, defaults Defaults, ttl time.Duration, log *zap.SugaredLogger) *CachedStore {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedStore{
		backend:  backend,
		defaults: defaults,
		ttl:      ttl,
		clock:    clockwork.NewRealClock(),
		log:      log,
		entries:  map[string]cacheEntry{},
		locks:    map[string]*sync.Mutex{},
	}
}

// Get returns the tenant's configuration, served from cache when the entry is
// within the freshness window.
func (c *CachedStore) Get(ctx context.Context, tenantID string) (*TenantConfig, error) {
	if tenantID == "" {
		return nil, scimerr.InvalidTenantID()
	}
	c.mu.Lock()
	if e, ok := c.entries[tenantID]; ok && c.clock.Since(e.fetched) < c.ttl {
		c.mu.Unlock()
		return e.cfg, nil
	}
	c.mu.Unlock()

	lock := c.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	// Another caller may have refreshed while we waited on the lock.
	c.mu.Lock()
	if e, ok := c.entries[tenantID]; ok && c.clock.Since(e.fetched) < c.ttl {
		c.mu.Unlock()
		return e.cfg, nil
	}
	c.mu.Unlock()

	doc, err := c.loadOrCreate(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseDocument(doc)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[tenantID] = cacheEntry{cfg: cfg, fetched: c.clock.Now()}
	c.mu.Unlock()
	return cfg, nil
}

// Update deep-merges partial into the stored document, persists the result
// and invalidates the cache entry. The read-merge-write runs under the
// tenant's lock.
func (c *CachedStore) Update(ctx context.Context, tenantID string, partial map[string]any) error {
	if tenantID == "" {
		return scimerr.InvalidTenantID()
	}
	lock := c.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := c.loadOrCreate(ctx, tenantID)
	if err != nil {
		return err
	}
	merged := DeepMerge(doc, partial)
	if err := c.backend.Save(ctx, tenantID, merged); err != nil {
		return err
	}
	c.Invalidate(tenantID)
	c.log.Infow("updated tenant config", "tenant", tenantID)
	return nil
}

// Invalidate drops the cache entry so the next Get reloads from storage.
func (c *CachedStore) Invalidate(tenantID string) {
	c.mu.Lock()
	delete(c.entries, tenantID)
	c.mu.Unlock()
}

// ValidationRules is a convenience accessor for the validator.
func (c *CachedStore) ValidationRules(ctx context.Context, tenantID string) (ValidationRules, error) {
	cfg, err := c.Get(ctx, tenantID)
	if err != nil {
		return ValidationRules{}, err
	}
	return cfg.ValidationRules, nil
}

// RateLimits returns the tenant's configured rate limits. The core does not
// interpret them; the (external) rate-limiting middleware does.
func (c *CachedStore) RateLimits(ctx context.Context, tenantID string) (map[string]int, error) {
	cfg, err := c.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return cfg.RateLimits, nil
}

// EnabledResourceTypes returns the tenant's enabled resource types.
func (c *CachedStore) EnabledResourceTypes(ctx context.Context, tenantID string) ([]string, error) {
	cfg, err := c.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(cfg.EnabledResourceTypes) == 0 {
		return []string{"User", "Group", "Entitlement"}, nil
	}
	return cfg.EnabledResourceTypes, nil
}

func (c *CachedStore) loadOrCreate(ctx context.Context, tenantID string) (map[string]any, error) {
	doc, err := c.backend.Load(ctx, tenantID)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	doc = DefaultDocument(tenantID, c.defaults)
	if err := c.backend.Save(ctx, tenantID, doc); err != nil {
		return nil, err
	}
	c.log.Infow("created default tenant config", "tenant", tenantID)
	return doc, nil
}

func (c *CachedStore) tenantLock(tenantID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[tenantID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[tenantID] = l
	}
	return l
}
