package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"github.com/explorepe/explorepe-api/pkg/retry"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// GuideLoader fetches the active guides from the store
type GuideLoader func(ctx context.Context) ([]*models.Profile, error)

const (
	guideKeyPrefix   = "guide:slug:"
	allGuidesKey     = "guide:all"
	cacheCheckPeriod = 10 * time.Second
	cacheName        = "directory"
)

// DirectoryCacheInterface is what repositories need from the directory cache
type DirectoryCacheInterface interface {
	Guides(ctx context.Context) ([]*models.Profile, error)
	GuideBySlug(ctx context.Context, slug string) (*models.Profile, bool)
	Invalidate()
	IsReady() bool
}

// DirectoryCache keeps the public list of active guides in memory with a TTL.
// Any write that changes what the directory shows must call Invalidate.
type DirectoryCache struct {
	cache *gocache.Cache
	load  GuideLoader
	ttl   time.Duration

	// loadMu serializes reloads so a burst of misses hits the store once
	loadMu sync.Mutex

	mu          sync.RWMutex
	ready       bool
	lastRefresh time.Time
	// generation is bumped by Invalidate; a reload that started under an
	// older generation is not cached
	generation uint64
}

var _ DirectoryCacheInterface = (*DirectoryCache)(nil)

// NewDirectoryCache creates a cache backed by load. ttlSeconds <= 0 disables expiry.
func NewDirectoryCache(load GuideLoader, ttlSeconds int) *DirectoryCache {
	ttl := gocache.NoExpiration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &DirectoryCache{
		cache: gocache.New(ttl, cacheCheckPeriod),
		load:  load,
		ttl:   ttl,
	}
}

// Initialize warms the cache, retrying transient store failures.
// Should be called during startup before accepting requests.
func (dc *DirectoryCache) Initialize(ctx context.Context) error {
	logger.Info("Initializing directory cache...")
	start := time.Now()
	gen := dc.currentGeneration()

	guides, err := retry.DoWithResult(ctx, retry.DefaultConfig(), "directory_cache_warmup", func() ([]*models.Profile, error) {
		return dc.load(ctx)
	})
	if err != nil {
		logger.Error("Failed to initialize directory cache", zap.Error(err))
		return fmt.Errorf("failed to initialize directory cache: %w", err)
	}

	dc.populate(gen, guides)
	logger.Info("Directory cache initialized successfully",
		zap.Int("count", len(guides)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// IsReady returns true once the cache has been populated at least once
func (dc *DirectoryCache) IsReady() bool {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.ready
}

// LastRefresh returns when the cache was last populated
func (dc *DirectoryCache) LastRefresh() time.Time {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.lastRefresh
}

// Guides returns the active guides, loading them on a miss
func (dc *DirectoryCache) Guides(ctx context.Context) ([]*models.Profile, error) {
	if guides, ok := dc.cachedGuides(); ok {
		metrics.CacheHits.WithLabelValues(cacheName).Inc()
		return guides, nil
	}
	metrics.CacheMisses.WithLabelValues(cacheName).Inc()

	dc.loadMu.Lock()
	defer dc.loadMu.Unlock()

	// Another request may have reloaded while we waited
	if guides, ok := dc.cachedGuides(); ok {
		return guides, nil
	}

	gen := dc.currentGeneration()
	guides, err := dc.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load guides: %w", err)
	}
	if !dc.populate(gen, guides) {
		logger.Debug("Directory changed during reload, result not cached")
	}
	return guides, nil
}

// GuideBySlug looks up a cached active guide. It never loads from the store.
func (dc *DirectoryCache) GuideBySlug(_ context.Context, slug string) (*models.Profile, bool) {
	if _, ok := dc.cachedGuides(); !ok {
		return nil, false
	}
	data, found := dc.cache.Get(guideKeyPrefix + slug)
	if !found {
		return nil, false
	}
	guide, ok := data.(*models.Profile)
	return guide, ok
}

// Invalidate drops every cached entry
func (dc *DirectoryCache) Invalidate() {
	dc.mu.Lock()
	dc.generation++
	dc.cache.Flush()
	dc.mu.Unlock()

	metrics.CacheSize.WithLabelValues(cacheName).Set(0)
	logger.Debug("Directory cache invalidated")
}

func (dc *DirectoryCache) cachedGuides() ([]*models.Profile, bool) {
	data, found := dc.cache.Get(allGuidesKey)
	if !found {
		return nil, false
	}
	guides, ok := data.([]*models.Profile)
	if !ok {
		logger.Error("Invalid directory cache data type")
		dc.cache.Delete(allGuidesKey)
		return nil, false
	}
	return guides, true
}

func (dc *DirectoryCache) currentGeneration() uint64 {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.generation
}

// populate caches guides unless Invalidate ran since gen was read
func (dc *DirectoryCache) populate(gen uint64, guides []*models.Profile) bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.generation != gen {
		return false
	}

	// Per-slug entries outlive the list by one TTL at most; GuideBySlug checks the list first
	for _, g := range guides {
		if g.Slug != "" {
			dc.cache.Set(guideKeyPrefix+g.Slug, g, dc.ttl)
		}
	}
	dc.cache.Set(allGuidesKey, guides, dc.ttl)
	dc.ready = true
	dc.lastRefresh = time.Now()

	metrics.CacheSize.WithLabelValues(cacheName).Set(float64(len(guides)))
	return true
}
