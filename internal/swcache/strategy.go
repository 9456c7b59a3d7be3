package swcache

import (
	"context"
	"fmt"
	"sync"
)

const (
	classStaticName  = "static"
	classDynamicName = "dynamic"
	classIconsName   = "icons"
)

// InstallLists are the resources pre-populated at install time.
type InstallLists struct {
	Static   []string // app shell
	External []string // CDN scripts and styles
	Icons    []string
}

// CacheSet is the strategy engine over the three versioned partitions of
// one cache generation.
type CacheSet struct {
	version  string
	registry *Registry
	fetch    Fetcher

	static  *Partition
	dynamic *Partition
	icons   *Partition

	notify func(Event)
}

// NewCacheSet opens the three partitions for version inside the registry.
// notify, when non-nil, receives out-of-band cache events; it must not
// block.
func NewCacheSet(version string, registry *Registry, fetch Fetcher, notify func(Event)) *CacheSet {
	if notify == nil {
		notify = func(Event) {}
	}
	return &CacheSet{
		version:  version,
		registry: registry,
		fetch:    fetch,
		static:   registry.Open(PartitionName(version, classStaticName)),
		dynamic:  registry.Open(PartitionName(version, classDynamicName)),
		icons:    registry.Open(PartitionName(version, classIconsName)),
		notify:   notify,
	}
}

// Version returns the cache generation tag. Bumping it is the only
// supported invalidation mechanism.
func (c *CacheSet) Version() string { return c.version }

// CurrentNames lists the partition names belonging to this generation.
func (c *CacheSet) CurrentNames() []string {
	return []string{c.static.Name(), c.dynamic.Name(), c.icons.Name()}
}

// Install pre-populates the partitions concurrently. Each resource fetch is
// independent: one failed icon or CDN asset must not abort the rest, so
// failures are reported as events and swallowed.
func (c *CacheSet) Install(ctx context.Context, lists InstallLists) {
	var wg sync.WaitGroup

	precache := func(p *Partition, urls []string) {
		defer wg.Done()
		for _, url := range urls {
			resp, err := c.fetch(ctx, url)
			if err != nil || !resp.OK() {
				c.notify(Event{Type: EventInstallSkip, URL: url, Partition: p.Name()})
				continue
			}
			p.Put(url, resp)
			c.notify(Event{Type: EventInstalled, URL: url, Partition: p.Name()})
		}
	}

	wg.Add(3)
	go precache(c.static, lists.Static)
	go precache(c.dynamic, lists.External)
	go precache(c.icons, lists.Icons)
	wg.Wait()
}

// Activate purges every partition in the registry that does not belong to
// the current generation and returns the deleted names. Orphans are removed
// exactly once: a second call finds nothing left to delete.
func (c *CacheSet) Activate() []string {
	current := map[string]bool{}
	for _, name := range c.CurrentNames() {
		current[name] = true
	}

	var deleted []string
	for _, name := range c.registry.Names() {
		if !current[name] {
			c.registry.Delete(name)
			deleted = append(deleted, name)
			c.notify(Event{Type: EventPurged, Partition: name})
		}
	}
	return deleted
}

// Handle resolves one request through its class strategy.
func (c *CacheSet) Handle(ctx context.Context, url string) (Result, error) {
	switch Classify(url) {
	case ClassIcon:
		return c.handleIcon(ctx, url)
	case ClassAPI:
		return c.handleAPI(ctx, url)
	}
	return c.handleStatic(ctx, url)
}

// handleIcon is cache-first. On miss it fetches and populates the icon
// partition; on total failure it returns a typed not-found result rather
// than an error, so a missing icon can never break the page.
func (c *CacheSet) handleIcon(ctx context.Context, url string) (Result, error) {
	if resp, ok := c.registry.match(url); ok {
		c.notify(Event{Type: EventHit, URL: url, Partition: c.icons.Name()})
		return Result{Response: resp, Source: SourceCache}, nil
	}

	resp, err := c.fetch(ctx, url)
	if err == nil && resp.OK() {
		c.icons.Put(url, resp)
		return Result{Response: resp, Source: SourceNetwork}, nil
	}

	return Result{
		Response: Response{Status: 404, ContentType: "text/plain"},
		Source:   SourceNotFound,
	}, nil
}

// handleAPI is network-first. A live response refreshes the dynamic
// partition; on network failure the last cached response is served, and
// only a miss on top of that propagates the failure.
func (c *CacheSet) handleAPI(ctx context.Context, url string) (Result, error) {
	resp, err := c.fetch(ctx, url)
	if err == nil {
		if resp.OK() {
			c.dynamic.Put(url, resp)
		}
		return Result{Response: resp, Source: SourceNetwork}, nil
	}

	if cached, ok := c.registry.match(url); ok {
		c.notify(Event{Type: EventHit, URL: url, Partition: c.dynamic.Name()})
		return Result{Response: cached, Source: SourceCache}, nil
	}
	return Result{}, fmt.Errorf("api fetch failed (%v): %w", err, ErrCacheMiss)
}

// handleStatic is cache-first with populate-on-miss. When the network is
// also down there is no offline page to fall back to; the caller gets a
// typed unavailable result and surfaces it as a service outage.
func (c *CacheSet) handleStatic(ctx context.Context, url string) (Result, error) {
	if resp, ok := c.registry.match(url); ok {
		c.notify(Event{Type: EventHit, URL: url, Partition: c.static.Name()})
		return Result{Response: resp, Source: SourceCache}, nil
	}

	resp, err := c.fetch(ctx, url)
	if err != nil {
		return Result{
			Response: Response{Status: 503, ContentType: "text/plain", Body: []byte("Offline")},
			Source:   SourceUnavailable,
		}, nil
	}
	if resp.OK() {
		c.dynamic.Put(url, resp)
	}
	return Result{Response: resp, Source: SourceNetwork}, nil
}
