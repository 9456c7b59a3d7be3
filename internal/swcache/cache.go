// Package swcache is the offline cache layer: named, versioned cache
// partitions with per-resource-class strategies, mirroring what a service
// worker does for the installed app. It runs as an independent worker and
// talks to the rest of the process over typed channels only.
package swcache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Class is the resource classification driving strategy selection.
type Class int

const (
	ClassStatic Class = iota // cache-first, populate on miss
	ClassAPI                 // network-first, cached fallback
	ClassIcon                // cache-first, typed not-found on total failure
)

// Classify maps a request path to its resource class.
func Classify(path string) Class {
	switch {
	case strings.Contains(path, "/icons/"):
		return ClassIcon
	case strings.HasPrefix(path, "/api/"):
		return ClassAPI
	}
	return ClassStatic
}

// Source tells where a response came from.
type Source int

const (
	SourceNetwork Source = iota
	SourceCache
	SourceNotFound    // icon absent everywhere; terminal, not an error
	SourceUnavailable // offline with nothing cached; known gap for HTML shells
)

// Response is one cached or fetched resource.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// OK reports a successful upstream status.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Result is a strategy outcome: the response plus its provenance.
type Result struct {
	Response
	Source Source
}

// Fetcher loads a resource from the network.
type Fetcher func(ctx context.Context, url string) (Response, error)

// ErrCacheMiss reports a resource absent from every partition.
var ErrCacheMiss = errors.New("swcache: not cached")

// Partition is one named request→response cache.
type Partition struct {
	name string

	mu      sync.RWMutex
	entries map[string]Response
}

func newPartition(name string) *Partition {
	return &Partition{name: name, entries: make(map[string]Response)}
}

// Name returns the versioned partition name.
func (p *Partition) Name() string { return p.name }

// Match looks a URL up in this partition.
func (p *Partition) Match(url string) (Response, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r, ok := p.entries[url]
	return r, ok
}

// Put stores a response.
func (p *Partition) Put(url string, r Response) {
	p.mu.Lock()
	p.entries[url] = r
	p.mu.Unlock()
}

// Len reports the number of cached entries.
func (p *Partition) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Registry holds every live partition, current or orphaned. Activation
// walks it to purge stale versions.
type Registry struct {
	mu         sync.Mutex
	partitions map[string]*Partition
}

// NewRegistry creates an empty partition registry.
func NewRegistry() *Registry {
	return &Registry{partitions: make(map[string]*Partition)}
}

// Open returns the named partition, creating it on first use.
func (r *Registry) Open(name string) *Partition {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partitions[name]
	if !ok {
		p = newPartition(name)
		r.partitions[name] = p
	}
	return p
}

// Names lists every live partition name, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.partitions))
	for name := range r.partitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Delete drops a partition wholesale.
func (r *Registry) Delete(name string) {
	r.mu.Lock()
	delete(r.partitions, name)
	r.mu.Unlock()
}

// match searches every partition for a URL.
func (r *Registry) match(url string) (Response, bool) {
	r.mu.Lock()
	parts := make([]*Partition, 0, len(r.partitions))
	for _, p := range r.partitions {
		parts = append(parts, p)
	}
	r.mu.Unlock()

	for _, p := range parts {
		if resp, ok := p.Match(url); ok {
			return resp, true
		}
	}
	return Response{}, false
}

// PartitionName builds the versioned name for one class partition.
func PartitionName(version, class string) string {
	return fmt.Sprintf("%s-%s", version, class)
}
