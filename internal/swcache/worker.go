package swcache

import (
	"context"
	"errors"
)

// EventType labels the out-of-band notifications the worker emits.
type EventType int

const (
	EventHit EventType = iota
	EventInstalled
	EventInstallSkip
	EventPurged
)

// Event is a cache notification message. Delivered best-effort: the worker
// never blocks a request on event delivery.
type Event struct {
	Type      EventType
	URL       string
	Partition string
}

// ErrWorkerStopped reports a request made after the worker shut down.
var ErrWorkerStopped = errors.New("swcache: worker stopped")

type job struct {
	url   string
	ctx   context.Context
	reply chan reply
}

type reply struct {
	result Result
	err    error
}

// Worker runs the cache set in its own goroutine. Callers never touch the
// cache memory directly; requests and events cross typed channels, the
// same isolation a page has from its service worker.
type Worker struct {
	set    *CacheSet
	jobs   chan job
	events chan Event
	done   chan struct{}
}

// NewWorker wires a worker over version-tagged partitions in the registry.
func NewWorker(version string, registry *Registry, fetch Fetcher) *Worker {
	w := &Worker{
		jobs:   make(chan job),
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	w.set = NewCacheSet(version, registry, fetch, w.emit)
	return w
}

// Events is the out-of-band notification stream. Dropped when nobody
// drains it; requests are never delayed by a slow listener.
func (w *Worker) Events() <-chan Event {
	return w.events
}

func (w *Worker) emit(e Event) {
	select {
	case w.events <- e:
	default:
	}
}

// Run installs, activates and then serves requests until ctx is done.
func (w *Worker) Run(ctx context.Context, lists InstallLists) {
	defer close(w.done)

	w.set.Install(ctx, lists)
	w.set.Activate()

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-w.jobs:
			result, err := w.set.Handle(j.ctx, j.url)
			j.reply <- reply{result: result, err: err}
		}
	}
}

// Do resolves one request through the worker. Safe for concurrent use;
// requests are serialized by the worker loop.
func (w *Worker) Do(ctx context.Context, url string) (Result, error) {
	j := job{url: url, ctx: ctx, reply: make(chan reply, 1)}
	select {
	case w.jobs <- j:
	case <-w.done:
		return Result{}, ErrWorkerStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case r := <-j.reply:
		return r.result, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
