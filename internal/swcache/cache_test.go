package swcache

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetcher serves canned responses and records calls.
type scriptedFetcher struct {
	responses map[string]Response
	errs      map[string]error
	calls     []string
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{
		responses: map[string]Response{},
		errs:      map[string]error{},
	}
}

func (f *scriptedFetcher) fetch(ctx context.Context, url string) (Response, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return Response{}, err
	}
	if resp, ok := f.responses[url]; ok {
		return resp, nil
	}
	return Response{Status: 404}, nil
}

func okResp(body string) Response {
	return Response{Status: 200, ContentType: "text/plain", Body: []byte(body)}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Class
	}{
		{"/icons/icon-192x192.png", ClassIcon},
		{"/api/session", ClassAPI},
		{"/", ClassStatic},
		{"/manifest.json", ClassStatic},
		{"https://cdn.example.com/xlsx.min.js", ClassStatic},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.path), tt.path)
	}
}

func TestActivatePurgesStaleVersionsOnce(t *testing.T) {
	reg := NewRegistry()
	reg.Open("v1-static")
	reg.Open("v1-dynamic")

	f := newScriptedFetcher()
	set := NewCacheSet("v2", reg, f.fetch, nil)

	deleted := set.Activate()
	sort.Strings(deleted)
	assert.Equal(t, []string{"v1-dynamic", "v1-static"}, deleted)

	left := reg.Names()
	sort.Strings(left)
	assert.Equal(t, []string{"v2-dynamic", "v2-icons", "v2-static"}, left)

	// Second activation finds no orphans.
	assert.Empty(t, set.Activate())
}

func TestInstallPartialFailureDoesNotAbort(t *testing.T) {
	f := newScriptedFetcher()
	f.responses["/"] = okResp("shell")
	f.responses["/manifest.json"] = okResp("manifest")
	f.errs["/icons/a.png"] = errors.New("timeout")
	f.responses["/icons/b.png"] = okResp("icon-b")

	set := NewCacheSet("v1", NewRegistry(), f.fetch, nil)
	set.Install(context.Background(), InstallLists{
		Static: []string{"/", "/manifest.json"},
		Icons:  []string{"/icons/a.png", "/icons/b.png"},
	})

	assert.Equal(t, 2, set.static.Len())
	assert.Equal(t, 1, set.icons.Len(), "the failed icon is skipped, the other cached")
	_, ok := set.icons.Match("/icons/b.png")
	assert.True(t, ok)
}

func TestIconCacheFirstWithTypedNotFound(t *testing.T) {
	f := newScriptedFetcher()
	f.responses["/icons/ok.png"] = okResp("png")
	f.errs["/icons/gone.png"] = errors.New("unreachable")

	set := NewCacheSet("v1", NewRegistry(), f.fetch, nil)

	// Miss populates the icon partition.
	res, err := set.Handle(context.Background(), "/icons/ok.png")
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, res.Source)

	// Second request is served from cache without a fetch.
	calls := len(f.calls)
	res, err = set.Handle(context.Background(), "/icons/ok.png")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)
	assert.Len(t, f.calls, calls)

	// Total failure is a typed not-found result, not an error.
	res, err = set.Handle(context.Background(), "/icons/gone.png")
	require.NoError(t, err)
	assert.Equal(t, SourceNotFound, res.Source)
	assert.Equal(t, 404, res.Status)
}

func TestAPINetworkFirstWithCachedFallback(t *testing.T) {
	f := newScriptedFetcher()
	f.responses["/api/session"] = okResp(`{"ok":true}`)

	set := NewCacheSet("v1", NewRegistry(), f.fetch, nil)

	res, err := set.Handle(context.Background(), "/api/session")
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, res.Source)

	// Network down: last cached response is served.
	f.errs["/api/session"] = errors.New("offline")
	res, err = set.Handle(context.Background(), "/api/session")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)
	assert.Equal(t, []byte(`{"ok":true}`), res.Body)

	// Never cached and unreachable: the failure propagates as a miss.
	f.errs["/api/other"] = errors.New("offline")
	_, err = set.Handle(context.Background(), "/api/other")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestStaticCacheFirstPopulates(t *testing.T) {
	f := newScriptedFetcher()
	f.responses["/app.css"] = okResp("css")

	set := NewCacheSet("v1", NewRegistry(), f.fetch, nil)

	res, err := set.Handle(context.Background(), "/app.css")
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, res.Source)

	res, err = set.Handle(context.Background(), "/app.css")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)

	// Nothing cached and no network: typed unavailable, no offline page.
	f.errs["/missing.css"] = errors.New("offline")
	res, err = set.Handle(context.Background(), "/missing.css")
	require.NoError(t, err)
	assert.Equal(t, SourceUnavailable, res.Source)
	assert.Equal(t, 503, res.Status)
}

func TestWorkerServesOverChannels(t *testing.T) {
	f := newScriptedFetcher()
	f.responses["/"] = okResp("shell")
	f.responses["/icons/a.png"] = okResp("icon")

	w := NewWorker("v1", NewRegistry(), f.fetch)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx, InstallLists{Static: []string{"/"}, Icons: []string{"/icons/a.png"}})

	res, err := w.Do(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source, "installed shell should be a cache hit")

	// Cache-hit notification arrives out of band.
	var sawHit bool
	for !sawHit {
		select {
		case e := <-w.Events():
			if e.Type == EventHit && e.URL == "/" {
				sawHit = true
			}
		default:
			sawHit = true // events may have been dropped; non-blocking is the contract
		}
	}

	cancel()
	// After shutdown requests fail fast instead of hanging.
	<-w.done
	_, err = w.Do(context.Background(), "/")
	require.ErrorIs(t, err, ErrWorkerStopped)
}
