// Package syncer reconciles the local working set with its remote row.
// It is local-first: a failed or impossible upload never touches local
// data, and edits made while an upload is in flight simply ride the next
// cycle.
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/beduldjakurra/stockproduksi/internal/model"
	"github.com/beduldjakurra/stockproduksi/internal/service/session"
)

// ErrOffline reports a sync requested with no connectivity. Distinct from a
// remote failure: the attempt is queued, the error count does not move.
var ErrOffline = errors.New("sync: offline, queued for reconnect")

// ErrNoSession reports a sync requested before any session exists.
var ErrNoSession = errors.New("sync: no active session")

// ErrSessionNotFound is returned by a Remote when no row exists yet.
var ErrSessionNotFound = errors.New("sync: session not found")

// Remote is the backend row the session is pushed to. Implemented by the
// SQLite store; swappable for a hosted backend.
type Remote interface {
	FetchSession(ctx context.Context, sessionID string) (*model.Session, error)
	UpsertSession(ctx context.Context, s *model.Session) error
}

// State is the externally visible sync position.
type State struct {
	Status     model.SyncStatus `json:"status"`
	Online     bool             `json:"online"`
	ErrorCount int              `json:"errorCount"`
	LastSync   *time.Time       `json:"lastSyncTime,omitempty"`
	LastError  string           `json:"lastError,omitempty"`
}

// Options tune the periodic loop.
type Options struct {
	Interval     time.Duration // periodic sync cadence; 0 disables the ticker
	RetryBackoff time.Duration // wait after a failed attempt before retrying
}

// Syncer drives the session sync state machine. One upload runs at a time;
// requests while one is in flight are coalesced into a pending flag.
type Syncer struct {
	remote   Remote
	sessions *session.Manager
	log      *zap.Logger
	opts     Options

	mu         sync.Mutex
	status     model.SyncStatus
	online     bool
	errorCount int
	lastSync   *time.Time
	lastError  string
	inFlight   bool
	queued     bool

	// wake nudges the run loop for retries and reconnects.
	wake chan struct{}

	// onTransition, when set, observes every status change. Used by the
	// HTTP layer for status pushes and by tests.
	onTransition func(model.SyncStatus)
}

// New creates a syncer in the idle state, assumed online until told
// otherwise.
func New(remote Remote, sessions *session.Manager, log *zap.Logger, opts Options) *Syncer {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 15 * time.Second
	}
	return &Syncer{
		remote:   remote,
		sessions: sessions,
		log:      log,
		opts:     opts,
		status:   model.SyncIdle,
		online:   true,
		wake:     make(chan struct{}, 1),
	}
}

// OnTransition registers the status observer. Must be set before Run.
func (s *Syncer) OnTransition(fn func(model.SyncStatus)) {
	s.onTransition = fn
}

// State returns the current sync position.
func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Status:     s.status,
		Online:     s.online,
		ErrorCount: s.errorCount,
		LastError:  s.lastError,
	}
	if s.lastSync != nil {
		t := *s.lastSync
		st.LastSync = &t
	}
	return st
}

// SetOnline updates the connectivity flag. Coming back online with a queued
// attempt kicks a sync immediately.
func (s *Syncer) SetOnline(online bool) {
	s.mu.Lock()
	wasOffline := !s.online
	s.online = online
	kick := online && wasOffline && (s.queued || s.status == model.SyncPending)
	s.mu.Unlock()

	if kick {
		s.log.Info("back online, flushing queued sync")
		s.nudge()
	}
}

// Reset returns the gauge to idle after the working set itself was reset,
// so the status endpoint and the session record agree again. A cycle
// already in flight keeps running and reports its own outcome.
func (s *Syncer) Reset() {
	s.mu.Lock()
	s.errorCount = 0
	s.lastError = ""
	s.queued = false
	s.setStatusLocked(model.SyncIdle)
	s.mu.Unlock()
}

// Sync performs one reconciliation cycle. Offline requests queue and return
// ErrOffline without counting as failures; cycles before any session exists
// return ErrNoSession without touching the state machine at all. A request
// while an upload is in flight marks it queued and returns nil; the edits
// ride the next cycle.
func (s *Syncer) Sync(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.queued = true
		s.mu.Unlock()
		return nil
	}
	if s.sessions.Active() == nil {
		// Nothing to upload yet. Not a remote failure: the status and the
		// error count stay where they are.
		s.mu.Unlock()
		return ErrNoSession
	}
	if !s.online {
		s.setStatusLocked(model.SyncPending)
		s.queued = true
		errorCount := s.errorCount
		s.mu.Unlock()
		s.sessions.SetSyncState(model.SyncPending, nil, errorCount)
		return ErrOffline
	}
	s.inFlight = true
	s.queued = false
	s.setStatusLocked(model.SyncSyncing)
	s.mu.Unlock()

	err := s.reconcile(ctx)

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		s.errorCount++
		s.lastError = err.Error()
		s.setStatusLocked(model.SyncError)
	} else {
		now := time.Now()
		s.lastSync = &now
		s.errorCount = 0
		s.lastError = ""
		s.setStatusLocked(model.SyncSynced)
	}
	again := s.queued && s.online
	state := State{Status: s.status, ErrorCount: s.errorCount, LastSync: s.lastSync}
	s.mu.Unlock()

	s.sessions.SetSyncState(state.Status, state.LastSync, state.ErrorCount)

	if err != nil {
		s.log.Warn("sync failed", zap.Error(err), zap.Int("errorCount", state.ErrorCount))
		return err
	}
	s.log.Debug("sync complete")
	if again {
		// Edits arrived mid-flight; run one more cycle for them.
		s.nudge()
	}
	return nil
}

// reconcile uploads the local session, applying last-write-wins against the
// remote row. Local data is only replaced when the remote copy is strictly
// newer; otherwise the local copy is pushed.
func (s *Syncer) reconcile(ctx context.Context) error {
	local := s.sessions.Active()
	if local == nil {
		return ErrNoSession
	}

	remote, err := s.remote.FetchSession(ctx, local.SessionID)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		// First push for this session.
	case err != nil:
		return err
	case remote.UpdatedAt.After(local.UpdatedAt):
		// Remote won: take its data wholesale. No field-level merge.
		return s.sessions.ApplyRemote(remote)
	}

	return s.remote.UpsertSession(ctx, local)
}

// Run drives periodic syncs, retry backoff and reconnect flushes until ctx
// is done. Meant to run in its own goroutine.
func (s *Syncer) Run(ctx context.Context) {
	var ticker *time.Ticker
	var tick <-chan time.Time
	if s.opts.Interval > 0 {
		ticker = time.NewTicker(s.opts.Interval)
		tick = ticker.C
		defer ticker.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			s.runCycle(ctx)
		case <-s.wake:
			s.runCycle(ctx)
		}
	}
}

func (s *Syncer) runCycle(ctx context.Context) {
	err := s.Sync(ctx)
	switch {
	case err == nil, errors.Is(err, ErrNoSession):
		return
	case errors.Is(err, ErrOffline):
		// Wait for SetOnline to nudge us.
		return
	default:
		// Genuine remote failure: retry after backoff unless shut down.
		t := time.NewTimer(s.opts.RetryBackoff)
		select {
		case <-ctx.Done():
			t.Stop()
		case <-t.C:
			s.nudge()
		}
	}
}

func (s *Syncer) nudge() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Syncer) setStatusLocked(status model.SyncStatus) {
	if s.status == status {
		return
	}
	s.status = status
	if s.onTransition != nil {
		s.onTransition(status)
	}
}
