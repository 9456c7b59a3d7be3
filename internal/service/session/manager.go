// Package session owns the session lifecycle: creating a working set on
// first use, continuously persisting it to local JSON snapshots, and
// restoring the last active set on start. The syncer reads assembled
// sessions from here and reports sync outcomes back.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/beduldjakurra/stockproduksi/internal/model"
	"github.com/beduldjakurra/stockproduksi/internal/service/store"
)

const (
	schemaVersion     = 1
	saveDebounceDelay = time.Second
)

// Manager maintains the session index, the active session and its
// debounced local persistence.
type Manager struct {
	dataDir string
	store   *store.ProductionStore
	log     *zap.Logger

	mu        sync.Mutex
	index     SessionsIndex
	active    *model.Session
	saveTimer *time.Timer

	// muting suppresses the store change callback while the manager itself
	// drives the store (load, reset on switch), since the callback takes mu.
	muting atomic.Bool
}

// NewManager loads the index and restores the last active session into the
// production store. The store's change callback is wired here so every edit
// schedules an autosave.
func NewManager(dataDir string, st *store.ProductionStore, log *zap.Logger) (*Manager, error) {
	if dataDir == "" {
		return nil, errors.New("dataDir is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	m := &Manager{
		dataDir: dataDir,
		store:   st,
		log:     log,
		index: SessionsIndex{
			SchemaVersion: schemaVersion,
			Items:         []SessionSummary{},
		},
	}

	if err := m.loadIndex(); err != nil {
		return nil, err
	}
	if id := m.index.LastActiveID; id != "" {
		if err := m.loadSessionState(id); err != nil {
			m.log.Warn("failed to restore last session", zap.String("sessionId", id), zap.Error(err))
		}
	}

	st.OnChange(m.onStoreChange)
	return m, nil
}

func (m *Manager) indexPath() string {
	return filepath.Join(m.dataDir, "sessions.json")
}

func (m *Manager) sessionDir(sessionID string) string {
	return filepath.Join(m.dataDir, sessionID)
}

func (m *Manager) statePath(sessionID string) string {
	return filepath.Join(m.sessionDir(sessionID), "state.json")
}

func (m *Manager) loadIndex() error {
	path := m.indexPath()
	if !fileExists(path) {
		return writeJSONAtomic(path, m.index)
	}
	var idx SessionsIndex
	if err := readJSON(path, &idx); err != nil {
		return err
	}
	if idx.SchemaVersion == 0 {
		idx.SchemaVersion = schemaVersion
	}
	m.index = idx
	return nil
}

func (m *Manager) saveIndexLocked() error {
	return writeJSONAtomic(m.indexPath(), m.index)
}

// onStoreChange marks the active session edited and schedules a debounced
// save. Fired by the production store after every committed mutation.
func (m *Manager) onStoreChange() {
	if m.muting.Load() {
		return
	}
	m.mu.Lock()
	if m.active != nil {
		m.active.Touch()
	}
	m.mu.Unlock()
	m.ScheduleSave()
}

// driveStore runs a manager-initiated store mutation with the change
// callback muted.
func (m *Manager) driveStore(fn func()) {
	m.muting.Store(true)
	defer m.muting.Store(false)
	fn()
}

// CreateSession starts a fresh working set for the owner and makes it
// active. An empty name falls back to the owner/date convention.
func (m *Manager) CreateSession(ownerID, name string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		name = model.DefaultSessionName(ownerID, time.Now())
	}

	if m.active != nil {
		if err := m.saveNowLocked(); err != nil {
			return nil, err
		}
	}

	s := model.NewSession(ownerID, name)
	now := s.CreatedAt
	m.index.Items = append(m.index.Items, SessionSummary{
		SessionID:    s.SessionID,
		SessionName:  s.SessionName,
		OwnerID:      s.OwnerID,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastOpenedAt: now,
	})
	m.index.LastActiveID = s.SessionID
	m.active = s

	m.driveStore(m.store.ResetAll)

	if err := m.saveIndexLocked(); err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// EnsureSession returns the active session, creating one implicitly for
// anonymous/local mode when none exists yet.
func (m *Manager) EnsureSession(ownerID string) (*model.Session, error) {
	m.mu.Lock()
	if m.active != nil {
		s := m.assembleLocked()
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()
	return m.CreateSession(ownerID, "")
}

// Active returns the assembled active session: stored identity plus the
// current raw inputs from the production store. Nil when no session exists.
func (m *Manager) Active() *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	return m.assembleLocked()
}

// assembleLocked merges the live store snapshot into a session copy.
func (m *Manager) assembleLocked() *model.Session {
	s := m.active.Clone()
	s.LineItems = m.store.Snapshot()
	s.IsNightMode = m.store.IsNightMode()
	return s
}

// SelectSession switches to another stored session, saving the current one
// first so no edits are lost.
func (m *Manager) SelectSession(sessionID string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID == "" {
		return nil, errors.New("sessionId is required")
	}
	if m.active != nil && m.active.SessionID != sessionID {
		if err := m.saveNowLocked(); err != nil {
			return nil, err
		}
	}
	if _, ok := m.findSummaryLocked(sessionID); !ok {
		return nil, errors.New("session not found")
	}

	if err := m.loadSessionState(sessionID); err != nil {
		return nil, err
	}

	now := time.Now()
	if sum, ok := m.findSummaryLocked(sessionID); ok {
		sum.LastOpenedAt = now
		m.replaceSummaryLocked(sum)
	}
	m.index.LastActiveID = sessionID
	if err := m.saveIndexLocked(); err != nil {
		return nil, err
	}
	return m.assembleLocked(), nil
}

// ListSessions returns the index sorted by last opened, newest first.
func (m *Manager) ListSessions() []SessionSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshHasDataLocked()

	out := make([]SessionSummary, len(m.index.Items))
	copy(out, m.index.Items)
	return out
}

// DeleteSession removes a stored session and its snapshot directory.
func (m *Manager) DeleteSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.findSummaryLocked(sessionID); !ok {
		return errors.New("session not found")
	}

	next := make([]SessionSummary, 0, len(m.index.Items))
	for _, item := range m.index.Items {
		if item.SessionID != sessionID {
			next = append(next, item)
		}
	}
	m.index.Items = next

	_ = os.RemoveAll(m.sessionDir(sessionID))

	if m.active != nil && m.active.SessionID == sessionID {
		m.active = nil
		m.index.LastActiveID = ""
		m.driveStore(m.store.ResetAll)
	} else if m.index.LastActiveID == sessionID {
		m.index.LastActiveID = ""
	}

	return m.saveIndexLocked()
}

// Reset clears every line item of the active session back to defaults and
// returns sync status to idle. The session identity survives.
func (m *Manager) Reset() error {
	m.mu.Lock()
	if m.active == nil {
		m.mu.Unlock()
		return errors.New("no active session")
	}
	m.active.SyncStatus = model.SyncIdle
	m.active.ErrorCount = 0
	m.active.LastSyncTime = nil
	m.mu.Unlock()

	// ResetAll fires onStoreChange, which touches and schedules a save.
	m.store.ResetAll()
	return nil
}

// SetSyncState records the syncer's outcome on the active session.
func (m *Manager) SetSyncState(status model.SyncStatus, lastSync *time.Time, errorCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return
	}
	m.active.SyncStatus = status
	m.active.ErrorCount = errorCount
	if lastSync != nil {
		t := *lastSync
		m.active.LastSyncTime = &t
	}
}

// ApplyRemote replaces the active session's data with a remote copy that
// won last-write-wins reconciliation. The remote's update timestamp is kept
// as-is so the next cycle does not see a phantom local edit.
func (m *Manager) ApplyRemote(remote *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.active.SessionID != remote.SessionID {
		return fmt.Errorf("remote session %s is not active", remote.SessionID)
	}
	m.active.SessionName = remote.SessionName
	m.active.UpdatedAt = remote.UpdatedAt

	m.driveStore(func() {
		m.store.LoadSnapshot(remote.LineItems)
		m.store.SetMode(remote.IsNightMode)
	})
	return m.saveNowLocked()
}

// ScheduleSave arms the debounced autosave timer. Repeated edits within the
// window collapse into one write.
func (m *Manager) ScheduleSave() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return
	}
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(saveDebounceDelay, func() {
		if err := m.SaveNow(); err != nil {
			m.log.Warn("autosave failed", zap.Error(err))
		}
	})
}

// SaveNow flushes the active session to disk immediately. Called on
// shutdown so a pending debounce window cannot drop edits.
func (m *Manager) SaveNow() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveNowLocked()
}

func (m *Manager) saveNowLocked() error {
	if m.active == nil {
		return nil
	}
	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}

	s := m.assembleLocked()
	state := sessionState{
		SchemaVersion: schemaVersion,
		Session:       s,
	}
	if err := writeJSONAtomic(m.statePath(s.SessionID), state); err != nil {
		return err
	}

	if sum, ok := m.findSummaryLocked(s.SessionID); ok {
		sum.UpdatedAt = s.UpdatedAt
		sum.HasData = true
		m.replaceSummaryLocked(sum)
	}
	return m.saveIndexLocked()
}

// loadSessionState reads a snapshot from disk into the production store.
// Derived columns come back via LoadSnapshot's recompute, never from disk.
func (m *Manager) loadSessionState(sessionID string) error {
	path := m.statePath(sessionID)
	if !fileExists(path) {
		// Index entry without a snapshot yet: activate it empty.
		if sum, ok := m.findSummaryLocked(sessionID); ok {
			m.active = &model.Session{
				SessionID:   sum.SessionID,
				SessionName: sum.SessionName,
				OwnerID:     sum.OwnerID,
				CreatedAt:   sum.CreatedAt,
				UpdatedAt:   sum.UpdatedAt,
				SyncStatus:  model.SyncIdle,
			}
			m.driveStore(m.store.ResetAll)
			return nil
		}
		return fmt.Errorf("session %s has no state", sessionID)
	}

	var state sessionState
	if err := readJSON(path, &state); err != nil {
		return err
	}
	if state.Session == nil {
		return fmt.Errorf("session %s state is empty", sessionID)
	}

	m.active = state.Session.Clone()
	m.driveStore(func() {
		m.store.LoadSnapshot(state.Session.LineItems)
		m.store.SetMode(state.Session.IsNightMode)
	})
	return nil
}

func (m *Manager) refreshHasDataLocked() {
	for i := range m.index.Items {
		id := m.index.Items[i].SessionID
		m.index.Items[i].HasData = fileExists(m.statePath(id))
	}
	sort.SliceStable(m.index.Items, func(i, j int) bool {
		return m.index.Items[i].LastOpenedAt.After(m.index.Items[j].LastOpenedAt)
	})
}

func (m *Manager) findSummaryLocked(sessionID string) (SessionSummary, bool) {
	for _, item := range m.index.Items {
		if item.SessionID == sessionID {
			return item, true
		}
	}
	return SessionSummary{}, false
}

func (m *Manager) replaceSummaryLocked(sum SessionSummary) {
	for i := range m.index.Items {
		if m.index.Items[i].SessionID == sum.SessionID {
			m.index.Items[i] = sum
			return
		}
	}
}
