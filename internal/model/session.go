package model

import (
	"time"

	"github.com/google/uuid"
)

// SyncStatus is the session sync state machine position.
type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
	// SyncPending means a sync was requested while offline. It is queued,
	// not failed: the error count does not move.
	SyncPending SyncStatus = "pending"
)

// LineItemRecord is the persisted form of one line item: raw inputs only.
// Derived columns are recomputed on load and never written out.
type LineItemRecord struct {
	Code         string `json:"code"`
	StockAwal    string `json:"stockAwal"`
	Produksi     string `json:"produksi"`
	TransferA    string `json:"transferA"` // surcip
	TransferB    string `json:"transferB"` // sunter
	TransferC    string `json:"transferC"` // kiic
	ActBoxText   string `json:"actBoxText"`
	SafetyStock  string `json:"safetyStock"`
	Forecast2Day string `json:"forecast2Day"`
}

// Session is one persisted working set: identity, the full line item
// collection and the current sync bookkeeping.
type Session struct {
	SessionID    string           `json:"sessionId"`
	SessionName  string           `json:"sessionName"`
	OwnerID      string           `json:"ownerId"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	IsNightMode  bool             `json:"isNightMode"`
	LineItems    []LineItemRecord `json:"lineItems"`
	SyncStatus   SyncStatus       `json:"syncStatus"`
	LastSyncTime *time.Time       `json:"lastSyncTime,omitempty"`
	ErrorCount   int              `json:"errorCount"`
}

// NewSession creates an empty session for the given owner. Every code from
// the KODE INJECT list gets a blank record, keeping list order.
func NewSession(ownerID, name string) *Session {
	now := time.Now()
	s := &Session{
		SessionID:   uuid.NewString(),
		SessionName: name,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
		SyncStatus:  SyncIdle,
		LineItems:   make([]LineItemRecord, 0, len(KodeInject)),
	}
	for _, c := range KodeInject {
		s.LineItems = append(s.LineItems, LineItemRecord{Code: c.Kode})
	}
	return s
}

// DefaultSessionName builds the session label from the owner's email,
// matching the first-login convention: local part plus the current date.
func DefaultSessionName(email string, at time.Time) string {
	local := email
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			local = email[:i]
			break
		}
	}
	return local + " - " + at.Format("02/01/2006")
}

// Touch bumps the update timestamp. Called on every mutation so
// last-write-wins reconciliation sees local edits.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}

// Clone returns a deep copy. The syncer uploads copies so in-flight
// serialization never races with an operator edit.
func (s *Session) Clone() *Session {
	out := *s
	out.LineItems = make([]LineItemRecord, len(s.LineItems))
	copy(out.LineItems, s.LineItems)
	if s.LastSyncTime != nil {
		t := *s.LastSyncTime
		out.LastSyncTime = &t
	}
	return &out
}
