package session

import (
	"time"

	"github.com/beduldjakurra/stockproduksi/internal/model"
)

// SessionSummary is the index entry for one working set.
type SessionSummary struct {
	SessionID    string    `json:"sessionId"`
	SessionName  string    `json:"sessionName"`
	OwnerID      string    `json:"ownerId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastOpenedAt time.Time `json:"lastOpenedAt"`
	HasData      bool      `json:"hasData"`
}

// SessionsIndex is the index file: data/sessions.json.
type SessionsIndex struct {
	SchemaVersion int              `json:"schemaVersion"`
	LastActiveID  string           `json:"lastActiveSessionId"`
	Items         []SessionSummary `json:"items"`
}

// sessionState is the per-session snapshot file: data/{sessionId}/state.json.
// Raw inputs only; derived columns are recomputed on load.
type sessionState struct {
	SchemaVersion int                    `json:"schemaVersion"`
	Session       *model.Session         `json:"session"`
}
