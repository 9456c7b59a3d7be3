package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/beduldjakurra/stockproduksi/internal/model"
	"github.com/beduldjakurra/stockproduksi/internal/syncer"
)

// UpsertSession writes one session row, replacing any previous version.
// Implements syncer.Remote.
func (s *Store) UpsertSession(ctx context.Context, sess *model.Session) error {
	items, err := json.Marshal(sess.LineItems)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}

	var lastSync interface{}
	if sess.LastSyncTime != nil {
		lastSync = sess.LastSyncTime.UTC().Format(time.RFC3339Nano)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			session_id, session_name, owner_id, created_at, updated_at,
			is_night_mode, line_items, sync_status, last_sync_time, error_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			session_name   = excluded.session_name,
			updated_at     = excluded.updated_at,
			is_night_mode  = excluded.is_night_mode,
			line_items     = excluded.line_items,
			sync_status    = excluded.sync_status,
			last_sync_time = excluded.last_sync_time,
			error_count    = excluded.error_count
	`,
		sess.SessionID, sess.SessionName, sess.OwnerID,
		sess.CreatedAt.UTC().Format(time.RFC3339Nano),
		sess.UpdatedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(sess.IsNightMode), string(items),
		string(sess.SyncStatus), lastSync, sess.ErrorCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// FetchSession reads one session row. Returns syncer.ErrSessionNotFound
// when no row exists yet.
func (s *Store) FetchSession(ctx context.Context, sessionID string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, session_name, owner_id, created_at, updated_at,
		       is_night_mode, line_items, sync_status, last_sync_time, error_count
		FROM sessions WHERE session_id = ?
	`, sessionID)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, syncer.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	return sess, nil
}

// ListSessions returns every stored session for an owner, newest first.
func (s *Store) ListSessions(ctx context.Context, ownerID string) ([]*model.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, session_name, owner_id, created_at, updated_at,
		       is_night_mode, line_items, sync_status, last_sync_time, error_count
		FROM sessions WHERE owner_id = ? ORDER BY updated_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []*model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// DeleteSession removes one session row.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(r rowScanner) (*model.Session, error) {
	var (
		sess      model.Session
		createdAt string
		updatedAt string
		night     int
		items     string
		status    string
		lastSync  sql.NullString
	)
	err := r.Scan(
		&sess.SessionID, &sess.SessionName, &sess.OwnerID,
		&createdAt, &updatedAt, &night, &items, &status, &lastSync, &sess.ErrorCount,
	)
	if err != nil {
		return nil, err
	}

	if sess.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if sess.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at: %w", err)
	}
	sess.IsNightMode = night != 0
	sess.SyncStatus = model.SyncStatus(status)
	if lastSync.Valid {
		t, err := time.Parse(time.RFC3339Nano, lastSync.String)
		if err != nil {
			return nil, fmt.Errorf("bad last_sync_time: %w", err)
		}
		sess.LastSyncTime = &t
	}
	if err := json.Unmarshal([]byte(items), &sess.LineItems); err != nil {
		return nil, fmt.Errorf("bad line_items: %w", err)
	}
	return &sess, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
