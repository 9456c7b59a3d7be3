package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/beduldjakurra/stockproduksi/internal/model"
	"github.com/beduldjakurra/stockproduksi/internal/syncer"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "sto.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndFetchSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := model.NewSession("op", "shift A")
	sess.LineItems[0].StockAwal = "100"
	sess.LineItems[0].ActBoxText = "10,20"
	sess.IsNightMode = true
	sess.SyncStatus = model.SyncSynced
	now := time.Now().UTC().Truncate(time.Millisecond)
	sess.LastSyncTime = &now

	if err := s.UpsertSession(ctx, sess); err != nil {
		t.Fatal(err)
	}

	got, err := s.FetchSession(ctx, sess.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if got.SessionName != "shift A" || got.OwnerID != "op" {
		t.Errorf("fetched %+v", got)
	}
	if !got.IsNightMode {
		t.Error("night mode lost")
	}
	if got.LineItems[0].StockAwal != "100" || got.LineItems[0].ActBoxText != "10,20" {
		t.Errorf("line items lost: %+v", got.LineItems[0])
	}
	if got.LastSyncTime == nil || !got.LastSyncTime.Equal(now) {
		t.Errorf("last sync time = %v, want %v", got.LastSyncTime, now)
	}

	// Second upsert replaces the row.
	sess.LineItems[0].StockAwal = "200"
	sess.UpdatedAt = time.Now()
	if err := s.UpsertSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	got, err = s.FetchSession(ctx, sess.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if got.LineItems[0].StockAwal != "200" {
		t.Errorf("upsert did not replace, got %q", got.LineItems[0].StockAwal)
	}
}

func TestFetchSessionNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FetchSession(context.Background(), "missing")
	if !errors.Is(err, syncer.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestListAndDeleteSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := model.NewSession("op", "a")
	b := model.NewSession("op", "b")
	b.UpdatedAt = a.UpdatedAt.Add(time.Minute)
	other := model.NewSession("someone-else", "x")

	for _, sess := range []*model.Session{a, b, other} {
		if err := s.UpsertSession(ctx, sess); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListSessions(ctx, "op")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d sessions, want 2", len(list))
	}
	if list[0].SessionID != b.SessionID {
		t.Error("list should be newest first")
	}

	if err := s.DeleteSession(ctx, a.SessionID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FetchSession(ctx, a.SessionID); !errors.Is(err, syncer.ErrSessionNotFound) {
		t.Error("deleted session should be gone")
	}
}
