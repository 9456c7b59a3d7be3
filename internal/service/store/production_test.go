package store

import (
	"testing"

	"github.com/beduldjakurra/stockproduksi/internal/calculator"
	"github.com/beduldjakurra/stockproduksi/internal/model"
)

func TestSetRawInputRecomputes(t *testing.T) {
	s := New()

	mustSet := func(f model.Field, idx int, v string) {
		t.Helper()
		if _, err := s.SetRawInput(f, idx, v); err != nil {
			t.Fatalf("SetRawInput(%s, %d, %q): %v", f, idx, v, err)
		}
	}

	mustSet(model.FieldStockAwal, 0, "100")
	mustSet(model.FieldProduksi, 0, "50")
	mustSet(model.FieldSurcip, 0, "10")
	mustSet(model.FieldSunter, 0, "10")
	mustSet(model.FieldKiic, 0, "10")
	mustSet(model.FieldActBox, 0, "1,1")

	item, err := s.Item(0)
	if err != nil {
		t.Fatal(err)
	}

	pack := s.Codes()[0].StdPack
	wantAct := 2 * pack
	if item.Derived.ActQty != wantAct {
		t.Errorf("ActQty = %d, want %d", item.Derived.ActQty, wantAct)
	}
	wantGap := 100 + 50 - 30 - wantAct
	if item.Derived.Gap != wantGap {
		t.Errorf("Gap = %d, want %d", item.Derived.Gap, wantGap)
	}
}

func TestSetRawInputSanitizes(t *testing.T) {
	s := New()

	clean, err := s.SetRawInput(model.FieldActBox, 0, ",10,,20")
	if err != nil {
		t.Fatal(err)
	}
	if clean != "10,20" {
		t.Errorf("sanitized value = %q, want %q", clean, "10,20")
	}

	item, _ := s.Item(0)
	if item.Raw.ActBox != "10,20" {
		t.Errorf("stored value = %q, want %q", item.Raw.ActBox, "10,20")
	}

	clean, err = s.SetRawInput(model.FieldStockAwal, 1, "12a3")
	if err != nil {
		t.Fatal(err)
	}
	if clean != "123" {
		t.Errorf("sanitized qty = %q, want %q", clean, "123")
	}
}

func TestSetRawInputRejectsBadField(t *testing.T) {
	s := New()

	if _, err := s.SetRawInput(model.Field("bogus"), 0, "1"); err == nil {
		t.Error("unknown field must be rejected")
	}
	if _, err := s.SetRawInput(model.FieldProduksi, len(model.KodeInject), "1"); err == nil {
		t.Error("out of range index must be rejected")
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	s := New()
	if _, err := s.SetRawInput(model.FieldActBox, 2, "3,4"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetRawInput(model.FieldFC2D, 2, "10"); err != nil {
		t.Fatal(err)
	}

	before, _ := s.Item(2)
	if err := s.RecomputeDerived(2); err != nil {
		t.Fatal(err)
	}
	if err := s.RecomputeDerived(2); err != nil {
		t.Fatal(err)
	}
	after, _ := s.Item(2)

	if before.Derived != after.Derived {
		t.Errorf("recompute not idempotent: %+v vs %+v", before.Derived, after.Derived)
	}
}

func TestResetAll(t *testing.T) {
	s := New()
	s.SetMode(true)
	if _, err := s.SetRawInput(model.FieldStockAwal, 0, "42"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetRawInput(model.FieldActBox, 1, "5,5"); err != nil {
		t.Fatal(err)
	}

	s.ResetAll()

	for i, item := range s.Items() {
		if !item.Raw.IsEmpty() {
			t.Errorf("item %d raw inputs not empty after reset: %+v", i, item.Raw)
		}
		if item.Derived.ActQty != 0 || item.Derived.Gap != 0 {
			t.Errorf("item %d derived not zero after reset: %+v", i, item.Derived)
		}
		if !calculator.IsUndefined(item.Derived.KekuatanStock) {
			t.Errorf("item %d strength should be the undefined sentinel after reset", i)
		}
	}
	if s.IsNightMode() {
		t.Error("night mode should reset")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New()
	if _, err := s.SetRawInput(model.FieldStockAwal, 0, "100"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetRawInput(model.FieldActBox, 0, "10,20,30"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetRawInput(model.FieldFC2D, 3, "12.5"); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()

	restored := New()
	restored.LoadSnapshot(snap)

	wantItems := s.Items()
	gotItems := restored.Items()
	for i := range wantItems {
		if wantItems[i].Raw != gotItems[i].Raw {
			t.Errorf("item %d raw mismatch: %+v vs %+v", i, wantItems[i].Raw, gotItems[i].Raw)
		}
		// Derived columns were recomputed, not copied.
		if wantItems[i].Derived.ActQty != gotItems[i].Derived.ActQty {
			t.Errorf("item %d ActQty mismatch after load", i)
		}
	}
}

func TestOnChangeFires(t *testing.T) {
	s := New()
	calls := 0
	s.OnChange(func() { calls++ })

	if _, err := s.SetRawInput(model.FieldProduksi, 0, "5"); err != nil {
		t.Fatal(err)
	}
	s.SetMode(true)
	s.ResetAll()

	if calls != 3 {
		t.Errorf("onChange fired %d times, want 3", calls)
	}
}
