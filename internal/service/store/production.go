// Package store holds the in-process production data store: the single
// shared mutable resource of the application. The UI thread (HTTP handlers)
// is the only writer; the syncer reads snapshots one at a time.
package store

import (
	"fmt"
	"sync"

	"github.com/beduldjakurra/stockproduksi/internal/calculator"
	"github.com/beduldjakurra/stockproduksi/internal/model"
)

// ProductionStore keeps the raw inputs and derived columns for every KODE
// INJECT row. Derived values are recomputed synchronously on every mutation
// commit, so no public call ever returns with a derived column inconsistent
// with its raw inputs.
type ProductionStore struct {
	mu sync.RWMutex

	codes       []model.Code
	raw         []model.RawInputs
	derived     []model.Derived
	dirty       []bool
	isNightMode bool

	// onChange fires after every committed mutation, outside the lock.
	// The session manager uses it to schedule autosave.
	onChange func()
}

// New creates a store over the fixed code list with blank inputs.
func New() *ProductionStore {
	s := &ProductionStore{
		codes:   model.KodeInject,
		raw:     make([]model.RawInputs, len(model.KodeInject)),
		derived: make([]model.Derived, len(model.KodeInject)),
		dirty:   make([]bool, len(model.KodeInject)),
	}
	for i := range s.derived {
		s.derived[i] = calculator.Recompute(s.codes[i], s.raw[i])
	}
	return s
}

// OnChange registers the mutation callback. Must be set before the store is
// shared; there is no unregister.
func (s *ProductionStore) OnChange(fn func()) {
	s.onChange = fn
}

func (s *ProductionStore) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// SetRawInput sanitizes, stores and recomputes one input cell. The returned
// string is the sanitized value actually stored, so the caller can echo it
// back to the input. Mutations for the same index are applied in call order;
// the store is the serialization point.
func (s *ProductionStore) SetRawInput(field model.Field, index int, rawText string) (string, error) {
	if !field.IsValid() {
		return "", &model.ValidationError{Field: field, Index: index, Message: "unknown field"}
	}
	if index < 0 || index >= len(s.codes) {
		return "", &model.ValidationError{Field: field, Index: index, Message: "index out of range"}
	}

	clean := calculator.SanitizeField(field, rawText)

	s.mu.Lock()
	s.raw[index].Set(field, clean)
	s.dirty[index] = true
	s.recomputeLocked(index)
	s.mu.Unlock()

	s.notify()
	return clean, nil
}

// RecomputeDerived recomputes all derived columns for one code from current
// raw inputs. Idempotent; safe to call at any time.
func (s *ProductionStore) RecomputeDerived(index int) error {
	if index < 0 || index >= len(s.codes) {
		return fmt.Errorf("recompute: index %d out of range", index)
	}
	s.mu.Lock()
	s.recomputeLocked(index)
	s.mu.Unlock()
	return nil
}

func (s *ProductionStore) recomputeLocked(index int) {
	s.derived[index] = calculator.Recompute(s.codes[index], s.raw[index])
	s.dirty[index] = false
}

// SetMode toggles the session-wide day/night report flag. Display only;
// derived values are untouched.
func (s *ProductionStore) SetMode(night bool) {
	s.mu.Lock()
	s.isNightMode = night
	s.mu.Unlock()
	s.notify()
}

// IsNightMode reports the current report mode.
func (s *ProductionStore) IsNightMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isNightMode
}

// ResetAll clears every raw and derived value back to defaults.
func (s *ProductionStore) ResetAll() {
	s.mu.Lock()
	for i := range s.raw {
		s.raw[i] = model.RawInputs{}
		s.recomputeLocked(i)
	}
	s.isNightMode = false
	s.mu.Unlock()
	s.notify()
}

// Item returns a copy of one line item with its derived columns.
func (s *ProductionStore) Item(index int) (model.LineItem, error) {
	if index < 0 || index >= len(s.codes) {
		return model.LineItem{}, fmt.Errorf("item: index %d out of range", index)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.LineItem{
		Code:    s.codes[index].Kode,
		Raw:     s.raw[index],
		Derived: s.derived[index],
	}, nil
}

// Items returns a copy of every line item in code-list order.
func (s *ProductionStore) Items() []model.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LineItem, len(s.codes))
	for i := range s.codes {
		out[i] = model.LineItem{
			Code:    s.codes[i].Kode,
			Raw:     s.raw[i],
			Derived: s.derived[i],
		}
	}
	return out
}

// Codes returns the fixed code list the store was built over.
func (s *ProductionStore) Codes() []model.Code {
	return s.codes
}

// Snapshot serializes the full raw-input state. Derived columns are never
// part of a snapshot; they are recomputed on load.
func (s *ProductionStore) Snapshot() []model.LineItemRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LineItemRecord, len(s.codes))
	for i, r := range s.raw {
		out[i] = model.LineItemRecord{
			Code:         s.codes[i].Kode,
			StockAwal:    r.StockAwal,
			Produksi:     r.Produksi,
			TransferA:    r.Surcip,
			TransferB:    r.Sunter,
			TransferC:    r.Kiic,
			ActBoxText:   r.ActBox,
			SafetyStock:  r.AnzenStock,
			Forecast2Day: r.FC2D,
		}
	}
	return out
}

// LoadSnapshot restores raw inputs from a persisted record set, matching
// records to rows by code. Unknown codes are skipped; missing codes stay
// blank. Every cell passes through the sanitizer again so a tampered
// snapshot cannot smuggle malformed text in. All derived columns are
// recomputed before LoadSnapshot returns.
func (s *ProductionStore) LoadSnapshot(records []model.LineItemRecord) {
	byCode := make(map[string]model.LineItemRecord, len(records))
	for _, rec := range records {
		byCode[rec.Code] = rec
	}

	s.mu.Lock()
	for i, code := range s.codes {
		rec, ok := byCode[code.Kode]
		if !ok {
			s.raw[i] = model.RawInputs{}
		} else {
			s.raw[i] = model.RawInputs{
				StockAwal:  calculator.SanitizeQty(rec.StockAwal),
				Produksi:   calculator.SanitizeQty(rec.Produksi),
				Surcip:     calculator.SanitizeQty(rec.TransferA),
				Sunter:     calculator.SanitizeQty(rec.TransferB),
				Kiic:       calculator.SanitizeQty(rec.TransferC),
				ActBox:     calculator.SanitizeBoxList(rec.ActBoxText),
				AnzenStock: calculator.SanitizeQty(rec.SafetyStock),
				FC2D:       calculator.SanitizeForecast(rec.Forecast2Day),
			}
		}
		s.recomputeLocked(i)
	}
	s.mu.Unlock()
	s.notify()
}
