package model

import (
	"encoding/json"
	"math"
)

// Field identifies one raw operator input column.
type Field string

const (
	FieldStockAwal  Field = "stockAwal"  // stock at start of shift
	FieldProduksi   Field = "produksi"   // produced quantity
	FieldSurcip     Field = "surcip"     // transfer route Surabaya-Cikampek
	FieldSunter     Field = "sunter"     // transfer route Sunter
	FieldKiic       Field = "kiic"       // transfer route KIIC Karawang
	FieldActBox     Field = "actBox"     // comma separated box counts
	FieldAnzenStock Field = "anzenStock" // safety stock quantity
	FieldFC2D       Field = "fc2d"       // 2-day forecast, decimal
)

// QuantityFields are the digits-only input columns.
var QuantityFields = []Field{FieldStockAwal, FieldProduksi, FieldSurcip, FieldSunter, FieldKiic, FieldAnzenStock}

// IsValid reports whether f names a known input column.
func (f Field) IsValid() bool {
	switch f {
	case FieldStockAwal, FieldProduksi, FieldSurcip, FieldSunter, FieldKiic,
		FieldActBox, FieldAnzenStock, FieldFC2D:
		return true
	}
	return false
}

// Code is one entry of the fixed KODE INJECT list.
type Code struct {
	Kode     string `json:"kode"`
	StdPack  int    `json:"stdPack"`  // standard pack size per box
	LineDesc string `json:"lineDesc"` // injection line description
}

// KodeInject is the fixed, order-significant product code list for the
// injection division. Index positions are stable across sessions.
var KodeInject = []Code{
	{Kode: "D17N-RH", StdPack: 20, LineDesc: "Cushion frame RH"},
	{Kode: "D17N-LH", StdPack: 20, LineDesc: "Cushion frame LH"},
	{Kode: "D26E", StdPack: 16, LineDesc: "Back board"},
	{Kode: "D55L", StdPack: 10, LineDesc: "Side shield"},
	{Kode: "D65D", StdPack: 12, LineDesc: "Recliner cover"},
	{Kode: "W10A", StdPack: 24, LineDesc: "Headrest stay"},
	{Kode: "W30D", StdPack: 12, LineDesc: "Armrest base"},
	{Kode: "B74F", StdPack: 8, LineDesc: "Seat track cover"},
	{Kode: "B91A", StdPack: 10, LineDesc: "Lever handle"},
	{Kode: "Y5K", StdPack: 15, LineDesc: "Hinge cap"},
}

// CodeCount is the number of line items per session.
func CodeCount() int {
	return len(KodeInject)
}

// RawInputs holds the sanitized operator-entered text for one code.
// Values are stored as entered (after sanitization); parsing to numbers
// happens at recompute time so empty cells stay distinguishable from zero.
type RawInputs struct {
	StockAwal  string `json:"stockAwal"`
	Produksi   string `json:"produksi"`
	Surcip     string `json:"surcip"`
	Sunter     string `json:"sunter"`
	Kiic       string `json:"kiic"`
	ActBox     string `json:"actBoxText"`
	AnzenStock string `json:"safetyStock"`
	FC2D       string `json:"forecast2Day"`
}

// Derived holds the computed columns for one code. Never persisted;
// always recomputed from RawInputs.
type Derived struct {
	ActQty        int     `json:"actQty"`
	Gap           int     `json:"gap"`
	BoxActQty     int     `json:"boxActQty"`
	KekuatanStock float64 `json:"kekuatanStock"` // NaN when forecast is absent or zero
	KekuatanAnzen float64 `json:"kekuatanAnzen"` // NaN when forecast is absent or zero
}

// MarshalJSON writes undefined strengths as null; JSON has no NaN.
func (d Derived) MarshalJSON() ([]byte, error) {
	type wire struct {
		ActQty        int      `json:"actQty"`
		Gap           int      `json:"gap"`
		BoxActQty     int      `json:"boxActQty"`
		KekuatanStock *float64 `json:"kekuatanStock"`
		KekuatanAnzen *float64 `json:"kekuatanAnzen"`
	}
	w := wire{ActQty: d.ActQty, Gap: d.Gap, BoxActQty: d.BoxActQty}
	if !math.IsNaN(d.KekuatanStock) {
		w.KekuatanStock = &d.KekuatanStock
	}
	if !math.IsNaN(d.KekuatanAnzen) {
		w.KekuatanAnzen = &d.KekuatanAnzen
	}
	return json.Marshal(w)
}

// UnmarshalJSON restores null strengths to the NaN sentinel so a stored
// item decodes back to the exact in-memory form.
func (d *Derived) UnmarshalJSON(data []byte) error {
	type wire struct {
		ActQty        int      `json:"actQty"`
		Gap           int      `json:"gap"`
		BoxActQty     int      `json:"boxActQty"`
		KekuatanStock *float64 `json:"kekuatanStock"`
		KekuatanAnzen *float64 `json:"kekuatanAnzen"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	d.ActQty = w.ActQty
	d.Gap = w.Gap
	d.BoxActQty = w.BoxActQty
	d.KekuatanStock = math.NaN()
	d.KekuatanAnzen = math.NaN()
	if w.KekuatanStock != nil {
		d.KekuatanStock = *w.KekuatanStock
	}
	if w.KekuatanAnzen != nil {
		d.KekuatanAnzen = *w.KekuatanAnzen
	}
	return nil
}

// LineItem is the per-code record: raw inputs plus their derived columns.
type LineItem struct {
	Code    string    `json:"code"`
	Raw     RawInputs `json:"raw"`
	Derived Derived   `json:"derived"`
}

// Get returns the raw text stored for the given field.
func (r *RawInputs) Get(f Field) string {
	switch f {
	case FieldStockAwal:
		return r.StockAwal
	case FieldProduksi:
		return r.Produksi
	case FieldSurcip:
		return r.Surcip
	case FieldSunter:
		return r.Sunter
	case FieldKiic:
		return r.Kiic
	case FieldActBox:
		return r.ActBox
	case FieldAnzenStock:
		return r.AnzenStock
	case FieldFC2D:
		return r.FC2D
	}
	return ""
}

// Set stores raw text for the given field. The caller is responsible for
// sanitizing first.
func (r *RawInputs) Set(f Field, value string) {
	switch f {
	case FieldStockAwal:
		r.StockAwal = value
	case FieldProduksi:
		r.Produksi = value
	case FieldSurcip:
		r.Surcip = value
	case FieldSunter:
		r.Sunter = value
	case FieldKiic:
		r.Kiic = value
	case FieldActBox:
		r.ActBox = value
	case FieldAnzenStock:
		r.AnzenStock = value
	case FieldFC2D:
		r.FC2D = value
	}
}

// IsEmpty reports whether every input column is blank.
func (r *RawInputs) IsEmpty() bool {
	return *r == RawInputs{}
}
