package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/beduldjakurra/stockproduksi/internal/model"
	"github.com/beduldjakurra/stockproduksi/internal/service/store"
)

// Importer reads a previously exported workbook back into the live
// table. Rows are matched by Kode; unknown codes and unmapped columns
// are skipped, never an error.
type Importer struct {
	store *store.ProductionStore
	log   *zap.Logger
}

// NewImporter creates an importer writing into st.
func NewImporter(st *store.ProductionStore, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{store: st, log: log}
}

// Result summarizes one import run.
type Result struct {
	Sheets       int `json:"sheets"`
	RowsMatched  int `json:"rowsMatched"`
	CellsApplied int `json:"cellsApplied"`
	RowsSkipped  int `json:"rowsSkipped"`
}

// headerFields maps a normalized column header to the raw input field it
// carries. Derived columns (ACT QTY, GAP, the kekuatan pair) have no
// entry; they are recomputed, never imported.
var headerFields = map[string]model.Field{
	"stock awal":  model.FieldStockAwal,
	"produksi":    model.FieldProduksi,
	"surcip":      model.FieldSurcip,
	"sunter":      model.FieldSunter,
	"kiic":        model.FieldKiic,
	"act/box":     model.FieldActBox,
	"anzen stock": model.FieldAnzenStock,
	"fc 2d":       model.FieldFC2D,
}

// Import reads every sheet of the workbook and applies recognized cells
// through the store's sanitizers. Each applied cell triggers the usual
// recompute, so derived columns are consistent when Import returns.
func (im *Importer) Import(r io.Reader) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("membuka workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	codeIndex := make(map[string]int, model.CodeCount())
	for i, c := range model.KodeInject {
		codeIndex[normalizeText(c.Kode)] = i
	}

	var res Result
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return res, fmt.Errorf("membaca sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		mapping, kodeCol := mapHeaders(rows[0])
		if len(mapping) == 0 || kodeCol < 0 {
			continue
		}
		res.Sheets++

		for _, row := range rows[1:] {
			if kodeCol >= len(row) {
				res.RowsSkipped++
				continue
			}
			idx, ok := codeIndex[normalizeText(row[kodeCol])]
			if !ok {
				res.RowsSkipped++
				continue
			}
			res.RowsMatched++
			for col, field := range mapping {
				if col >= len(row) {
					continue
				}
				value := strings.TrimSpace(row[col])
				if value == "" {
					continue
				}
				if _, err := im.store.SetRawInput(field, idx, value); err != nil {
					return res, fmt.Errorf("sheet %s kode %s: %w", sheet, row[kodeCol], err)
				}
				res.CellsApplied++
			}
		}
	}

	if res.Sheets == 0 {
		return res, fmt.Errorf("workbook tidak memuat sheet yang dikenali")
	}

	im.log.Info("excel import applied",
		zap.Int("sheets", res.Sheets),
		zap.Int("rows", res.RowsMatched),
		zap.Int("cells", res.CellsApplied))
	return res, nil
}

// mapHeaders resolves each recognized column to its field and locates
// the Kode column. Unknown headers are ignored.
func mapHeaders(headers []string) (map[int]model.Field, int) {
	mapping := make(map[int]model.Field)
	kodeCol := -1
	for col, h := range headers {
		key := normalizeText(h)
		if key == "kode" {
			kodeCol = col
			continue
		}
		if f, ok := headerFields[key]; ok {
			mapping[col] = f
		}
	}
	return mapping, kodeCol
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
