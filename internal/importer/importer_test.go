package importer

import (
	"bytes"
	"os"
	"testing"

	"github.com/beduldjakurra/stockproduksi/internal/exporter"
	"github.com/beduldjakurra/stockproduksi/internal/model"
	"github.com/beduldjakurra/stockproduksi/internal/service/store"
)

func TestImportRoundTripsExportedWorkbook(t *testing.T) {
	src := store.New()
	mustSet(t, src, model.FieldStockAwal, 0, "100")
	mustSet(t, src, model.FieldProduksi, 0, "50")
	mustSet(t, src, model.FieldActBox, 0, "10,20")
	mustSet(t, src, model.FieldFC2D, 1, "2.5")
	mustSet(t, src, model.FieldAnzenStock, 1, "40")

	e := exporter.NewExporter(t.TempDir(), nil)
	path, err := e.ExportExcel("roundtrip", src.Items(), nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	dst := store.New()
	res, err := NewImporter(dst, nil).Import(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Sheets == 0 || res.RowsMatched == 0 {
		t.Fatalf("nothing imported: %+v", res)
	}

	got, err := dst.Item(0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Raw.StockAwal != "100" || got.Raw.Produksi != "50" {
		t.Fatalf("raw inputs = %+v", got.Raw)
	}
	if got.Raw.ActBox != "10,20" {
		t.Fatalf("act box = %q", got.Raw.ActBox)
	}
	// Derived columns come back via recompute, not from the sheet.
	if got.Derived.ActQty != 30*model.KodeInject[0].StdPack {
		t.Fatalf("act qty = %d", got.Derived.ActQty)
	}

	second, err := dst.Item(1)
	if err != nil {
		t.Fatal(err)
	}
	if second.Raw.FC2D != "2.5" || second.Raw.AnzenStock != "40" {
		t.Fatalf("kekuatan inputs = %+v", second.Raw)
	}
}

func TestImportSkipsUnknownRowsAndColumns(t *testing.T) {
	src := store.New()
	mustSet(t, src, model.FieldStockAwal, 0, "7")
	e := exporter.NewExporter(t.TempDir(), nil)
	path, err := e.ExportExcel("skip", src.Items(), nil)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	dst := store.New()
	res, err := NewImporter(dst, nil).Import(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	// All three sheets carry a Kode column; every fixed code matches.
	if res.RowsSkipped != 0 {
		t.Fatalf("skipped = %d", res.RowsSkipped)
	}
	if res.Sheets != 3 {
		t.Fatalf("sheets = %d", res.Sheets)
	}
}

func TestImportRejectsForeignWorkbook(t *testing.T) {
	dst := store.New()
	_, err := NewImporter(dst, nil).Import(bytes.NewReader([]byte("not a workbook")))
	if err == nil {
		t.Fatal("expected error for non-xlsx input")
	}
}

func mustSet(t *testing.T, s *store.ProductionStore, f model.Field, idx int, v string) {
	t.Helper()
	if _, err := s.SetRawInput(f, idx, v); err != nil {
		t.Fatalf("SetRawInput(%s, %d, %q): %v", f, idx, v, err)
	}
}
