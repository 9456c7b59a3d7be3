package exporter

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/beduldjakurra/stockproduksi/internal/model"
)

func sampleItems() []model.LineItem {
	items := make([]model.LineItem, len(model.KodeInject))
	for i, c := range model.KodeInject {
		items[i] = model.LineItem{
			Code: c.Kode,
			Derived: model.Derived{
				KekuatanStock: math.NaN(),
				KekuatanAnzen: math.NaN(),
			},
		}
	}
	items[0].Raw = model.RawInputs{
		StockAwal: "100",
		Produksi:  "50",
		Surcip:    "30",
		ActBox:    "10,20",
	}
	items[0].Derived = model.Derived{
		ActQty:        600,
		Gap:           -480,
		BoxActQty:     600,
		KekuatanStock: 1.5,
		KekuatanAnzen: 0.5,
	}
	return items
}

func TestBuildTables(t *testing.T) {
	items := sampleItems()
	tables := BuildAll(items)
	if len(tables) != 3 {
		t.Fatalf("tables = %d, want 3", len(tables))
	}
	for _, tb := range tables {
		if len(tb.Rows) != model.CodeCount() {
			t.Fatalf("%s rows = %d, want %d", tb.Title, len(tb.Rows), model.CodeCount())
		}
		for _, row := range tb.Rows {
			if len(row) != len(tb.Headers) {
				t.Fatalf("%s row width %d != headers %d", tb.Title, len(row), len(tb.Headers))
			}
		}
	}

	main := tables[0]
	if got := main.Rows[0][8]; got != "600" {
		t.Fatalf("ACT QTY = %q, want 600", got)
	}
	if got := main.Rows[0][9]; got != "-480" {
		t.Fatalf("GAP = %q, want -480", got)
	}
	// Empty cells render as zero, matching the on-screen tables.
	if got := main.Rows[1][2]; got != "0" {
		t.Fatalf("empty stock awal = %q, want 0", got)
	}

	strength := tables[2]
	if got := strength.Rows[0][5]; got != "1.5 hari" {
		t.Fatalf("kekuatan stock = %q", got)
	}
	if got := strength.Rows[1][5]; got != "-" {
		t.Fatalf("undefined strength = %q, want -", got)
	}
}

func TestExportExcelRoundTrip(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, nil)

	path, err := e.ExportExcel("local - 31/08/2026", sampleItems(), nil)
	if err != nil {
		t.Fatalf("ExportExcel: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("path %q not under %q", path, dir)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Stock Produksi", "Perhitungan Box", "Kekuatan Stock"}
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %v", sheets)
	}
	for i, s := range want {
		if sheets[i] != s {
			t.Fatalf("sheet[%d] = %q, want %q", i, sheets[i], s)
		}
	}

	v, err := f.GetCellValue("Stock Produksi", "I2")
	if err != nil {
		t.Fatal(err)
	}
	if v != "600" {
		t.Fatalf("I2 = %q, want 600", v)
	}
	v, err = f.GetCellValue("Perhitungan Box", "C2")
	if err != nil {
		t.Fatal(err)
	}
	if v != "20" {
		t.Fatalf("std pack C2 = %q, want 20", v)
	}
}

func TestExportJPGWritesFile(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, nil)

	path, err := e.ExportJPG("shift-a", sampleItems(), true, nil)
	if err != nil {
		t.Fatalf("ExportJPG: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("empty jpg")
	}
}

func TestExportRejectsOverlap(t *testing.T) {
	e := NewExporter(t.TempDir(), nil)
	e.inFlight.Store(true)

	if _, err := e.ExportExcel("s", sampleItems(), nil); err != ErrExportInFlight {
		t.Fatalf("excel err = %v, want ErrExportInFlight", err)
	}
	if _, err := e.ExportJPG("s", sampleItems(), false, nil); err != ErrExportInFlight {
		t.Fatalf("jpg err = %v, want ErrExportInFlight", err)
	}

	// Once released a new export goes through again.
	e.inFlight.Store(false)
	if _, err := e.ExportExcel("s", sampleItems(), nil); err != nil {
		t.Fatalf("after release: %v", err)
	}
}
