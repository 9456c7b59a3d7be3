package exporter

import (
	"fmt"
	"math"
	"strconv"

	"github.com/beduldjakurra/stockproduksi/internal/model"
)

// Table is one report table ready for rendering to a sheet or an image.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// BuildStockProduksi lays out the main production table: operator inputs
// plus the computed ACT QTY and GAP columns.
func BuildStockProduksi(items []model.LineItem) Table {
	t := Table{
		Title: "Stock Produksi",
		Headers: []string{
			"No", "Kode", "Stock Awal", "Produksi",
			"Surcip", "Sunter", "KIIC", "ACT/Box", "ACT QTY", "GAP",
		},
	}
	for i, it := range items {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			it.Code,
			blankZero(it.Raw.StockAwal),
			blankZero(it.Raw.Produksi),
			blankZero(it.Raw.Surcip),
			blankZero(it.Raw.Sunter),
			blankZero(it.Raw.Kiic),
			it.Raw.ActBox,
			strconv.Itoa(it.Derived.ActQty),
			strconv.Itoa(it.Derived.Gap),
		})
	}
	return t
}

// BuildPerhitunganBox lays out the box calculation table.
func BuildPerhitunganBox(items []model.LineItem) Table {
	t := Table{
		Title:   "Perhitungan Box",
		Headers: []string{"No", "Kode", "Std Pack", "ACT/Box", "ACT QTY"},
	}
	for i, it := range items {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			it.Code,
			strconv.Itoa(stdPackFor(i)),
			it.Raw.ActBox,
			strconv.Itoa(it.Derived.BoxActQty),
		})
	}
	return t
}

// BuildKekuatanStock lays out the stock strength table. Strengths with no
// usable forecast render as a dash, matching the on-screen table.
func BuildKekuatanStock(items []model.LineItem) Table {
	t := Table{
		Title: "Kekuatan Stock",
		Headers: []string{
			"No", "Kode", "ACT QTY", "Anzen Stock", "FC 2D",
			"Kekuatan Stock", "Kekuatan Anzen",
		},
	}
	for i, it := range items {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			it.Code,
			strconv.Itoa(it.Derived.ActQty),
			blankZero(it.Raw.AnzenStock),
			it.Raw.FC2D,
			formatDays(it.Derived.KekuatanStock),
			formatDays(it.Derived.KekuatanAnzen),
		})
	}
	return t
}

// BuildAll returns the three report tables in tab order.
func BuildAll(items []model.LineItem) []Table {
	return []Table{
		BuildStockProduksi(items),
		BuildPerhitunganBox(items),
		BuildKekuatanStock(items),
	}
}

func stdPackFor(index int) int {
	if index < 0 || index >= len(model.KodeInject) {
		return 0
	}
	return model.KodeInject[index].StdPack
}

func blankZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func formatDays(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f hari", v)
}
