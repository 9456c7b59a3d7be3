package exporter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/beduldjakurra/stockproduksi/internal/model"
)

// ErrExportInFlight reports that an export is already running. Callers
// treat it as "nothing to do", not as a failure.
var ErrExportInFlight = errors.New("export already in progress")

// Exporter renders the three report tables to downloadable files.
// Only one export runs at a time; overlapping requests are rejected
// with ErrExportInFlight instead of queueing.
type Exporter struct {
	outDir   string
	log      *zap.Logger
	inFlight atomic.Bool
}

// NewExporter creates an exporter writing into outDir.
func NewExporter(outDir string, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{outDir: outDir, log: log}
}

// ExportExcel writes the session's three tables to one workbook, one
// sheet per table, and returns the file path.
func (e *Exporter) ExportExcel(sessionName string, items []model.LineItem, progress func(ProgressEvent)) (string, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return "", ErrExportInFlight
	}
	defer e.inFlight.Store(false)

	reportProgress(progress, 0, "menyiapkan workbook")

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	tables := BuildAll(items)
	for i, t := range tables {
		if err := writeSheet(f, t); err != nil {
			return "", fmt.Errorf("menulis sheet %s: %w", t.Title, err)
		}
		reportProgress(progress, (i+1)*80/len(tables), t.Title)
	}
	// Remove the default sheet excelize opens with.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", err
	}
	f.SetActiveSheet(0)

	path := e.outPath(sessionName, "xlsx")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("menyimpan workbook: %w", err)
	}

	reportProgress(progress, 100, "selesai")
	e.log.Info("excel export written",
		zap.String("path", path), zap.Int("rows", len(items)))
	return path, nil
}

func (e *Exporter) outPath(sessionName, ext string) string {
	name := fmt.Sprintf("%s_%s.%s",
		sanitizeFileName(sessionName),
		time.Now().Format("20060102_150405"),
		ext)
	return filepath.Join(e.outDir, name)
}

func sanitizeFileName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == '-' || r == '_' || r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "sto"
	}
	return string(out)
}

func writeSheet(f *excelize.File, t Table) error {
	if _, err := f.NewSheet(t.Title); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return err
	}

	for col, h := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(t.Title, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(t.Title, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if n, ok := asNumber(v); ok {
				err = f.SetCellValue(t.Title, cell, n)
			} else {
				err = f.SetCellValue(t.Title, cell, v)
			}
			if err != nil {
				return err
			}
		}
	}

	// Kode column wider than the numeric ones.
	if err := f.SetColWidth(t.Title, "A", "A", 6); err != nil {
		return err
	}
	if err := f.SetColWidth(t.Title, "B", "B", 14); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(t.Headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(t.Title, "C", last, 12)
}

// asNumber keeps plain integers as numbers in the sheet so totals stay
// summable; anything else (box lists, "1.5 hari") stays text.
func asNumber(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
