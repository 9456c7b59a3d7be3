package exporter

import (
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"github.com/beduldjakurra/stockproduksi/internal/model"
)

const (
	cellWidth  = 96.0
	cellHeight = 26.0
	kodeWidth  = 130.0
	tablePad   = 24.0
	titleSpace = 40.0
	jpegQual   = 92
)

// ExportJPG renders all three tables stacked into one JPEG, the share
// format operators post to the shift group chat. Honors the session's
// day or night palette.
func (e *Exporter) ExportJPG(sessionName string, items []model.LineItem, nightMode bool, progress func(ProgressEvent)) (string, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return "", ErrExportInFlight
	}
	defer e.inFlight.Store(false)

	reportProgress(progress, 0, "menyiapkan gambar")

	tables := BuildAll(items)

	width := 0.0
	height := tablePad
	for _, t := range tables {
		w := tablePad*2 + tableWidth(t)
		if w > width {
			width = w
		}
		height += titleSpace + cellHeight*float64(len(t.Rows)+1) + tablePad
	}

	pal := dayPalette()
	if nightMode {
		pal = nightPalette()
	}

	dc := gg.NewContext(int(width), int(height))
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetHexColor(pal.background)
	dc.Clear()

	y := tablePad
	for i, t := range tables {
		drawTable(dc, t, tablePad, y, pal)
		y += titleSpace + cellHeight*float64(len(t.Rows)+1) + tablePad
		reportProgress(progress, (i+1)*80/len(tables), t.Title)
	}

	path := e.outPath(sessionName, "jpg")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if err := jpeg.Encode(out, dc.Image(), &jpeg.Options{Quality: jpegQual}); err != nil {
		return "", fmt.Errorf("menyimpan gambar: %w", err)
	}

	reportProgress(progress, 100, "selesai")
	e.log.Info("jpg export written",
		zap.String("path", path), zap.Bool("nightMode", nightMode))
	return path, nil
}

type palette struct {
	background string
	header     string
	grid       string
	text       string
	title      string
}

func dayPalette() palette {
	return palette{
		background: "#FFFFFF",
		header:     "#DDEBF7",
		grid:       "#9CA3AF",
		text:       "#111827",
		title:      "#1D4ED8",
	}
}

func nightPalette() palette {
	return palette{
		background: "#111827",
		header:     "#1F2937",
		grid:       "#4B5563",
		text:       "#F9FAFB",
		title:      "#93C5FD",
	}
}

func tableWidth(t Table) float64 {
	if len(t.Headers) < 2 {
		return cellWidth * float64(len(t.Headers))
	}
	return kodeWidth + cellWidth*float64(len(t.Headers)-1)
}

func colX(left float64, col int) float64 {
	if col == 0 {
		return left
	}
	// Column 1 (Kode) is wider; No shares the narrow width.
	if col == 1 {
		return left + cellWidth
	}
	return left + cellWidth + kodeWidth + cellWidth*float64(col-2)
}

func colWidthAt(col int) float64 {
	if col == 1 {
		return kodeWidth
	}
	return cellWidth
}

func drawTable(dc *gg.Context, t Table, left, top float64, pal palette) {
	dc.SetHexColor(pal.title)
	dc.DrawString(t.Title, left, top+16)

	gridTop := top + titleSpace - cellHeight

	// Header band.
	dc.SetHexColor(pal.header)
	dc.DrawRectangle(left, gridTop, tableWidth(t), cellHeight)
	dc.Fill()

	rows := len(t.Rows) + 1
	dc.SetHexColor(pal.grid)
	for r := 0; r <= rows; r++ {
		y := gridTop + cellHeight*float64(r)
		dc.DrawLine(left, y, left+tableWidth(t), y)
		dc.Stroke()
	}
	for c := 0; c <= len(t.Headers); c++ {
		x := colX(left, c)
		if c == len(t.Headers) {
			x = left + tableWidth(t)
		}
		dc.DrawLine(x, gridTop, x, gridTop+cellHeight*float64(rows))
		dc.Stroke()
	}

	dc.SetHexColor(pal.text)
	for c, h := range t.Headers {
		drawCellText(dc, h, colX(left, c), gridTop, colWidthAt(c))
	}
	for r, row := range t.Rows {
		y := gridTop + cellHeight*float64(r+1)
		for c, v := range row {
			drawCellText(dc, v, colX(left, c), y, colWidthAt(c))
		}
	}
}

func drawCellText(dc *gg.Context, s string, x, y, w float64) {
	tw, _ := dc.MeasureString(s)
	if tw > w-8 {
		// Truncate instead of overflowing into the next column.
		for len(s) > 1 && tw > w-8 {
			s = s[:len(s)-1]
			tw, _ = dc.MeasureString(s)
		}
	}
	dc.DrawString(s, x+(w-tw)/2, y+cellHeight/2+4)
}
