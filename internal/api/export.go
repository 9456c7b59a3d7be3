package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beduldjakurra/stockproduksi/internal/exporter"
)

const downloadTTL = 10 * time.Minute

// ExportResponse returns the one-time download token for a finished
// export. InFlight is set instead when another export is still running;
// the client simply keeps its current download.
type ExportResponse struct {
	InFlight bool   `json:"inFlight"`
	Token    string `json:"token,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// ExportExcel renders the three tables into a workbook.
// POST /api/export/excel
func (h *Handler) ExportExcel(c *gin.Context) {
	active := h.sessions.Active()
	if active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "belum ada sesi aktif"})
		return
	}

	path, err := h.exporter.ExportExcel(active.SessionName, h.store.Items(), nil)
	h.respondExport(c, path, err)
}

// ExportJPG renders the three tables into one shareable image.
// POST /api/export/jpg
func (h *Handler) ExportJPG(c *gin.Context) {
	active := h.sessions.Active()
	if active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "belum ada sesi aktif"})
		return
	}

	path, err := h.exporter.ExportJPG(active.SessionName, h.store.Items(), h.store.IsNightMode(), nil)
	h.respondExport(c, path, err)
}

func (h *Handler) respondExport(c *gin.Context, path string, err error) {
	if errors.Is(err, exporter.ErrExportInFlight) {
		c.JSON(http.StatusOK, ExportResponse{InFlight: true})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token := h.downloads.put(path, downloadTTL)
	h.log.Info("export ready", zap.String("file", filepath.Base(path)))
	c.JSON(http.StatusOK, ExportResponse{
		Token:    token,
		Filename: filepath.Base(path),
	})
}

// DownloadExport streams a finished export once. Tokens expire and are
// consumed on use.
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	dl, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "token tidak dikenal atau kedaluwarsa"})
		return
	}
	h.downloads.delete(token)

	name := filepath.Base(dl.filePath)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if filepath.Ext(name) == ".xlsx" {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	} else {
		c.Header("Content-Type", "image/jpeg")
	}
	c.File(dl.filePath)
}
