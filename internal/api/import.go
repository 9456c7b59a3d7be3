package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxImportSize = 16 << 20

// Import applies an uploaded workbook to the active table.
// POST /api/import (multipart field "file")
func (h *Handler) Import(c *gin.Context) {
	if _, err := h.sessions.EnsureSession(ownerFrom(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file tidak ditemukan di form"})
		return
	}
	if fh.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file terlalu besar"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	res, err := h.importer.Import(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.log.Info("import finished",
		zap.String("file", fh.Filename),
		zap.Int("rows", res.RowsMatched))
	c.JSON(http.StatusOK, gin.H{
		"result": res,
		"items":  h.store.Items(),
	})
}
