package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beduldjakurra/stockproduksi/internal/syncer"
)

// TriggerSync runs one sync cycle. Offline requests queue for the next
// reconnect instead of failing the call.
// POST /api/sync
func (h *Handler) TriggerSync(c *gin.Context) {
	err := h.sync.Sync(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, h.sync.State())
	case errors.Is(err, syncer.ErrOffline):
		c.JSON(http.StatusAccepted, h.sync.State())
	case errors.Is(err, syncer.ErrNoSession):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

// SyncStatus reports the sync state machine.
// GET /api/sync/status
func (h *Handler) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.sync.State())
}

// SetOnlineRequest flips the connectivity flag the client reports.
type SetOnlineRequest struct {
	Online bool `json:"online"`
}

// SetOnline records connectivity reported by the client. Going online
// with queued edits starts a sync immediately.
// POST /api/online
func (h *Handler) SetOnline(c *gin.Context) {
	var req SetOnlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	h.sync.SetOnline(req.Online)
	c.JSON(http.StatusOK, h.sync.State())
}
