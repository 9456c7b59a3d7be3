package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beduldjakurra/stockproduksi/internal/model"
)

// StatusResponse is the system status payload.
type StatusResponse struct {
	Ready        bool   `json:"ready"`
	SessionID    string `json:"sessionId"`
	SessionName  string `json:"sessionName"`
	ItemCount    int    `json:"itemCount"`
	IsNightMode  bool   `json:"isNightMode"`
	SyncStatus   string `json:"syncStatus"`
	Online       bool   `json:"online"`
	LastSyncTime string `json:"lastSyncTime"`
}

// GetStatus reports the active session and sync state.
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	active := h.sessions.Active()
	if active == nil {
		c.JSON(http.StatusOK, StatusResponse{
			Ready:     false,
			ItemCount: model.CodeCount(),
		})
		return
	}

	st := h.sync.State()
	resp := StatusResponse{
		Ready:       true,
		SessionID:   active.SessionID,
		SessionName: active.SessionName,
		ItemCount:   len(active.LineItems),
		IsNightMode: active.IsNightMode,
		SyncStatus:  string(st.Status),
		Online:      st.Online,
	}
	if st.LastSync != nil {
		resp.LastSyncTime = st.LastSync.Format("2006-01-02 15:04:05")
	}
	c.JSON(http.StatusOK, resp)
}
