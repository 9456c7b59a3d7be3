package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beduldjakurra/stockproduksi/internal/exporter"
	"github.com/beduldjakurra/stockproduksi/internal/importer"
	"github.com/beduldjakurra/stockproduksi/internal/service/session"
	"github.com/beduldjakurra/stockproduksi/internal/service/store"
	"github.com/beduldjakurra/stockproduksi/internal/syncer"
)

// Handler serves the STO API.
type Handler struct {
	sessions  *session.Manager
	store     *store.ProductionStore
	sync      *syncer.Syncer
	exporter  *exporter.Exporter
	importer  *importer.Importer
	downloads *exportDownloadStore
	log       *zap.Logger
}

// NewHandler creates the API handler.
func NewHandler(
	sessions *session.Manager,
	st *store.ProductionStore,
	sync *syncer.Syncer,
	exp *exporter.Exporter,
	imp *importer.Importer,
	log *zap.Logger,
) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		sessions:  sessions,
		store:     st,
		sync:      sync,
		exporter:  exp,
		importer:  imp,
		downloads: newExportDownloadStore(),
		log:       log,
	}
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)

	// Active session and table edits.
	router.GET("/session", h.GetSession)
	router.PATCH("/session/items/:index", h.UpdateItemField)
	router.POST("/session/reset", h.ResetSession)
	router.POST("/session/mode", h.SetMode)

	// Session management.
	router.GET("/sessions", h.ListSessions)
	router.POST("/sessions", h.CreateSession)
	router.POST("/sessions/select", h.SelectSession)
	router.DELETE("/sessions/:id", h.DeleteSession)

	// Sync.
	router.POST("/sync", h.TriggerSync)
	router.GET("/sync/status", h.SyncStatus)
	router.POST("/online", h.SetOnline)

	// Export and import.
	router.POST("/export/excel", h.ExportExcel)
	router.POST("/export/jpg", h.ExportJPG)
	router.GET("/export/download/:token", h.DownloadExport)
	router.POST("/import", h.Import)
}
