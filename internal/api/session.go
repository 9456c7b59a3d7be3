package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/beduldjakurra/stockproduksi/internal/model"
)

const defaultOwner = "local"

func ownerFrom(c *gin.Context) string {
	owner := strings.TrimSpace(c.Query("owner"))
	if owner == "" {
		return defaultOwner
	}
	return owner
}

// SessionResponse is the full session payload: persisted record plus the
// derived columns recomputed server-side.
type SessionResponse struct {
	Session *model.Session   `json:"session"`
	Items   []model.LineItem `json:"items"`
}

// GetSession returns the active session, creating one on first visit.
// GET /api/session
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.sessions.EnsureSession(ownerFrom(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{
		Session: sess,
		Items:   h.store.Items(),
	})
}

// UpdateItemRequest carries one cell edit.
type UpdateItemRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// UpdateItemResponse echoes the sanitized value and the recomputed row.
type UpdateItemResponse struct {
	Value string         `json:"value"`
	Item  model.LineItem `json:"item"`
}

// UpdateItemField applies one cell edit through the sanitizers and
// returns the recomputed row.
// PATCH /api/session/items/:index
func (h *Handler) UpdateItemField(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	field := model.Field(req.Field)
	if !field.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown field: " + req.Field})
		return
	}

	value, err := h.store.SetRawInput(field, index, req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.store.Item(index)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, UpdateItemResponse{Value: value, Item: item})
}

// ResetSession clears every operator input after the client-side
// confirmation step.
// POST /api/session/reset
func (h *Handler) ResetSession(c *gin.Context) {
	if err := h.sessions.Reset(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// Both sync views go back to idle together with the session record.
	h.sync.Reset()
	c.JSON(http.StatusOK, SessionResponse{
		Session: h.sessions.Active(),
		Items:   h.store.Items(),
	})
}

// SetModeRequest toggles the display palette.
type SetModeRequest struct {
	IsNightMode bool `json:"isNightMode"`
}

// SetMode switches between day and night mode.
// POST /api/session/mode
func (h *Handler) SetMode(c *gin.Context) {
	var req SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	h.store.SetMode(req.IsNightMode)
	c.JSON(http.StatusOK, gin.H{"isNightMode": req.IsNightMode})
}

// ListSessions lists saved sessions, newest first.
// GET /api/sessions
func (h *Handler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.sessions.ListSessions()})
}

// CreateSessionRequest names a new session; an empty name gets the
// owner-and-date default.
type CreateSessionRequest struct {
	Name string `json:"name"`
}

// CreateSession starts a fresh session and makes it active.
// POST /api/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	owner := ownerFrom(c)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = model.DefaultSessionName(owner, time.Now())
	}

	sess, err := h.sessions.CreateSession(owner, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: sess, Items: h.store.Items()})
}

// SelectSessionRequest picks a saved session by id.
type SelectSessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// SelectSession switches the active session.
// POST /api/sessions/select
func (h *Handler) SelectSession(c *gin.Context) {
	var req SelectSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	sess, err := h.sessions.SelectSession(req.SessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: sess, Items: h.store.Items()})
}

// DeleteSession removes a saved session.
// DELETE /api/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessions.DeleteSession(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
