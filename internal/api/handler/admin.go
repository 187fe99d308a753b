package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosie/reelworthy/internal/logger"
	"github.com/rosie/reelworthy/internal/service"
)

// AdminHandler handles index lifecycle operations. The ETL collaborator calls
// the rebuild endpoint after mutating the catalog so queries stop serving the
// stale vector space.
type AdminHandler struct {
	recommendService *service.RecommendService
	logger           *logger.Logger

	// Rebuild job state
	mu            sync.RWMutex
	isRunning     bool
	lastRunTime   time.Time
	lastRunStatus string
}

// NewAdminHandler creates a new admin handler.
// Parameters:
//   - recommendService: recommendation service owning the index.
//   - log: logger instance.
// Returns:
//   - *AdminHandler: initialized handler.
func NewAdminHandler(recommendService *service.RecommendService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		recommendService: recommendService,
		logger:           log,
	}
}

// RebuildResponse represents the rebuild API response.
type RebuildResponse struct {
	Message string              `json:"message"`
	Index   service.IndexStatus `json:"index"`
}

// RebuildStatusResponse represents the rebuild job status.
type RebuildStatusResponse struct {
	IsRunning     bool   `json:"is_running"`
	LastRunTime   string `json:"last_run_time,omitempty"`
	LastRunStatus string `json:"last_run_status,omitempty"`
}

// RebuildIndex handles POST /api/v1/admin/index/rebuild.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AdminHandler) RebuildIndex(c *gin.Context) {
	ctx := c.Request.Context()

	h.mu.RLock()
	if h.isRunning {
		h.mu.RUnlock()
		logger.CtxWarn(ctx, "Rebuild request rejected: already running, client_ip=%s", c.ClientIP())
		c.JSON(http.StatusConflict, gin.H{"error": "Index rebuild is already running"})
		return
	}
	h.mu.RUnlock()

	h.mu.Lock()
	h.isRunning = true
	h.mu.Unlock()

	logger.CtxInfo(ctx, "Starting index rebuild: client_ip=%s", c.ClientIP())

	start := time.Now()
	err := h.recommendService.BuildIndex(ctx)
	duration := time.Since(start)

	h.mu.Lock()
	h.isRunning = false
	h.lastRunTime = time.Now()
	if err != nil {
		h.lastRunStatus = "failed: " + err.Error()
	} else {
		h.lastRunStatus = "success"
	}
	h.mu.Unlock()

	if err != nil {
		logger.With(logger.Fields{
			logger.FieldDurationMs: duration.Milliseconds(),
		}).Error(ctx, "Index rebuild failed: error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := h.recommendService.IndexStatusNow()
	logger.With(logger.Fields{
		logger.FieldDurationMs: duration.Milliseconds(),
		logger.FieldCount:      status.Corpus,
	}).Info(ctx, "Index rebuild completed: version=%d", status.Version)

	c.JSON(http.StatusOK, RebuildResponse{
		Message: "Index rebuilt successfully",
		Index:   status,
	})
}

// GetRebuildStatus returns the current rebuild job status.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AdminHandler) GetRebuildStatus(c *gin.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	resp := RebuildStatusResponse{
		IsRunning:     h.isRunning,
		LastRunStatus: h.lastRunStatus,
	}
	if !h.lastRunTime.IsZero() {
		resp.LastRunTime = h.lastRunTime.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, resp)
}
