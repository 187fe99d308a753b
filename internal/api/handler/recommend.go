package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rosie/reelworthy/internal/logger"
	"github.com/rosie/reelworthy/internal/service"
)

// RecommendHandler handles similarity search and recommendation endpoints.
type RecommendHandler struct {
	recommendService *service.RecommendService
}

// NewRecommendHandler creates a new recommendation handler.
// Parameters:
//   - recommendService: recommendation service instance.
// Returns:
//   - *RecommendHandler: initialized handler.
func NewRecommendHandler(recommendService *service.RecommendService) *RecommendHandler {
	return &RecommendHandler{
		recommendService: recommendService,
	}
}

// SearchRequest represents the similarity search API request.
type SearchRequest struct {
	Title string `json:"title" binding:"required"`
	TopN  int    `json:"top_n"`
}

// RecommendRequest represents the recommendation API request.
type RecommendRequest struct {
	Title string `json:"title" binding:"required"`
	TopN  int    `json:"top_n"`
}

// Search handles POST /api/v1/search: content-based similarity only, no
// collaborative stage.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RecommendHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	results, err := h.recommendService.FindSimilar(c.Request.Context(), req.Title, req.TopN)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Search failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Title,
		"results": results,
		"total":   len(results),
	})
}

// SearchGet handles GET /api/v1/search for simple title queries.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RecommendHandler) SearchGet(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'title' is required",
		})
		return
	}

	topN, _ := strconv.Atoi(c.DefaultQuery("top_n", "0"))

	results, err := h.recommendService.FindSimilar(c.Request.Context(), title, topN)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Search failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   title,
		"results": results,
		"total":   len(results),
	})
}

// Recommend handles POST /api/v1/recommendations: the full hybrid pipeline.
// The target user is taken from the X-User-ID header; absent or malformed
// means unauthenticated and the collaborative stage is skipped.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	userID := userIDFromHeader(c)
	results, err := h.recommendService.Recommend(c.Request.Context(), req.Title, userID, req.TopN)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Recommendation failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Title,
		"user_id": userID,
		"results": results,
		"total":   len(results),
	})
}

// RecommendGet handles GET /api/v1/recommendations.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RecommendHandler) RecommendGet(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'title' is required",
		})
		return
	}

	topN, _ := strconv.Atoi(c.DefaultQuery("top_n", "0"))

	userID := userIDFromHeader(c)
	results, err := h.recommendService.Recommend(c.Request.Context(), title, userID, topN)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Recommendation failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   title,
		"user_id": userID,
		"results": results,
		"total":   len(results),
	})
}

// GetStats handles GET /api/v1/stats.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RecommendHandler) GetStats(c *gin.Context) {
	stats, err := h.recommendService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get stats: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// userIDFromHeader parses the X-User-ID header. Anything non-numeric falls
// back to 0, the unauthenticated sentinel.
func userIDFromHeader(c *gin.Context) uint {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		logger.CtxDebug(c.Request.Context(), "Ignoring malformed X-User-ID header: value=%q", raw)
		return 0
	}
	return uint(id)
}
