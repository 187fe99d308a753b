package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rosie/reelworthy/internal/service"
)

// MovieHandler handles catalog endpoints.
type MovieHandler struct {
	recommendService *service.RecommendService
}

// NewMovieHandler creates a new movie handler.
// Parameters:
//   - recommendService: recommendation service instance.
// Returns:
//   - *MovieHandler: initialized handler.
func NewMovieHandler(recommendService *service.RecommendService) *MovieHandler {
	return &MovieHandler{
		recommendService: recommendService,
	}
}

// ListMovies handles GET /api/v1/movies.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MovieHandler) ListMovies(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	movies, err := h.recommendService.ListMovies(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list movies: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"movies": movies,
		"total":  len(movies),
	})
}

// GetMovie handles GET /api/v1/movies/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MovieHandler) GetMovie(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Movie ID must be numeric",
		})
		return
	}

	movie, err := h.recommendService.GetMovieByID(c.Request.Context(), uint(id))
	if err != nil || movie == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Movie not found",
		})
		return
	}

	c.JSON(http.StatusOK, movie)
}
