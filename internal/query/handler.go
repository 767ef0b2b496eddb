package query

import (
	"log/slog"
	"net/http"
	"strconv"

	httperr "github.com/bazaar-lab/daily-bazaar/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the stats query routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/stats/buyers/:buyer_id", s.PersonalHistoryHandler)
	r.GET("/v1/stats/top-spenders", s.TopSpendersHandler)
	r.GET("/v1/stats/top-items", s.TopItemsHandler)
}

// PersonalHistoryHandler handles GET /v1/stats/buyers/:buyer_id.
func (s *Service) PersonalHistoryHandler(c *gin.Context) {
	history, err := s.PersonalHistory(c.Request.Context(), c.Param("buyer_id"))
	if err != nil {
		writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// TopSpendersHandler handles GET /v1/stats/top-spenders?limit=.
func (s *Service) TopSpendersHandler(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	spenders, err := s.TopSpenders(c.Request.Context(), limit)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"top_spenders": spenders})
}

// TopItemsHandler handles GET /v1/stats/top-items?limit=.
func (s *Service) TopItemsHandler(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	items, err := s.TopItems(c.Request.Context(), limit)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"top_items": items})
}

// parseLimit reads the optional limit parameter; zero means "default".
// Writes the 400 itself and returns ok=false on a malformed value.
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "limit must be a positive number",
			Details:   raw,
		})
		return 0, false
	}
	return limit, true
}

func writeQueryError(c *gin.Context, err error) {
	slog.Error("Stats query failed", "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to query stats",
		Details:   err.Error(),
	})
}
