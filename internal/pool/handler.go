package pool

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	httperr "github.com/bazaar-lab/daily-bazaar/internal/core/errors"
	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the pool admin routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/pool", s.ListHandler)
	r.POST("/v1/pool", s.AddHandler)
	r.DELETE("/v1/pool/:index", s.RemoveHandler)
}

type listedEntry struct {
	Index int            `json:"index"` // 1-based, used by DELETE /v1/pool/:index
	Entry shop.PoolEntry `json:"entry"`
}

// ListHandler handles GET /v1/pool.
func (s *Service) ListHandler(c *gin.Context) {
	entries, err := s.List(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list pool", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to list pool",
			Details:   err.Error(),
		})
		return
	}

	listed := make([]listedEntry, 0, len(entries))
	for i, entry := range entries {
		listed = append(listed, listedEntry{Index: i + 1, Entry: entry})
	}
	c.JSON(http.StatusOK, gin.H{"pool": listed})
}

// AddHandler handles POST /v1/pool.
func (s *Service) AddHandler(c *gin.Context) {
	var req struct {
		Material string `json:"material" binding:"required"`
		Name     string `json:"name"`
		Price    string `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Invalid pool entry body",
			Details:   err.Error(),
		})
		return
	}

	entry, err := s.Add(c.Request.Context(), req.Material, req.Name, req.Price)
	if err != nil {
		writePoolError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// RemoveHandler handles DELETE /v1/pool/:index with a 1-based index.
func (s *Service) RemoveHandler(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Pool index must be a number",
			Details:   c.Param("index"),
		})
		return
	}

	removed, err := s.Remove(c.Request.Context(), index)
	if err != nil {
		writePoolError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func writePoolError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shop.ErrInvalidItemKind):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidItemKindError,
			Message:   "Material is not a known kind",
			Details:   err.Error(),
		})
	case errors.Is(err, shop.ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidPriceError,
			Message:   "Price must be a non-negative number",
			Details:   err.Error(),
		})
	case errors.Is(err, shop.ErrIndexOutOfRange):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpIndexOutOfRangeError,
			Message:   "Pool index out of range",
			Details:   err.Error(),
		})
	default:
		slog.Error("Pool operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Pool operation failed",
			Details:   err.Error(),
		})
	}
}
