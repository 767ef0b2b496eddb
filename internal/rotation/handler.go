package rotation

import (
	"log/slog"
	"net/http"
	"time"

	httperr "github.com/bazaar-lab/daily-bazaar/internal/core/errors"
	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
	"github.com/bazaar-lab/daily-bazaar/internal/core/storage"
	"github.com/gin-gonic/gin"
)

// API exposes the rotation admin surface: the active rotation, the next
// rotation instant, manual refresh, and schedule changes.
type API struct {
	engine    *Engine
	scheduler *Scheduler
	store     storage.StateStore
	nowFn     func() time.Time
}

func NewAPI(engine *Engine, scheduler *Scheduler, store storage.StateStore) *API {
	return &API{
		engine:    engine,
		scheduler: scheduler,
		store:     store,
		nowFn:     time.Now,
	}
}

// RegisterRoutes registers the rotation routes.
func (a *API) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/rotation", a.GetRotationHandler)
	r.GET("/v1/rotation/next", a.NextRotationHandler)
	r.POST("/v1/rotation/refresh", a.RefreshHandler)
	r.PUT("/v1/schedule", a.UpdateScheduleHandler)
}

type rotationResponse struct {
	SelectionDate shop.Date  `json:"selection_date,omitempty"`
	Items         []slotItem `json:"items"`
}

type slotItem struct {
	Slot int            `json:"slot"`
	Item shop.PoolEntry `json:"item"`
}

// GetRotationHandler handles GET /v1/rotation. Slots are 1-based, matching
// the rest of the user-facing surface.
func (a *API) GetRotationHandler(c *gin.Context) {
	rotation := a.engine.Current()

	resp := rotationResponse{
		SelectionDate: rotation.SelectionDate,
		Items:         make([]slotItem, 0, len(rotation.Items)),
	}
	for i, item := range rotation.Items {
		resp.Items = append(resp.Items, slotItem{Slot: i + 1, Item: item})
	}
	c.JSON(http.StatusOK, resp)
}

// NextRotationHandler handles GET /v1/rotation/next.
func (a *API) NextRotationHandler(c *gin.Context) {
	now := a.nowFn()
	next := a.scheduler.NextRotationAt(now)

	c.JSON(http.StatusOK, gin.H{
		"next_rotation_at":  next,
		"minutes_remaining": int(next.Sub(now).Minutes()),
	})
}

// RefreshHandler handles POST /v1/rotation/refresh: the manual override
// that bypasses the once-per-day guard. It always re-draws, and the new
// selection date keeps the scheduler from re-rotating later the same day.
func (a *API) RefreshHandler(c *gin.Context) {
	rotation, err := a.engine.Rotate(c.Request.Context())
	if err != nil {
		slog.Error("Manual rotation refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to refresh rotation",
			Details:   err.Error(),
		})
		return
	}

	resp := rotationResponse{
		SelectionDate: rotation.SelectionDate,
		Items:         make([]slotItem, 0, len(rotation.Items)),
	}
	for i, item := range rotation.Items {
		resp.Items = append(resp.Items, slotItem{Slot: i + 1, Item: item})
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateScheduleHandler handles PUT /v1/schedule. The new parameters are
// persisted first; only after a durable save does the live ticker restart,
// so a save failure leaves the prior schedule authoritative.
func (a *API) UpdateScheduleHandler(c *gin.Context) {
	var req struct {
		RefreshHour          *int `json:"refresh_hour"`
		CheckIntervalMinutes *int `json:"check_interval_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Invalid schedule body",
			Details:   err.Error(),
		})
		return
	}
	if req.RefreshHour == nil && req.CheckIntervalMinutes == nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Provide refresh_hour and/or check_interval_minutes",
		})
		return
	}

	schedule := a.scheduler.Schedule()
	if req.RefreshHour != nil {
		if *req.RefreshHour < 0 || *req.RefreshHour > 23 {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidRequestError,
				Message:   "refresh_hour must be 0-23",
			})
			return
		}
		schedule.RefreshHour = *req.RefreshHour
	}
	if req.CheckIntervalMinutes != nil {
		if *req.CheckIntervalMinutes < 1 {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidRequestError,
				Message:   "check_interval_minutes must be >= 1",
			})
			return
		}
		schedule.CheckInterval = time.Duration(*req.CheckIntervalMinutes) * time.Minute
	}

	if err := a.store.SaveSchedule(c.Request.Context(), schedule); err != nil {
		slog.Error("Failed to persist schedule", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to persist schedule",
			Details:   err.Error(),
		})
		return
	}

	a.scheduler.Reconfigure(schedule)

	c.JSON(http.StatusOK, gin.H{
		"refresh_hour":           schedule.RefreshHour,
		"check_interval_minutes": int(schedule.CheckInterval.Minutes()),
	})
}
