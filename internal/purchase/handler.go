package purchase

import (
	"errors"
	"log/slog"
	"net/http"

	httperr "github.com/bazaar-lab/daily-bazaar/internal/core/errors"
	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the purchase routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/purchases", s.PurchaseHandler)
}

// PurchaseHandler handles POST /v1/purchases. Slot in the request body is
// 1-based, matching the rotation listing.
func (s *Service) PurchaseHandler(c *gin.Context) {
	var req struct {
		BuyerID   string `json:"buyer_id" binding:"required"`
		BuyerName string `json:"buyer_name" binding:"required"`
		Slot      int    `json:"slot" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Invalid purchase body",
			Details:   err.Error(),
		})
		return
	}

	event, err := s.Purchase(c.Request.Context(), Request{
		BuyerID:   req.BuyerID,
		BuyerName: req.BuyerName,
		Slot:      req.Slot - 1,
	})
	if err != nil {
		writePurchaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"purchase": event})
}

func writePurchaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shop.ErrUnknownSlot):
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpUnknownSlotError,
			Message:   "No item in that rotation slot",
			Details:   err.Error(),
		})
	case errors.Is(err, shop.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, httperr.ErrorResponse{
			ErrorType: httperr.HttpInsufficientFundsError,
			Message:   "Insufficient funds",
			Details:   err.Error(),
		})
	case errors.Is(err, shop.ErrGatewayUnavailable):
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpGatewayUnavailableError,
			Message:   "Balance gateway unavailable",
			Details:   err.Error(),
		})
	default:
		slog.Error("Purchase failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Purchase failed",
			Details:   err.Error(),
		})
	}
}
