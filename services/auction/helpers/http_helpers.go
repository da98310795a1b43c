package helpers

import (
	"fmt"
	"net/http"

	"auction-rooms/internal/auctionerrors"
	"auction-rooms/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapCodeToHTTP maps an engine rejection code to an HTTP status
func MapCodeToHTTP(code string) int {
	switch code {
	case auctionerrors.CodeAuctionNotFound:
		return http.StatusNotFound
	case auctionerrors.CodeAuctionEnded:
		return http.StatusGone
	case auctionerrors.CodeAuctionNotStarted:
		return http.StatusConflict
	case auctionerrors.CodeBidTooLow:
		return http.StatusConflict
	case auctionerrors.CodeInsufficientFunds:
		return http.StatusPaymentRequired
	case auctionerrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case auctionerrors.CodeUserBanned:
		return http.StatusForbidden
	case auctionerrors.CodeInvalidData:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
