// Package handlers exposes the swap and bridge engines over HTTP.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"zkdex-backend/internal/dto"
	"zkdex-backend/internal/metrics"
	"zkdex-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps an engine error to an HTTP status and the shared
// error envelope. Authorization failures return 403 even though they sit in
// the validation bucket.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	switch services.Classify(err) {
	case services.KindValidation:
		status, code = http.StatusBadRequest, "VALIDATION_ERROR"
		if isAuthorizationError(err) {
			status, code = http.StatusForbidden, "FORBIDDEN"
		}
	case services.KindState:
		status, code = http.StatusConflict, "STATE_CONFLICT"
	case services.KindArithmetic:
		status, code = http.StatusUnprocessableEntity, "ARITHMETIC_ERROR"
	case services.KindResource:
		status, code = http.StatusUnprocessableEntity, "RESOURCE_ERROR"
		if services.IsNotFound(err) {
			status, code = http.StatusNotFound, "NOT_FOUND"
		}
	case services.KindExternal:
		status, code = http.StatusBadGateway, "UPSTREAM_ERROR"
	}

	c.JSON(status, dto.ErrorResponse{
		Success: false,
		Error:   err.Error(),
		Code:    code,
	})
}

func isAuthorizationError(err error) bool {
	return errors.Is(err, services.ErrNotAuthority) ||
		errors.Is(err, services.ErrNotSwapOwner) ||
		errors.Is(err, services.ErrNotSender) ||
		errors.Is(err, services.ErrNotActiveRelayer)
}

// respondBindingError reports a malformed request body or query
func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Success: false,
		Error:   "Invalid request: " + err.Error(),
		Code:    "INVALID_REQUEST",
	})
}

// userAddress returns the wallet address the auth middleware stored
func userAddress(c *gin.Context) string {
	if addr, exists := c.Get("user_address"); exists {
		if s, ok := addr.(string); ok {
			return s
		}
	}
	return ""
}

// observeSwapOp records the outcome counter and duration for a swap
// operation.
func observeSwapOp(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.SwapOperations.WithLabelValues(operation, outcome).Inc()
	metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// observeBridgeOp records the outcome counter and duration for a bridge
// operation.
func observeBridgeOp(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.BridgeOperations.WithLabelValues(operation, outcome).Inc()
	metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
