package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/Accounts/internal/errs"
	"github.com/Gopher0727/Accounts/internal/services"
	logger "github.com/Gopher0727/Accounts/middleware/log"
)

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as 500 without detail.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	if taken, ok := errs.AsAlreadyTaken(err); ok {
		c.JSON(http.StatusConflict, gin.H{"error": taken.Message, "what": taken.What})
		return
	}

	var retry *services.RetryAfterError
	switch {
	case errors.As(err, &retry):
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.RetryAfter.Seconds()))))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests", "retry_after": retry.RetryAfter.Seconds()})
	case errors.Is(err, errs.ErrInvalidUsername),
		errors.Is(err, errs.ErrInvalidName),
		errors.Is(err, errs.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrInvalidPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, services.ErrUserNotMember),
		errors.Is(err, services.ErrCannotRevokeInvite):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, errs.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	case errors.Is(err, errs.ErrInviteUnusable):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		log.ErrorContext(c.Request.Context(), "request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// idParam parses a snowflake path parameter.
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
