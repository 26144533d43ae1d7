package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/brightdesk/support-service/internal/errs"
)

// respondError translates the domain failure taxonomy into HTTP classes:
// not-found 404, permission 403, validation 400 with field detail,
// credentials 401, anything else a generic 500.
func respondError(c *gin.Context, err error) {
	var vErr *errs.ValidationError
	switch {
	case errors.Is(err, errs.ErrAgentNotFound),
		errors.Is(err, errs.ErrTicketNotFound),
		errors.Is(err, errs.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
	case errors.Is(err, errs.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{vErr.Field: vErr.Reason})
	default:
		log.Printf("handler: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func parsePagination(c *gin.Context) (limit, offset int) {
	limit = intQuery(c, "limit", 0)
	offset = intQuery(c, "offset", 0)
	return limit, offset
}

func intQuery(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
		return parsed
	}
	return def
}

// parseID reads the :id path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
