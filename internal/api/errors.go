package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"finance_tracker/internal/domain" // Domain error taxonomy
	"finance_tracker/internal/ledger" // Cache availability errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// respondError converts a service error into a status code and JSON message
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, domain.ErrAuthFailure):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, ledger.ErrCacheUnavailable):
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString("requestID"),
			"error":      err.Error(),
		}).Error("Cache unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
	default:
		// Unexpected failures are logged with detail but surface as a bare 500
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString("requestID"),
			"path":       c.FullPath(),
			"error":      err.Error(),
		}).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// badRequest answers 400 for bodies that fail to bind
func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}
