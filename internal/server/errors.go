package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitr/splitr/internal/auth"
	"github.com/splitr/splitr/internal/calculator"
	"github.com/splitr/splitr/internal/service"
	"github.com/splitr/splitr/internal/storage"
)

// respondError maps service and domain errors onto HTTP statuses. Unmapped
// errors are logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, calculator.ErrUnknownItem),
		errors.Is(err, calculator.ErrUnknownPerson):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, service.ErrFinalized),
		errors.Is(err, calculator.ErrLastPerson):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrParseUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		slog.Error("Unhandled request error", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
