package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lookbook-service/internal/clients"
	"lookbook-service/internal/models"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: code, Message: message},
	})
}

func respondValidationError(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", message)
}

func respondNotFound(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, "NOT_FOUND", message)
}

// respondRemoteError maps a backend failure onto this service's reply.
// Backend 4xx pass through; everything else is a bad gateway because the
// system of record, not this service, failed.
func respondRemoteError(c *gin.Context, err error) {
	switch status := clients.StatusOf(err); {
	case status == http.StatusNotFound:
		respondNotFound(c, "resource not found")
	case status >= 400 && status < 500:
		respondError(c, status, "BACKEND_REJECTED", err.Error())
	default:
		respondError(c, http.StatusBadGateway, "BACKEND_ERROR", "the lookbook backend is unavailable")
	}
}
