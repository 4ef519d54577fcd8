package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"macrolog/apierr"
	"macrolog/logger"
	"macrolog/middlewares"
)

// respondError writes {"error","code"} for API errors and a generic 500
// for anything else.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	if ae, ok := apierr.As(err); ok && ae.Status != 0 {
		body := gin.H{"error": ae.Error(), "code": ae.Code}
		if ae.Retryable() {
			body["retryable"] = true
		}
		c.JSON(ae.Status, body)
		return
	}
	log.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_input"})
}

func profileID(c *gin.Context) uuid.UUID {
	return c.MustGet(middlewares.ProfileIDKey).(uuid.UUID)
}
