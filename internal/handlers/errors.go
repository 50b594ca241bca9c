package handlers

import (
	"errors"
	"net/http"

	"github.com/01moynul/med-delivery-golang/internal/apperrors"
	"github.com/01moynul/med-delivery-golang/internal/middleware"
	"github.com/gin-gonic/gin"
)

const internalMessage = "Internal Server Error."

// respondError maps a service error to its status and {"error": ...} body.
// Unclassified errors are logged and reported without detail.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": apperrors.ErrNotFound.Error()})
		return
	case errors.Is(err, apperrors.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
	}

	msg, ok := apperrors.PublicMessage(err)
	if status == http.StatusInternalServerError || !ok {
		h.Log.ErrorContext(c.Request.Context(), "request failed",
			"request_id", middleware.RequestID(c),
			"route", c.FullPath(),
			"error", err,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalMessage})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// badInput reports a payload that failed to bind.
func badInput(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
}
