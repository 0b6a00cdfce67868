package handler

import (
	"errors"
	"net/http"

	"caredesk/backend/internal/faults"

	"github.com/gin-gonic/gin"
)

// message builds the bilingual message pair the original clients expect.
func (h *Handler) message(key string) gin.H {
	return gin.H{
		"message":    h.Localizer.GetString("en", key),
		"message_ar": h.Localizer.GetString("ar", key),
	}
}

// writeError maps a service error onto an HTTP status and a bilingual body.
func (h *Handler) writeError(c *gin.Context, err error) {
	var fe *faults.ForbiddenError
	switch {
	case errors.Is(err, faults.ErrNotFound):
		body := h.message("complaint.not_found")
		body["error"] = err.Error()
		c.JSON(http.StatusNotFound, body)
	case errors.Is(err, faults.ErrInvalidTransition):
		body := h.message("error.invalid_transition")
		body["error"] = err.Error()
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, faults.ErrCrossDepartment):
		body := h.message("error.cross_department")
		body["error"] = err.Error()
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, faults.ErrDirectoryUnavailable):
		body := h.message("error.directory")
		body["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, body)
	case errors.Is(err, faults.ErrConflict):
		body := gin.H{"error": err.Error()}
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &fe):
		body := h.message("error.forbidden")
		body["error"] = err.Error()
		body["reason"] = fe.Reason
		c.JSON(http.StatusForbidden, body)
	default:
		h.Log.WithError(err).Error("request failed")
		body := h.message("error.internal")
		c.JSON(http.StatusInternalServerError, body)
	}
}
