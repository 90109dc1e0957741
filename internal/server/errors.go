package server

import (
	"net/http"

	"github.com/MarcoPoloResearchLab/ecofinds/internal/apperr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorResponse maps a failure to its status code and JSON body.
// Only server-side failures carry a detail field.
func errorResponse(err error) (int, gin.H) {
	appErr, ok := apperr.As(err)
	if !ok {
		return http.StatusInternalServerError, gin.H{"error": "server error", "detail": err.Error()}
	}
	switch appErr.Kind() {
	case apperr.KindAuthentication:
		return http.StatusUnauthorized, gin.H{"error": appErr.Message()}
	case apperr.KindValidation:
		return http.StatusBadRequest, gin.H{"error": appErr.Message()}
	case apperr.KindNotFound:
		return http.StatusNotFound, gin.H{"error": appErr.Message()}
	default:
		return http.StatusInternalServerError, gin.H{"error": appErr.Message(), "detail": appErr.Detail()}
	}
}

func (h *httpHandler) writeError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if apperr.KindOf(err) == apperr.KindStorage {
		h.logger.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, body)
}
