package server

import (
	"errors"

	"github.com/MarcoPoloResearchLab/ecofinds/internal/apperr"
	"github.com/MarcoPoloResearchLab/ecofinds/internal/auth"
	"github.com/MarcoPoloResearchLab/ecofinds/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const invalidTokenMessage = "invalid token"

// authenticatedHandler receives the local id of the verified caller.
type authenticatedHandler func(c *gin.Context, userID users.UserID)

// requireUser verifies the bearer token, resolves the local user and only then invokes next.
func (h *httpHandler) requireUser(next authenticatedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			h.writeError(c, apperr.Authentication(auth.ErrMissingCredential.Error(), err))
			return
		}

		identity, err := h.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			h.logVerificationFailure(err)
			h.writeError(c, apperr.Authentication(invalidTokenMessage, err))
			return
		}

		userID, err := h.users.Resolve(c.Request.Context(), identity)
		if err != nil {
			h.writeError(c, err)
			return
		}

		next(c, userID)
	}
}

func (h *httpHandler) logVerificationFailure(err error) {
	if errors.Is(err, jwt.ErrTokenExpired) {
		h.logger.Info("token verification failed", zap.Error(err))
		return
	}
	h.logger.Warn("token verification failed", zap.Error(err))
}
