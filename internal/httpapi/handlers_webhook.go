package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"voicecampaign-platform/internal/provider"
	"voicecampaign-platform/pkg/logger"
)

const maxWebhookBody = 1 << 20 // 1 MiB

// handleProviderWebhook receives call-completed events. Authentication is the
// HMAC signature over the raw body, not a bearer token.
func (s *Server) handleProviderWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "unreadable body")
		return
	}

	sig := c.GetHeader(provider.SignatureHeader)
	err = s.webhooks.Process(c.Request.Context(), body, sig)
	switch {
	case err == nil:
		respondSuccess(c, http.StatusOK, gin.H{"received": true})
	case errors.Is(err, provider.ErrBadSignature):
		respondFail(c, http.StatusUnauthorized, "bad signature")
	case errors.Is(err, provider.ErrBadPayload):
		respondFail(c, http.StatusBadRequest, "bad payload")
	default:
		logger.FromGin(c).Error("webhook processing failed", "error", err)
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}
