package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"voicecampaign-platform/internal/accounts"
	"voicecampaign-platform/internal/agents"
	"voicecampaign-platform/internal/audit"
	"voicecampaign-platform/internal/calls"
	"voicecampaign-platform/internal/campaigns"
	"voicecampaign-platform/internal/clients"
	"voicecampaign-platform/internal/contacts"
	"voicecampaign-platform/internal/credits"
	"voicecampaign-platform/internal/dialer"
	"voicecampaign-platform/internal/numbers"
	"voicecampaign-platform/internal/provider"
	"voicecampaign-platform/internal/reporting"
	"voicecampaign-platform/pkg/logger"
)

var notFoundErrs = []error{
	accounts.ErrNotFound,
	clients.ErrNotFound,
	agents.ErrNotFound,
	numbers.ErrNotFound,
	campaigns.ErrNotFound,
	contacts.ErrNotFound,
	calls.ErrNotFound,
	credits.ErrNotFound,
	provider.ErrNotFound,
}

var invalidErrs = []error{
	accounts.ErrInvalidArgument,
	clients.ErrInvalidArgument,
	agents.ErrInvalidArgument,
	numbers.ErrInvalidArgument,
	campaigns.ErrInvalidArgument,
	contacts.ErrInvalidArgument,
	calls.ErrInvalidArgument,
	credits.ErrInvalidArgument,
	audit.ErrInvalidArgument,
	reporting.ErrInvalidArgument,
	contacts.ErrMissingPhoneColumn,
	dialer.ErrNotPublished,
	dialer.ErrNoContacts,
	dialer.ErrNoFromNumber,
	dialer.ErrNoActiveBatch,
}

var conflictErrs = []error{
	accounts.ErrEmailTaken,
	agents.ErrSlugTaken,
	numbers.ErrNumberTaken,
	contacts.ErrDuplicatePhone,
	dialer.ErrBatchActive,
	dialer.ErrConcurrencyLimit,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// writeServiceError translates package sentinel errors into the envelope.
// Unknown errors become opaque 500s; details stay in the log.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case isAny(err, invalidErrs):
		respondFail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, accounts.ErrInvalidCredentials):
		respondFail(c, http.StatusUnauthorized, "invalid credentials")
	case isAny(err, notFoundErrs):
		respondFail(c, http.StatusNotFound, err.Error())
	case isAny(err, conflictErrs):
		respondFail(c, http.StatusConflict, err.Error())
	case errors.Is(err, credits.ErrInsufficientCredit):
		respondFail(c, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, provider.ErrUnavailable):
		respondError(c, http.StatusBadGateway, "calling provider unavailable")
	default:
		var upstream *provider.UpstreamError
		if errors.As(err, &upstream) {
			logger.FromGin(c).Warn("provider upstream error",
				"status_code", upstream.StatusCode, "message", upstream.Message)
			respondError(c, http.StatusBadGateway, "calling provider rejected the request")
			return
		}
		logger.FromGin(c).Error("unhandled service error", "error", err)
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}
