package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicecampaign-platform/internal/audit"
)

func (s *Server) handleSecurityEvents(c *gin.Context) {
	since, until, ok := parseWindow(c)
	if !ok {
		return
	}
	f := audit.SecurityFilter{
		ActorID:  c.Query("actor_id"),
		Action:   c.Query("action"),
		Status:   audit.Status(c.Query("status")),
		Severity: audit.Severity(c.Query("severity")),
		Since:    since,
		Until:    until,
		Limit:    intQuery(c, "limit", 100),
	}

	events, err := s.audit.SecurityEvents(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"events": events})
}

func (s *Server) handleActivitySummary(c *gin.Context) {
	actorID := c.Query("actor_id")
	if actorID == "" {
		respondFail(c, http.StatusBadRequest, "actor_id is required")
		return
	}
	since, until, ok := parseWindow(c)
	if !ok {
		return
	}

	groups, err := s.audit.ActivitySummary(c.Request.Context(), actorID, since, until)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"summary": groups})
}
