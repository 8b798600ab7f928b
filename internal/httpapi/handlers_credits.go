package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicecampaign-platform/internal/audit"
	"voicecampaign-platform/internal/credits"
)

func (s *Server) handleClientBalance(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	b, err := s.credits.GetBalance(c.Request.Context(), clientID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"balance":   b,
		"formatted": credits.FormatMinutes(b.Minutes),
	})
}

func (s *Server) handleClientLedger(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	entries, err := s.credits.ListLedger(c.Request.Context(), clientID, intQuery(c, "limit", 50))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"ledger": entries})
}

// handleClientCredits is the admin view of a tenant's balance and recent
// ledger activity.
func (s *Server) handleClientCredits(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := c.Param("id")

	if _, err := s.clients.Get(ctx, clientID); err != nil {
		writeServiceError(c, err)
		return
	}

	b, err := s.credits.GetBalance(ctx, clientID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	entries, err := s.credits.ListLedger(ctx, clientID, intQuery(c, "limit", 50))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"balance":   b,
		"formatted": credits.FormatMinutes(b.Minutes),
		"ledger":    entries,
	})
}

func (s *Server) handleAdjustCredits(c *gin.Context) {
	var req credits.AdminAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	ctx := c.Request.Context()
	clientID := c.Param("id")
	adminID := c.GetString("user_id")
	adminRole := c.GetString("role")

	action, balance, err := s.credits.AdminAdjust(ctx, clientID, adminID, adminRole, req)
	if err != nil {
		// Failed balance manipulation is a security signal, not bookkeeping.
		s.audit.Log(ctx, audit.Entry{
			ActorID: adminID, ActorType: "admin",
			Action: "credit_adjust", Resource: "client", ResourceID: clientID,
			Status: audit.StatusFailed, Severity: audit.SeverityCritical,
			Category: audit.CategoryBilling,
			Details: map[string]any{"minutes": req.Minutes, "reason": req.Reason},
		})
		writeServiceError(c, err)
		return
	}

	s.audit.Log(ctx, audit.Entry{
		ActorID: adminID, ActorType: "admin",
		Action: "credit_adjust", Resource: "client", ResourceID: clientID,
		Status: audit.StatusSuccess, Category: audit.CategoryBilling,
		Details: map[string]any{"minutes": req.Minutes, "reason": req.Reason},
	})
	respondSuccess(c, http.StatusOK, gin.H{"action": action, "balance": balance})
}
