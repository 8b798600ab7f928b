package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicecampaign-platform/internal/accounts"
	"voicecampaign-platform/internal/audit"
)

func (s *Server) handleListUsers(c *gin.Context) {
	list, err := s.accounts.List(c.Request.Context(), c.Query("role"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"users": list})
}

// handleCreateUser lets a super admin provision accounts of any role,
// including other admins.
func (s *Server) handleCreateUser(c *gin.Context) {
	var req accounts.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	ctx := c.Request.Context()

	u, err := s.accounts.Register(ctx, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	s.audit.Log(ctx, audit.Entry{
		ActorID: c.GetString("user_id"), ActorType: "admin",
		Action: "create_user", Resource: "user", ResourceID: u.ID,
		Status: audit.StatusSuccess, Category: audit.CategorySecurity,
		Details: map[string]any{"role": u.Role},
	})
	respondSuccess(c, http.StatusCreated, gin.H{"user": u})
}

func (s *Server) handleGetUser(c *gin.Context) {
	u, err := s.accounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": u})
}

func (s *Server) handleSetUserActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	if err := s.accounts.SetActive(ctx, id, req.Active); err != nil {
		writeServiceError(c, err)
		return
	}

	severity := audit.SeverityInfo
	if !req.Active {
		severity = audit.SeverityWarning
	}
	s.audit.Log(ctx, audit.Entry{
		ActorID: c.GetString("user_id"), ActorType: "admin",
		Action: "set_user_active", Resource: "user", ResourceID: id,
		Status: audit.StatusSuccess, Severity: severity,
		Category: audit.CategorySecurity,
		Details:  map[string]any{"active": req.Active},
	})
	respondSuccess(c, http.StatusOK, gin.H{"updated": true})
}
