package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voicecampaign-platform/internal/audit"
	"voicecampaign-platform/internal/campaigns"
)

func (s *Server) handleListCampaigns(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	list, err := s.campaigns.List(c.Request.Context(), clientID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"campaigns": list})
}

func (s *Server) handleCreateCampaign(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	var req campaigns.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	ctx := c.Request.Context()

	camp, err := s.campaigns.Create(ctx, clientID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	s.auditData(c, "create", "campaign", camp.ID)
	respondSuccess(c, http.StatusCreated, gin.H{"campaign": camp})
}

func (s *Server) handleGetCampaign(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	camp, err := s.campaigns.Get(c.Request.Context(), clientID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"campaign": camp})
}

func (s *Server) handleUpdateCampaign(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	var req campaigns.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}

	camp, err := s.campaigns.Update(c.Request.Context(), clientID, c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	s.auditData(c, "update", "campaign", camp.ID)
	respondSuccess(c, http.StatusOK, gin.H{"campaign": camp})
}

func (s *Server) handleDeleteCampaign(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := s.campaigns.Delete(c.Request.Context(), clientID, id); err != nil {
		writeServiceError(c, err)
		return
	}

	s.auditData(c, "delete", "campaign", id)
	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) handlePublishCampaign(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	camp, err := s.campaigns.Publish(c.Request.Context(), clientID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	s.auditData(c, "publish", "campaign", camp.ID)
	respondSuccess(c, http.StatusOK, gin.H{"campaign": camp})
}

func (s *Server) handleStartBatch(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	bc, err := s.dialer.Start(c.Request.Context(), clientID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	s.auditData(c, "batch_start", "campaign", id)
	respondSuccess(c, http.StatusAccepted, gin.H{"batch_call": bc})
}

func (s *Server) handleStopBatch(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	bc, err := s.dialer.Stop(c.Request.Context(), clientID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	s.auditData(c, "batch_stop", "campaign", id)
	respondSuccess(c, http.StatusOK, gin.H{"batch_call": bc})
}

func (s *Server) handleBatchStatus(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	bc, err := s.dialer.Status(c.Request.Context(), clientID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"batch_call": bc})
}

func (s *Server) handleCampaignSummary(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	// Ownership check before touching call records.
	if _, err := s.campaigns.Get(ctx, clientID, id); err != nil {
		writeServiceError(c, err)
		return
	}

	since, until, ok := parseWindow(c)
	if !ok {
		return
	}
	sum, err := s.reporting.CampaignSummary(ctx, id, since, until)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"summary": sum})
}

func (s *Server) handleCampaignCalls(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := s.campaigns.Get(ctx, clientID, id); err != nil {
		writeServiceError(c, err)
		return
	}

	list, err := s.reporting.RecentCalls(ctx, id, intQuery(c, "limit", 100))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"calls": list})
}

// auditData records a successful data-category action by the current user.
func (s *Server) auditData(c *gin.Context, action, resource, resourceID string) {
	userID := c.GetString("user_id")
	s.audit.Log(c.Request.Context(), audit.Entry{
		ActorID: userID, Action: action, Resource: resource, ResourceID: resourceID,
		Status: audit.StatusSuccess, Category: audit.CategoryData,
	})
}

// parseWindow reads optional RFC3339 since/until query params.
func parseWindow(c *gin.Context) (since, until time.Time, ok bool) {
	var err error
	if raw := c.Query("since"); raw != "" {
		since, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			respondFail(c, http.StatusBadRequest, "since must be RFC3339")
			return time.Time{}, time.Time{}, false
		}
	}
	if raw := c.Query("until"); raw != "" {
		until, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			respondFail(c, http.StatusBadRequest, "until must be RFC3339")
			return time.Time{}, time.Time{}, false
		}
	}
	return since, until, true
}
