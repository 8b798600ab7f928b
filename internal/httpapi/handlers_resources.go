package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicecampaign-platform/internal/agents"
	"voicecampaign-platform/internal/clients"
	"voicecampaign-platform/internal/numbers"
)

// Client-facing reads: tenants see only what is assigned to them.

func (s *Server) handleListAgentsForClient(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	list, err := s.agents.List(c.Request.Context(), clientID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"agents": list})
}

func (s *Server) handleListNumbersForClient(c *gin.Context) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return
	}
	list, err := s.numbers.List(c.Request.Context(), clientID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"numbers": list})
}

// Admin surface: clients.

func (s *Server) handleListClients(c *gin.Context) {
	list, err := s.clients.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"clients": list})
}

func (s *Server) handleCreateClient(c *gin.Context) {
	var req clients.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	client, err := s.clients.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	s.auditData(c, "create", "client", client.ID)
	respondSuccess(c, http.StatusCreated, gin.H{"client": client})
}

func (s *Server) handleGetClient(c *gin.Context) {
	client, err := s.clients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"client": client})
}

func (s *Server) handleUpdateClient(c *gin.Context) {
	var req clients.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	client, err := s.clients.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	s.auditData(c, "update", "client", client.ID)
	respondSuccess(c, http.StatusOK, gin.H{"client": client})
}

func (s *Server) handleDeleteClient(c *gin.Context) {
	id := c.Param("id")
	if err := s.clients.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	s.auditData(c, "delete", "client", id)
	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// Admin surface: agents.

func (s *Server) handleListAgents(c *gin.Context) {
	list, err := s.agents.List(c.Request.Context(), c.Query("client_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"agents": list})
}

func (s *Server) handleCreateAgent(c *gin.Context) {
	var req agents.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	agent, err := s.agents.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	s.auditData(c, "create", "agent", agent.ID)
	respondSuccess(c, http.StatusCreated, gin.H{"agent": agent})
}

func (s *Server) handleGetAgent(c *gin.Context) {
	agent, err := s.agents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"agent": agent})
}

func (s *Server) handleUpdateAgent(c *gin.Context) {
	var req agents.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	agent, err := s.agents.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	s.auditData(c, "update", "agent", agent.ID)
	respondSuccess(c, http.StatusOK, gin.H{"agent": agent})
}

func (s *Server) handleDeleteAgent(c *gin.Context) {
	id := c.Param("id")
	if err := s.agents.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	s.auditData(c, "delete", "agent", id)
	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

type assignRequest struct {
	ClientID string `json:"client_id"`
}

func (s *Server) handleAssignAgent(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	agent, err := s.agents.AssignClient(c.Request.Context(), c.Param("id"), req.ClientID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	s.auditData(c, "assign", "agent", agent.ID)
	respondSuccess(c, http.StatusOK, gin.H{"agent": agent})
}

// Admin surface: phone numbers.

func (s *Server) handleListNumbers(c *gin.Context) {
	list, err := s.numbers.List(c.Request.Context(), c.Query("client_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"numbers": list})
}

func (s *Server) handleCreateNumber(c *gin.Context) {
	var req numbers.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	n, err := s.numbers.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	s.auditData(c, "create", "phone_number", n.ID)
	respondSuccess(c, http.StatusCreated, gin.H{"number": n})
}

func (s *Server) handleGetNumber(c *gin.Context) {
	n, err := s.numbers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"number": n})
}

func (s *Server) handleDeleteNumber(c *gin.Context) {
	id := c.Param("id")
	if err := s.numbers.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	s.auditData(c, "delete", "phone_number", id)
	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) handleAssignNumber(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	n, err := s.numbers.AssignClient(c.Request.Context(), c.Param("id"), req.ClientID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	s.auditData(c, "assign", "phone_number", n.ID)
	respondSuccess(c, http.StatusOK, gin.H{"number": n})
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (s *Server) handleSetNumberActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	n, err := s.numbers.SetActive(c.Request.Context(), c.Param("id"), req.Active)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	s.auditData(c, "set_active", "phone_number", n.ID)
	respondSuccess(c, http.StatusOK, gin.H{"number": n})
}
