package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicecampaign-platform/internal/contacts"
)

// ownedCampaign verifies the campaign belongs to the caller's tenant and
// returns its id. Contacts are reachable only through an owned campaign.
func (s *Server) ownedCampaign(c *gin.Context) (string, bool) {
	clientID, ok := s.currentClientID(c)
	if !ok {
		return "", false
	}
	id := c.Param("id")
	if _, err := s.campaigns.Get(c.Request.Context(), clientID, id); err != nil {
		writeServiceError(c, err)
		return "", false
	}
	return id, true
}

func (s *Server) handleListContacts(c *gin.Context) {
	campaignID, ok := s.ownedCampaign(c)
	if !ok {
		return
	}
	status := contacts.CallStatus(c.Query("call_status"))
	list, err := s.contacts.List(c.Request.Context(), campaignID, status)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"contacts": list})
}

func (s *Server) handleCreateContact(c *gin.Context) {
	campaignID, ok := s.ownedCampaign(c)
	if !ok {
		return
	}
	var req contacts.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}

	contact, err := s.contacts.Create(c.Request.Context(), campaignID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	s.auditData(c, "create", "contact", contact.ID)
	respondSuccess(c, http.StatusCreated, gin.H{"contact": contact})
}

func (s *Server) handleGetContact(c *gin.Context) {
	campaignID, ok := s.ownedCampaign(c)
	if !ok {
		return
	}
	contact, err := s.contacts.Get(c.Request.Context(), campaignID, c.Param("contactID"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"contact": contact})
}

func (s *Server) handleUpdateContact(c *gin.Context) {
	campaignID, ok := s.ownedCampaign(c)
	if !ok {
		return
	}
	var req contacts.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}

	contact, err := s.contacts.Update(c.Request.Context(), campaignID, c.Param("contactID"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	s.auditData(c, "update", "contact", contact.ID)
	respondSuccess(c, http.StatusOK, gin.H{"contact": contact})
}

func (s *Server) handleDeleteContact(c *gin.Context) {
	campaignID, ok := s.ownedCampaign(c)
	if !ok {
		return
	}
	contactID := c.Param("contactID")
	if err := s.contacts.Delete(c.Request.Context(), campaignID, contactID); err != nil {
		writeServiceError(c, err)
		return
	}

	s.auditData(c, "delete", "contact", contactID)
	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// handleImportContacts accepts a CSV upload (multipart "file" field or raw
// body) and loads it into the campaign's contact list.
func (s *Server) handleImportContacts(c *gin.Context) {
	campaignID, ok := s.ownedCampaign(c)
	if !ok {
		return
	}

	reader := c.Request.Body
	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		reader = file
	}

	res, err := s.contacts.ImportCSV(c.Request.Context(), campaignID, reader)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	s.auditData(c, "import", "contact", campaignID)
	respondSuccess(c, http.StatusOK, gin.H{"import": res})
}

func (s *Server) handleContactTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="contacts_template.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(contacts.CSVTemplate))
}
