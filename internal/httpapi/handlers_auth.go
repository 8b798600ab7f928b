package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voicecampaign-platform/internal/accounts"
	"voicecampaign-platform/internal/audit"
	"voicecampaign-platform/internal/auth"
	"voicecampaign-platform/internal/clients"
	"voicecampaign-platform/internal/rbac"
	"voicecampaign-platform/pkg/logger"
)

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
}

// handleRegister signs up a new client tenant: a client record plus its
// first dashboard account.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	ctx := c.Request.Context()

	companyName := req.CompanyName
	if companyName == "" {
		companyName = req.Name
	}
	tenant, err := s.clients.Create(ctx, clients.CreateRequest{Name: companyName, ContactEmail: req.Email})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	u, err := s.accounts.Register(ctx, accounts.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     rbac.RoleClient,
		ClientID: tenant.ID,
	})
	if err != nil {
		// Don't leave an orphan tenant behind.
		if delErr := s.clients.Delete(ctx, tenant.ID); delErr != nil {
			logger.FromGin(c).Error("orphan tenant cleanup failed", "client_id", tenant.ID, "error", delErr)
		}
		writeServiceError(c, err)
		return
	}

	s.audit.Log(ctx, audit.Entry{
		ActorID: u.ID, Action: "register", Resource: "user", ResourceID: u.ID,
		Status: audit.StatusSuccess, Category: audit.CategorySecurity,
	})
	respondSuccess(c, http.StatusCreated, gin.H{"user": u, "client": tenant})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleClientLogin authenticates dashboard users and issues client-domain
// tokens. Admin accounts cannot log in here.
func (s *Server) handleClientLogin(c *gin.Context) {
	s.login(c, s.clientTokens, func(role string) bool { return role == rbac.RoleClient })
}

// handleAdminLogin issues admin-domain tokens for admin and super_admin
// accounts.
func (s *Server) handleAdminLogin(c *gin.Context) {
	s.login(c, s.adminTokens, rbac.IsAdminRole)
}

func (s *Server) login(c *gin.Context, tokens *auth.Manager, roleOK func(string) bool) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	ctx := c.Request.Context()

	u, err := s.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.audit.Log(ctx, audit.Entry{
			ActorID: req.Email, Action: "login", Resource: "session",
			Status: audit.StatusFailed, Severity: audit.SeverityWarning,
			Category: audit.CategorySecurity,
			Details:  map[string]any{"domain": string(tokens.Domain())},
		})
		writeServiceError(c, err)
		return
	}
	if !roleOK(u.Role) {
		s.audit.Log(ctx, audit.Entry{
			ActorID: u.ID, Action: "login", Resource: "session",
			Status: audit.StatusFailed, Severity: audit.SeverityWarning,
			Category: audit.CategorySecurity,
			Details:  map[string]any{"domain": string(tokens.Domain()), "reason": "wrong surface"},
		})
		respondFail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := tokens.Issue(time.Now(), u.ID, u.Role)
	if err != nil {
		logger.FromGin(c).Error("token issue failed", "user_id", u.ID, "error", err)
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	if err := s.accounts.RecordLogin(ctx, u.ID); err != nil {
		logger.FromGin(c).Warn("record login failed", "user_id", u.ID, "error", err)
	}
	s.audit.Log(ctx, audit.Entry{
		ActorID: u.ID, Action: "login", Resource: "session",
		Status: audit.StatusSuccess, Category: audit.CategorySecurity,
		Details: map[string]any{"domain": string(tokens.Domain())},
	})

	respondSuccess(c, http.StatusOK, gin.H{"token": token, "user": u})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid json body")
		return
	}
	ctx := c.Request.Context()

	userID, err := auth.UserID(ctx)
	if err != nil {
		respondFail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := s.accounts.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		s.audit.Log(ctx, audit.Entry{
			ActorID: userID, Action: "change_password", Resource: "user", ResourceID: userID,
			Status: audit.StatusFailed, Severity: audit.SeverityWarning,
			Category: audit.CategorySecurity,
		})
		writeServiceError(c, err)
		return
	}

	s.audit.Log(ctx, audit.Entry{
		ActorID: userID, Action: "change_password", Resource: "user", ResourceID: userID,
		Status: audit.StatusSuccess, Category: audit.CategorySecurity,
	})
	respondSuccess(c, http.StatusOK, gin.H{"changed": true})
}

// currentClientID resolves the tenant for the authenticated dashboard user.
func (s *Server) currentClientID(c *gin.Context) (string, bool) {
	ctx := c.Request.Context()
	userID, err := auth.UserID(ctx)
	if err != nil {
		respondFail(c, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	u, err := s.accounts.Get(ctx, userID)
	if err != nil {
		writeServiceError(c, err)
		return "", false
	}
	if u.ClientID == nil || *u.ClientID == "" {
		respondFail(c, http.StatusForbidden, "account is not linked to a client")
		return "", false
	}
	return *u.ClientID, true
}
