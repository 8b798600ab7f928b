package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"voicecampaign-platform/internal/accounts"
	"voicecampaign-platform/internal/agents"
	"voicecampaign-platform/internal/audit"
	"voicecampaign-platform/internal/auth"
	"voicecampaign-platform/internal/campaigns"
	"voicecampaign-platform/internal/clients"
	"voicecampaign-platform/internal/contacts"
	"voicecampaign-platform/internal/credits"
	"voicecampaign-platform/internal/dialer"
	"voicecampaign-platform/internal/numbers"
	"voicecampaign-platform/internal/provider"
	"voicecampaign-platform/internal/rbac"
	"voicecampaign-platform/internal/reporting"
	"voicecampaign-platform/pkg/logger"
)

// creditService is the slice of credits.Service the handlers need; tests
// substitute a fake since the real one is DB-bound.
type creditService interface {
	GetBalance(ctx context.Context, clientID string) (credits.Balance, error)
	AdminAdjust(ctx context.Context, clientID, adminUserID, adminRole string, req credits.AdminAdjustRequest) (credits.AdminAction, credits.Balance, error)
	ListLedger(ctx context.Context, clientID string, limit int) ([]credits.LedgerEntry, error)
}

// Server wires domain services to routes.
type Server struct {
	log *slog.Logger

	adminTokens  *auth.Manager
	clientTokens *auth.Manager

	accounts  *accounts.Service
	clients   *clients.Service
	agents    *agents.Service
	numbers   *numbers.Service
	campaigns *campaigns.Service
	contacts  *contacts.Service
	credits   creditService
	dialer    *dialer.Service
	reporting *reporting.Service
	audit     *audit.Service
	webhooks  *provider.WebhookProcessor

	healthCheck func(ctx context.Context) error
}

type Deps struct {
	Log *slog.Logger

	AdminTokens  *auth.Manager
	ClientTokens *auth.Manager

	Accounts  *accounts.Service
	Clients   *clients.Service
	Agents    *agents.Service
	Numbers   *numbers.Service
	Campaigns *campaigns.Service
	Contacts  *contacts.Service
	Credits   creditService
	Dialer    *dialer.Service
	Reporting *reporting.Service
	Audit     *audit.Service
	Webhooks  *provider.WebhookProcessor

	// HealthCheck probes downstream dependencies for /health. Optional.
	HealthCheck func(ctx context.Context) error
}

func NewServer(d Deps) *Server {
	return &Server{
		log:          d.Log,
		adminTokens:  d.AdminTokens,
		clientTokens: d.ClientTokens,
		accounts:     d.Accounts,
		clients:      d.Clients,
		agents:       d.Agents,
		numbers:      d.Numbers,
		campaigns:    d.Campaigns,
		contacts:     d.Contacts,
		credits:      d.Credits,
		dialer:       d.Dialer,
		reporting:    d.Reporting,
		audit:        d.Audit,
		webhooks:     d.Webhooks,
		healthCheck:  d.HealthCheck,
	}
}

// Router builds the full route tree under /api/v1.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(s.log))
	r.Use(s.auditRejections())

	v1 := r.Group("/api/v1")

	v1.GET("/health", s.handleHealth)
	v1.POST("/webhooks/provider/call-status", s.handleProviderWebhook)

	v1.POST("/auth/register", s.handleRegister)
	v1.POST("/auth/login", s.handleClientLogin)
	v1.POST("/admin/auth/login", s.handleAdminLogin)

	// Client dashboard surface: client-domain tokens, tenant-scoped.
	client := v1.Group("/client", auth.RequireToken(s.clientTokens), rbac.RequireAnyRole(rbac.RoleClient))
	{
		client.POST("/auth/change-password", s.handleChangePassword)

		client.GET("/agents", s.handleListAgentsForClient)
		client.GET("/phone-numbers", s.handleListNumbersForClient)

		client.GET("/campaigns", s.handleListCampaigns)
		client.POST("/campaigns", s.handleCreateCampaign)
		client.GET("/campaigns/:id", s.handleGetCampaign)
		client.PUT("/campaigns/:id", s.handleUpdateCampaign)
		client.DELETE("/campaigns/:id", s.handleDeleteCampaign)
		client.POST("/campaigns/:id/publish", s.handlePublishCampaign)

		client.POST("/campaigns/:id/batch-calls/start", s.handleStartBatch)
		client.POST("/campaigns/:id/batch-calls/stop", s.handleStopBatch)
		client.GET("/campaigns/:id/batch-calls/status", s.handleBatchStatus)

		client.GET("/campaigns/:id/summary", s.handleCampaignSummary)
		client.GET("/campaigns/:id/calls", s.handleCampaignCalls)

		// Contacts hang off their campaign; :id is the campaign id.
		client.GET("/campaign-contacts/template", s.handleContactTemplate)
		client.GET("/campaign-contacts/:id", s.handleListContacts)
		client.POST("/campaign-contacts/:id", s.handleCreateContact)
		client.POST("/campaign-contacts/:id/import", s.handleImportContacts)
		client.GET("/campaign-contacts/:id/:contactID", s.handleGetContact)
		client.PUT("/campaign-contacts/:id/:contactID", s.handleUpdateContact)
		client.DELETE("/campaign-contacts/:id/:contactID", s.handleDeleteContact)

		client.GET("/credits/balance", s.handleClientBalance)
		client.GET("/credits/ledger", s.handleClientLedger)
	}

	// Admin console surface: admin-domain tokens.
	admin := v1.Group("/admin", auth.RequireToken(s.adminTokens), rbac.RequireAnyRole(rbac.RoleAdmin))
	{
		admin.POST("/auth/change-password", s.handleChangePassword)

		admin.GET("/clients", s.handleListClients)
		admin.POST("/clients", s.handleCreateClient)
		admin.GET("/clients/:id", s.handleGetClient)
		admin.PUT("/clients/:id", s.handleUpdateClient)
		admin.DELETE("/clients/:id", s.handleDeleteClient)

		admin.GET("/agents", s.handleListAgents)
		admin.POST("/agents", s.handleCreateAgent)
		admin.GET("/agents/:id", s.handleGetAgent)
		admin.PUT("/agents/:id", s.handleUpdateAgent)
		admin.DELETE("/agents/:id", s.handleDeleteAgent)
		admin.POST("/agents/:id/assign", s.handleAssignAgent)

		admin.GET("/phone-numbers", s.handleListNumbers)
		admin.POST("/phone-numbers", s.handleCreateNumber)
		admin.GET("/phone-numbers/:id", s.handleGetNumber)
		admin.DELETE("/phone-numbers/:id", s.handleDeleteNumber)
		admin.POST("/phone-numbers/:id/assign", s.handleAssignNumber)
		admin.POST("/phone-numbers/:id/active", s.handleSetNumberActive)

		admin.GET("/clients/:id/credits", s.handleClientCredits)
		admin.POST("/clients/:id/credits/adjust", s.handleAdjustCredits)

		// Super-admin only: user management and the audit surface. A plain
		// admin token is rejected here.
		super := admin.Group("", rbac.RequireSuperAdmin())
		{
			super.GET("/users", s.handleListUsers)
			super.POST("/users", s.handleCreateUser)
			super.GET("/users/:id", s.handleGetUser)
			super.POST("/users/:id/active", s.handleSetUserActive)

			super.GET("/audit-logs/security-events", s.handleSecurityEvents)
			super.GET("/audit-logs/activity-summary", s.handleActivitySummary)
		}
	}

	return r
}

// auditRejections records token and role rejections from the auth middleware
// chain, so repeated probing of protected routes shows up in the security
// feed. Handler-level 401s (e.g. bad login credentials) audit themselves.
func (s *Server) auditRejections() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if !c.IsAborted() {
			return
		}
		var status audit.Status
		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			status = audit.StatusUnauthorized
		case http.StatusForbidden:
			status = audit.StatusForbidden
		default:
			return
		}

		actor := c.GetString("user_id")
		if actor == "" {
			actor = "anonymous"
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		s.audit.Log(c.Request.Context(), audit.Entry{
			ActorID:  actor,
			Action:   "access_denied",
			Resource: path,
			Status:   status,
			Severity: audit.SeverityWarning,
			Category: audit.CategorySecurity,
			Details:  map[string]any{"method": c.Request.Method},
		})
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.healthCheck != nil {
		if err := s.healthCheck(c.Request.Context()); err != nil {
			respondError(c, http.StatusServiceUnavailable, "dependency check failed")
			return
		}
	}
	respondSuccess(c, http.StatusOK, gin.H{"healthy": true})
}
