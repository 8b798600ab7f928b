package httpapi

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"voicecampaign-platform/internal/accounts"
	"voicecampaign-platform/internal/agents"
	"voicecampaign-platform/internal/audit"
	"voicecampaign-platform/internal/auth"
	"voicecampaign-platform/internal/calls"
	"voicecampaign-platform/internal/campaigns"
	"voicecampaign-platform/internal/clients"
	"voicecampaign-platform/internal/config"
	"voicecampaign-platform/internal/contacts"
	"voicecampaign-platform/internal/credits"
	"voicecampaign-platform/internal/dialer"
	"voicecampaign-platform/internal/numbers"
	"voicecampaign-platform/internal/provider"
	"voicecampaign-platform/internal/rbac"
	"voicecampaign-platform/internal/reporting"
)

const webhookSecret = "test-webhook-secret"

// fakeCredits satisfies both the handler-facing creditService and the
// webhook's debiter.
type fakeCredits struct {
	balances map[string]int64
	debits   []credits.DebitRequest
	adjusts  []credits.AdminAdjustRequest
}

func newFakeCredits() *fakeCredits {
	return &fakeCredits{balances: map[string]int64{}}
}

func (f *fakeCredits) GetBalance(ctx context.Context, clientID string) (credits.Balance, error) {
	return credits.Balance{ClientID: clientID, Minutes: f.balances[clientID]}, nil
}

func (f *fakeCredits) AdminAdjust(ctx context.Context, clientID, adminUserID, adminRole string, req credits.AdminAdjustRequest) (credits.AdminAction, credits.Balance, error) {
	if req.Reason == "" || req.IdempotencyKey == "" || req.Minutes == 0 {
		return credits.AdminAction{}, credits.Balance{}, credits.ErrInvalidArgument
	}
	f.adjusts = append(f.adjusts, req)
	f.balances[clientID] += req.Minutes
	return credits.AdminAction{ClientID: clientID, AdminUserID: adminUserID, AdminRole: adminRole, Minutes: req.Minutes, Reason: req.Reason},
		credits.Balance{ClientID: clientID, Minutes: f.balances[clientID]}, nil
}

func (f *fakeCredits) ListLedger(ctx context.Context, clientID string, limit int) ([]credits.LedgerEntry, error) {
	return []credits.LedgerEntry{}, nil
}

func (f *fakeCredits) DebitUsage(ctx context.Context, clientID string, req credits.DebitRequest) (credits.LedgerEntry, credits.Balance, error) {
	f.debits = append(f.debits, req)
	f.balances[clientID] -= req.Minutes
	return credits.LedgerEntry{}, credits.Balance{ClientID: clientID, Minutes: f.balances[clientID]}, nil
}

type stubAgents struct{ agent agents.Agent }

func (s *stubAgents) Get(ctx context.Context, id string) (agents.Agent, error) {
	if id != s.agent.ID {
		return agents.Agent{}, agents.ErrNotFound
	}
	return s.agent, nil
}

type stubNumbers struct{ nums []numbers.PhoneNumber }

func (s *stubNumbers) List(ctx context.Context, clientID string) ([]numbers.PhoneNumber, error) {
	return s.nums, nil
}

type stubProvider struct {
	batch provider.BatchCall
}

func (s *stubProvider) StartBatchCall(ctx context.Context, req provider.StartBatchRequest) (provider.BatchCall, error) {
	s.batch = provider.BatchCall{ID: "batch-1", CampaignID: req.CampaignID, Status: "dialing", TotalCalls: len(req.Recipients)}
	return s.batch, nil
}

func (s *stubProvider) StopBatchCall(ctx context.Context, batchID string) (provider.BatchCall, error) {
	s.batch.Status = "stopped"
	return s.batch, nil
}

func (s *stubProvider) GetBatchCall(ctx context.Context, batchID string) (provider.BatchCall, error) {
	return s.batch, nil
}

func (s *stubProvider) HealthCheck(ctx context.Context) error { return nil }

type harness struct {
	router   *gin.Engine
	accounts *accounts.Service
	auditLog *audit.Service
	credits  *fakeCredits
	calls    *calls.MemoryRepo

	adminTokens  *auth.Manager
	clientTokens *auth.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	adminTokens, err := auth.NewManager(auth.DomainAdmin, "voicecampaign", config.TokenConfig{Secret: "admin-secret-for-tests", TTL: time.Hour})
	require.NoError(t, err)
	clientTokens, err := auth.NewManager(auth.DomainClient, "voicecampaign", config.TokenConfig{Secret: "client-secret-for-tests", TTL: time.Hour})
	require.NoError(t, err)

	accountSvc := accounts.NewService(accounts.NewMemoryRepo())
	clientSvc := clients.NewService(clients.NewMemoryRepo())
	campaignSvc := campaigns.NewService(campaigns.NewMemoryRepo())
	contactSvc := contacts.NewService(contacts.NewMemoryRepo())
	auditSvc := audit.NewService(audit.NewMemoryRepo(), log)
	callRepo := calls.NewMemoryRepo()
	creditSvc := newFakeCredits()

	dialSvc := dialer.NewService(
		campaignSvc,
		contactSvc,
		&stubAgents{agent: agents.Agent{ID: "agent-1", ProviderAgentID: "prov-1"}},
		&stubNumbers{nums: []numbers.PhoneNumber{{ID: "num-1", Number: "+14155550100", Active: true}}},
		&stubProvider{},
		dialer.NewMemoryBatchCache(),
		dialer.NewMemoryCapLimiter(5),
		log,
	)

	srv := NewServer(Deps{
		Log:          log,
		AdminTokens:  adminTokens,
		ClientTokens: clientTokens,
		Accounts:     accountSvc,
		Clients:      clientSvc,
		Campaigns:    campaignSvc,
		Contacts:     contactSvc,
		Credits:      creditSvc,
		Dialer:       dialSvc,
		Reporting:    reporting.NewService(callRepo),
		Audit:        auditSvc,
		Webhooks:     provider.NewWebhookProcessor(webhookSecret, callRepo, contactSvc, creditSvc, log),
	})

	return &harness{
		router:       srv.Router(),
		accounts:     accountSvc,
		auditLog:     auditSvc,
		credits:      creditSvc,
		calls:        callRepo,
		adminTokens:  adminTokens,
		clientTokens: clientTokens,
	}
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

// registerClient signs up a tenant via the public endpoint and returns a
// bearer token plus the tenant id.
func (h *harness) registerClient(t *testing.T, email string) (token, clientID string) {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Jane", "email": email, "password": "password123", "company_name": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeData(t, w)
	clientID = data["client"].(map[string]any)["id"].(string)

	w = h.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token = decodeData(t, w)["token"].(string)
	return token, clientID
}

func (h *harness) adminToken(t *testing.T, role string) string {
	t.Helper()
	u, err := h.accounts.Register(context.Background(), accounts.RegisterRequest{
		Name: "Ops", Email: role + "@ops.test", Password: "password123", Role: role,
	})
	require.NoError(t, err)
	tok, err := h.adminTokens.Issue(time.Now(), u.ID, u.Role)
	require.NoError(t, err)
	return tok
}

func TestRegisterLoginAndAccessScopes(t *testing.T) {
	h := newHarness(t)
	token, _ := h.registerClient(t, "jane@acme.test")

	// Client token works on the dashboard surface.
	w := h.do(t, http.MethodGet, "/api/v1/client/campaigns", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// But not on the admin surface: different signing domain.
	w = h.do(t, http.MethodGet, "/api/v1/admin/clients", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// No token at all.
	w = h.do(t, http.MethodGet, "/api/v1/client/campaigns", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminCannotUseClientLogin(t *testing.T) {
	h := newHarness(t)
	_, err := h.accounts.Register(context.Background(), accounts.RegisterRequest{
		Name: "Ops", Email: "ops@ops.test", Password: "password123", Role: rbac.RoleAdmin,
	})
	require.NoError(t, err)

	w := h.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ops@ops.test", "password": "password123"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/admin/auth/login", "", gin.H{"email": "ops@ops.test", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCampaignLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	token, _ := h.registerClient(t, "jane@acme.test")

	w := h.do(t, http.MethodPost, "/api/v1/client/campaigns", token, gin.H{"agent_id": "agent-1", "name": "Spring outreach"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	camp := decodeData(t, w)["campaign"].(map[string]any)
	require.Equal(t, "draft", camp["status"])
	campID := camp["id"].(string)

	// First publish.
	w = h.do(t, http.MethodPost, "/api/v1/client/campaigns/"+campID+"/publish", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	camp = decodeData(t, w)["campaign"].(map[string]any)
	require.Equal(t, "published", camp["status"])
	require.EqualValues(t, 1, camp["published_version"])

	// Publishing again keeps the status and bumps the version.
	w = h.do(t, http.MethodPost, "/api/v1/client/campaigns/"+campID+"/publish", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	camp = decodeData(t, w)["campaign"].(map[string]any)
	require.Equal(t, "published", camp["status"])
	require.EqualValues(t, 2, camp["published_version"])
}

func TestTenantIsolation(t *testing.T) {
	h := newHarness(t)
	tokenA, _ := h.registerClient(t, "a@acme.test")
	tokenB, _ := h.registerClient(t, "b@beta.test")

	w := h.do(t, http.MethodPost, "/api/v1/client/campaigns", tokenA, gin.H{"agent_id": "agent-1", "name": "A only"})
	require.Equal(t, http.StatusCreated, w.Code)
	campID := decodeData(t, w)["campaign"].(map[string]any)["id"].(string)

	// Tenant B cannot see or modify tenant A's campaign.
	w = h.do(t, http.MethodGet, "/api/v1/client/campaigns/"+campID, tokenB, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = h.do(t, http.MethodDelete, "/api/v1/client/campaigns/"+campID, tokenB, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactImportOverHTTP(t *testing.T) {
	h := newHarness(t)
	token, _ := h.registerClient(t, "jane@acme.test")

	w := h.do(t, http.MethodPost, "/api/v1/client/campaigns", token, gin.H{"agent_id": "agent-1", "name": "Import"})
	campID := decodeData(t, w)["campaign"].(map[string]any)["id"].(string)

	csv := strings.Join([]string{
		"phone_number,first_name",
		"+14155552671,Jane",
		"+14155552671,Jane",
		"bogus,Bob",
	}, "\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/client/campaign-contacts/"+campID+"/import", strings.NewReader(csv))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeData(t, rec)["import"].(map[string]any)
	require.EqualValues(t, 1, result["accepted"])
	require.EqualValues(t, 1, result["duplicates"])
	require.EqualValues(t, 1, result["invalid"])
}

func TestBatchStartOverHTTP(t *testing.T) {
	h := newHarness(t)
	token, _ := h.registerClient(t, "jane@acme.test")

	w := h.do(t, http.MethodPost, "/api/v1/client/campaigns", token, gin.H{"agent_id": "agent-1", "name": "Dial"})
	campID := decodeData(t, w)["campaign"].(map[string]any)["id"].(string)

	// Not published yet: starting is a validation failure.
	w = h.do(t, http.MethodPost, "/api/v1/client/campaigns/"+campID+"/batch-calls/start", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/client/campaigns/"+campID+"/publish", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Still no contacts.
	w = h.do(t, http.MethodPost, "/api/v1/client/campaigns/"+campID+"/batch-calls/start", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/client/campaign-contacts/"+campID, token, gin.H{"phone_number": "+14155552671"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/client/campaigns/"+campID+"/batch-calls/start", token, nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	bc := decodeData(t, w)["batch_call"].(map[string]any)
	require.EqualValues(t, 1, bc["total_calls"])

	// Second start conflicts with the active batch.
	w = h.do(t, http.MethodPost, "/api/v1/client/campaign-contacts/"+campID, token, gin.H{"phone_number": "+14155552672"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = h.do(t, http.MethodPost, "/api/v1/client/campaigns/"+campID+"/batch-calls/start", token, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	// Stop, then stopping again is a validation failure.
	w = h.do(t, http.MethodPost, "/api/v1/client/campaigns/"+campID+"/batch-calls/stop", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(t, http.MethodPost, "/api/v1/client/campaigns/"+campID+"/batch-calls/stop", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuperAdminGateHasNoBypass(t *testing.T) {
	h := newHarness(t)
	adminTok := h.adminToken(t, rbac.RoleAdmin)
	superTok := h.adminToken(t, rbac.RoleSuperAdmin)

	// Plain admin reaches general admin routes but not the super-admin group.
	w := h.do(t, http.MethodGet, "/api/v1/admin/clients", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(t, http.MethodGet, "/api/v1/admin/users", adminTok, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/admin/users", superTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRejectedRequestsAreAudited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// No token at all: unauthorized, attributed to anonymous.
	w := h.do(t, http.MethodGet, "/api/v1/client/campaigns", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	events, err := h.auditLog.SecurityEvents(ctx, audit.SecurityFilter{Status: audit.StatusUnauthorized})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "anonymous", events[0].ActorID)
	require.Equal(t, "access_denied", events[0].Action)
	require.Equal(t, "/api/v1/client/campaigns", events[0].Resource)

	// Valid token, wrong role: forbidden, attributed to the caller.
	adminTok := h.adminToken(t, rbac.RoleAdmin)
	w = h.do(t, http.MethodGet, "/api/v1/admin/users", adminTok, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	events, err = h.auditLog.SecurityEvents(ctx, audit.SecurityFilter{Status: audit.StatusForbidden})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotEqual(t, "anonymous", events[0].ActorID)
	require.Equal(t, "/api/v1/admin/users", events[0].Resource)
}

func TestSecurityEventsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.registerClient(t, "jane@acme.test")

	// One failed login on top of the successful one from registerClient.
	w := h.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "jane@acme.test", "password": "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	superTok := h.adminToken(t, rbac.RoleSuperAdmin)
	w = h.do(t, http.MethodGet, "/api/v1/admin/audit-logs/security-events?status=failed", superTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	events := decodeData(t, w)["events"].([]any)
	require.Len(t, events, 1)
	ev := events[0].(map[string]any)
	require.Equal(t, "login", ev["action"])
	require.Equal(t, "failed", ev["status"])
}

func TestActivitySummaryEndpoint(t *testing.T) {
	h := newHarness(t)
	token, _ := h.registerClient(t, "jane@acme.test")

	// Look up the user id from the login audit trail.
	w := h.do(t, http.MethodPost, "/api/v1/client/campaigns", token, gin.H{"agent_id": "agent-1", "name": "One"})
	require.Equal(t, http.StatusCreated, w.Code)

	users, err := h.accounts.List(context.Background(), rbac.RoleClient)
	require.NoError(t, err)
	require.Len(t, users, 1)

	superTok := h.adminToken(t, rbac.RoleSuperAdmin)
	w = h.do(t, http.MethodGet, "/api/v1/admin/audit-logs/activity-summary?actor_id="+users[0].ID, superTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	groups := decodeData(t, w)["summary"].([]any)
	require.NotEmpty(t, groups)

	w = h.do(t, http.MethodGet, "/api/v1/admin/audit-logs/activity-summary", superTok, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreditEndpoints(t *testing.T) {
	h := newHarness(t)
	token, clientID := h.registerClient(t, "jane@acme.test")
	adminTok := h.adminToken(t, rbac.RoleAdmin)

	w := h.do(t, http.MethodPost, "/api/v1/admin/clients/"+clientID+"/credits/adjust", adminTok, gin.H{
		"minutes": 600, "reason": "initial top-up", "idempotency_key": "k-1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, http.MethodGet, "/api/v1/client/credits/balance", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	require.Equal(t, "10h 0m", data["formatted"])

	// Missing reason is rejected.
	w = h.do(t, http.MethodPost, "/api/v1/admin/clients/"+clientID+"/credits/adjust", adminTok, gin.H{
		"minutes": 60, "idempotency_key": "k-2",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProviderWebhookOverHTTP(t *testing.T) {
	h := newHarness(t)
	token, clientID := h.registerClient(t, "jane@acme.test")

	w := h.do(t, http.MethodPost, "/api/v1/client/campaigns", token, gin.H{"agent_id": "agent-1", "name": "Dial"})
	campID := decodeData(t, w)["campaign"].(map[string]any)["id"].(string)
	w = h.do(t, http.MethodPost, "/api/v1/client/campaign-contacts/"+campID, token, gin.H{"phone_number": "+14155552671"})
	contactID := decodeData(t, w)["contact"].(map[string]any)["id"].(string)

	body, _ := json.Marshal(gin.H{
		"event": "call.completed", "call_id": "pc-1", "campaign_id": campID,
		"client_id": clientID, "contact_id": contactID, "to": "+14155552671",
		"status": "completed", "duration_seconds": 65,
	})
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/provider/call-status", bytes.NewReader(body))
	req.Header.Set(provider.SignatureHeader, sig)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Call recorded and minutes debited.
	recorded, err := h.calls.List(context.Background(), calls.ListFilter{CampaignID: campID})
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	require.Len(t, h.credits.debits, 1)
	require.EqualValues(t, 2, h.credits.debits[0].Minutes)

	// Tampered signature is rejected.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/provider/call-status", bytes.NewReader(body))
	req.Header.Set(provider.SignatureHeader, "deadbeef")
	rec = httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
