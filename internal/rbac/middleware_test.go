package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"voicecampaign-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

func roleRouter(role string, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), "u", role, auth.DomainAdmin)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}}
	handlers = append(handlers, mw...)
	handlers = append(handlers, func(c *gin.Context) { c.Status(200) })
	r.GET("/x", handlers...)
	return r
}

func get(r *gin.Engine) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequireAnyRole_SuperAdminBypasses(t *testing.T) {
	r := roleRouter(RoleSuperAdmin, RequireAnyRole(RoleAdmin))
	if code := get(r); code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRequireAnyRole_WrongRoleForbidden(t *testing.T) {
	r := roleRouter(RoleClient, RequireAnyRole(RoleAdmin))
	if code := get(r); code != 403 {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireAnyRole_MissingRoleUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireAnyRole(RoleAdmin), func(c *gin.Context) { c.Status(200) })
	if code := get(r); code != 401 {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestRequireSuperAdmin_NoAdminBypass(t *testing.T) {
	r := roleRouter(RoleAdmin, RequireSuperAdmin())
	if code := get(r); code != 403 {
		t.Fatalf("expected 403 for plain admin, got %d", code)
	}

	r = roleRouter(RoleSuperAdmin, RequireSuperAdmin())
	if code := get(r); code != 200 {
		t.Fatalf("expected 200 for super_admin, got %d", code)
	}
}
