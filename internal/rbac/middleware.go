package rbac

import (
	"net/http"

	"voicecampaign-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

func forbid(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"status": "fail",
		"data":   gin.H{"message": "forbidden"},
	})
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status": "fail",
		"data":   gin.H{"message": msg},
	})
}

// RequireAnyRole allows access if the caller has any of the provided roles.
// super_admin bypasses the check: it is a strict superset of admin.
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			unauthorized(c, "role required")
			return
		}

		if IsSuperAdmin(role) {
			c.Next()
			return
		}

		if _, ok := allowedSet[role]; !ok {
			forbid(c)
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin gates the admin-only sections (system settings, security,
// database, user management). Unlike RequireAnyRole there is no bypass:
// a plain admin token is rejected.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			unauthorized(c, "role required")
			return
		}
		if !IsSuperAdmin(role) {
			forbid(c)
			return
		}
		c.Next()
	}
}
