package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "usercenter/internal/transport/http/response"
)

// RequireRoles admits only identities whose role is in roles. A request that
// reached it without an identity is rejected as unauthenticated.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			resp.Abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			resp.Abort(c, http.StatusForbidden, "Forbidden resource")
			return
		}
		c.Next()
	}
}
