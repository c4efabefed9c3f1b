package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usercenter/internal/core/auth"
	"usercenter/internal/domain"
	resp "usercenter/internal/transport/http/response"
)

// gin context keys set by AuthJWT
const (
	CtxClaims = "claims"
	CtxUserID = "userId"
	CtxRole   = "role"
)

// StatusChecker reports the live status of an account.
type StatusChecker interface {
	CurrentStatus(ctx context.Context, id uint) (domain.Status, error)
}

// AuthJWT requires a valid bearer token. With a non-nil checker the account's
// current status is looked up too, and anything but ACTIVE is rejected.
func AuthJWT(j *auth.JWTer, checker StatusChecker, l *zap.Logger) gin.HandlerFunc {
	if l == nil {
		l = zap.NewNop()
	}
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims, err := j.Parse(strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")))
		if err != nil {
			l.Debug("token rejected", zap.String("rid", c.GetString(resp.RequestIDKey)), zap.Error(err))
			resp.Abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if checker != nil {
			st, err := checker.CurrentStatus(c.Request.Context(), claims.UserID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				resp.Abort(c, http.StatusUnauthorized, "Unauthorized")
				return
			case err != nil:
				resp.Fail(c, l, err)
				return
			case st != domain.StatusActive:
				resp.Abort(c, http.StatusUnauthorized, "Account is not active")
				return
			}
		}

		c.Set(CtxClaims, claims)
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// ClaimsFrom returns the identity AuthJWT attached to the request.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}
