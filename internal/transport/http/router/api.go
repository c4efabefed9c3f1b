package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"usercenter/internal/core/auth"
	"usercenter/internal/core/server"
	"usercenter/internal/transport/http/handler"
	mdw "usercenter/internal/transport/http/middleware"
	resp "usercenter/internal/transport/http/response"
)

// Limits are the ambient server guards. Zero values disable a guard.
type Limits struct {
	RPS           float64
	Burst         int
	MaxConcurrent int64
	MaxBodyBytes  int64
}

type Deps struct {
	Log   *zap.Logger
	JWT   *auth.JWTer
	Users handler.UserService
	Auth  handler.AuthService
	// Status enables the per-request account status check when non-nil.
	Status      mdw.StatusChecker
	Health      func(ctx context.Context) error
	CORSOrigins []string
	Limits      Limits
}

func NewAPIEngine(d Deps) *gin.Engine {
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}
	r := server.NewRouter(server.Options{CORSOrigins: d.CORSOrigins})

	// 中间件：日志与指标在 recovery 外层，panic 请求也会被记录
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(l),
		mdw.Metrics(),
		mdw.Recovery(l),
		mdw.RateLimit(rate.Limit(d.Limits.RPS), d.Limits.Burst),
		mdw.ConcurrencyLimit(d.Limits.MaxConcurrent),
		mdw.MaxBodyBytes(d.Limits.MaxBodyBytes),
	)

	r.GET("/health", healthHandler(d.Health))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		resp.Abort(c, http.StatusNotFound, fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.Path))
	})

	api := r.Group("/api")
	mountAuthActions(api, l, handler.NewAuthHandler(d.Auth))

	users := api.Group("/users")
	users.Use(mdw.AuthJWT(d.JWT, d.Status, l))
	mountUserActions(users, l, handler.NewUserHandler(d.Users))

	return r
}

func healthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				resp.Abort(c, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		resp.OK(c, gin.H{"status": "ok"})
	}
}
