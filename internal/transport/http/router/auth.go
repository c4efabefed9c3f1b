package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usercenter/internal/service"
	"usercenter/internal/transport/http/ez"
	"usercenter/internal/transport/http/handler"
)

// /api/auth/login（公共，无需登录）
func mountAuthActions(api *gin.RouterGroup, l *zap.Logger, h *handler.AuthHandler) {
	e := ez.New(api, l)

	ez.RegisterAction(e, ez.Action[handler.LoginReq, service.LoginResult]{
		Method:  http.MethodPost,
		Path:    "/auth/login",
		Binder:  ez.BindJSON,
		Message: "Login successful",
		Handler: h.Login,
	})
}
