package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usercenter/internal/domain"
	"usercenter/internal/transport/http/ez"
	"usercenter/internal/transport/http/handler"
)

var adminOnly = []string{string(domain.RoleAdmin)}

// /api/users（已走 AuthJWT）。静态路径先于 /:id 注册
func mountUserActions(users *gin.RouterGroup, l *zap.Logger, h *handler.UserHandler) {
	e := ez.New(users, l)

	// --- 本人 ---
	ez.RegisterAction(e, ez.Action[struct{}, domain.PublicUser]{
		Method:  http.MethodGet,
		Path:    "/profile",
		Binder:  ez.BindNone,
		Handler: h.Profile,
	})
	ez.RegisterAction(e, ez.Action[handler.ChangePasswordReq, domain.PublicUser]{
		Method:  http.MethodPost,
		Path:    "/change-password",
		Binder:  ez.BindJSON,
		Handler: h.ChangePassword,
	})

	// --- 管理端 ---
	ez.RegisterAction(e, ez.Action[handler.IDReq, domain.PublicUser]{
		Method:  http.MethodPost,
		Path:    "/ban/:id",
		Binder:  ez.BindURI,
		Roles:   adminOnly,
		Handler: h.Ban,
	})
	ez.RegisterAction(e, ez.Action[handler.IDReq, domain.PublicUser]{
		Method:  http.MethodPost,
		Path:    "/activate/:id",
		Binder:  ez.BindURI,
		Roles:   adminOnly,
		Handler: h.Activate,
	})
	ez.RegisterAction(e, ez.Action[handler.CreateUserReq, domain.PublicUser]{
		Method:  http.MethodPost,
		Path:    "",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Roles:   adminOnly,
		Handler: h.Create,
	})
	ez.RegisterAction(e, ez.Action[handler.ListUsersReq, []domain.PublicUser]{
		Method:  http.MethodGet,
		Path:    "",
		Binder:  ez.BindQuery,
		Roles:   adminOnly,
		Handler: h.List,
	})
	ez.RegisterAction(e, ez.Action[handler.IDReq, domain.PublicUser]{
		Method:  http.MethodGet,
		Path:    "/:id",
		Binder:  ez.BindURI,
		Roles:   adminOnly,
		Handler: h.Get,
	})
	ez.RegisterAction(e, ez.Action[handler.UpdateUserReq, domain.PublicUser]{
		Method:  http.MethodPut,
		Path:    "/:id",
		Binder:  ez.BindURIJSON,
		Roles:   adminOnly,
		Handler: h.Update,
	})
	ez.RegisterAction(e, ez.Action[handler.IDReq, domain.PublicUser]{
		Method:  http.MethodDelete,
		Path:    "/:id",
		Binder:  ez.BindURI,
		Roles:   adminOnly,
		Handler: h.Delete,
	})
}
