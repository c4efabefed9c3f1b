package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"usercenter/internal/service"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context, in *LoginReq) (service.LoginResult, error) {
	return h.svc.Login(c.Request.Context(), in.Email, in.Password)
}
