package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"usercenter/internal/domain"
	"usercenter/internal/service"
	mdw "usercenter/internal/transport/http/middleware"
)

type UserService interface {
	Create(ctx context.Context, in service.CreateUserInput) (domain.PublicUser, error)
	Get(ctx context.Context, id uint) (domain.PublicUser, error)
	List(ctx context.Context, in service.ListUsersInput) ([]domain.PublicUser, error)
	Update(ctx context.Context, id uint, in domain.UserUpdate) (domain.PublicUser, error)
	ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) (domain.PublicUser, error)
	Ban(ctx context.Context, id uint) (domain.PublicUser, error)
	Activate(ctx context.Context, id uint) (domain.PublicUser, error)
	Delete(ctx context.Context, id uint) (domain.PublicUser, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler { return &UserHandler{svc: svc} }

// IDReq binds the :id path segment. Non-numeric or zero ids fail binding.
type IDReq struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

type CreateUserReq struct {
	Name     string `json:"name" binding:"required,min=1,max=64"`
	Email    string `json:"email" binding:"required,max=191,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type ListUsersReq struct {
	Name *string `form:"name" binding:"omitempty,min=1"`
	Skip *int    `form:"skip" binding:"omitempty,min=0"`
	Take *int    `form:"take" binding:"omitempty,min=1"`
}

type UpdateUserReq struct {
	ID    uint    `uri:"id" binding:"required,min=1"`
	Name  *string `json:"name" binding:"omitempty,min=1,max=64"`
	Email *string `json:"email" binding:"omitempty,max=191,email"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

func (h *UserHandler) Create(c *gin.Context, in *CreateUserReq) (domain.PublicUser, error) {
	return h.svc.Create(c.Request.Context(), service.CreateUserInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
}

func (h *UserHandler) List(c *gin.Context, in *ListUsersReq) ([]domain.PublicUser, error) {
	q := service.ListUsersInput{Skip: in.Skip, Take: in.Take}
	if in.Name != nil {
		q.Name = *in.Name
	}
	return h.svc.List(c.Request.Context(), q)
}

func (h *UserHandler) Get(c *gin.Context, in *IDReq) (domain.PublicUser, error) {
	return h.svc.Get(c.Request.Context(), in.ID)
}

func (h *UserHandler) Update(c *gin.Context, in *UpdateUserReq) (domain.PublicUser, error) {
	return h.svc.Update(c.Request.Context(), in.ID, domain.UserUpdate{Name: in.Name, Email: in.Email})
}

func (h *UserHandler) Delete(c *gin.Context, in *IDReq) (domain.PublicUser, error) {
	return h.svc.Delete(c.Request.Context(), in.ID)
}

func (h *UserHandler) Ban(c *gin.Context, in *IDReq) (domain.PublicUser, error) {
	return h.svc.Ban(c.Request.Context(), in.ID)
}

func (h *UserHandler) Activate(c *gin.Context, in *IDReq) (domain.PublicUser, error) {
	return h.svc.Activate(c.Request.Context(), in.ID)
}

// Profile returns the caller's own record.
func (h *UserHandler) Profile(c *gin.Context, _ *struct{}) (domain.PublicUser, error) {
	claims, ok := mdw.ClaimsFrom(c)
	if !ok {
		return domain.PublicUser{}, domain.Unauthorized("Unauthorized")
	}
	return h.svc.Get(c.Request.Context(), claims.UserID)
}

func (h *UserHandler) ChangePassword(c *gin.Context, in *ChangePasswordReq) (domain.PublicUser, error) {
	claims, ok := mdw.ClaimsFrom(c)
	if !ok {
		return domain.PublicUser{}, domain.Unauthorized("Unauthorized")
	}
	return h.svc.ChangePassword(c.Request.Context(), claims.UserID, in.OldPassword, in.NewPassword)
}
