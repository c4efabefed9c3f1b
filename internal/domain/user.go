package domain

import (
	"context"
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusBanned  Status = "BANNED"
	StatusDeleted Status = "DELETED"
)

// User is the store-level record. PasswordHash is only populated by credential reads.
type User struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is what leaves the service layer.
type PublicUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

func (u *User) IsDeleted() bool { return u.Status == StatusDeleted }

// UserFilter restricts List. Nil Skip/Take mean "no offset" / "no limit".
type UserFilter struct {
	Role          Role
	ExcludeStatus Status
	NameContains  string
	Skip          *int
	Take          *int
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name  *string
	Email *string
}

func (u UserUpdate) Empty() bool { return u.Name == nil && u.Email == nil }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindCredentialsByID(ctx context.Context, id uint) (*User, error)
	FindCredentialsByEmail(ctx context.Context, email string) (*User, error)
	EmailInUse(ctx context.Context, email string, exceptID uint) (bool, error)
	List(ctx context.Context, f UserFilter) ([]User, error)
	// Update, UpdatePassword and UpdateStatus never write a DELETED row; they
	// return NotFound instead.
	Update(ctx context.Context, id uint, in UserUpdate) (*User, error)
	UpdatePassword(ctx context.Context, id uint, hash string) (*User, error)
	UpdateStatus(ctx context.Context, id uint, status Status, email string) (*User, error)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(s)); r {
	case RoleUser, RoleAdmin:
		return r, true
	}
	return "", false
}
