package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"usercenter/internal/domain"
)

type SeedUser struct {
	Name     string      `mapstructure:"name"`
	Email    string      `mapstructure:"email"`
	Password string      `mapstructure:"password"`
	Role     domain.Role `mapstructure:"role"`
}

// DefaultSeedUsers bootstraps an admin so the admin-only routes are reachable.
var DefaultSeedUsers = []SeedUser{
	{Name: "Admin User", Email: "admin@example.com", Password: "Admin123!", Role: domain.RoleAdmin},
	{Name: "Regular User", Email: "user@example.com", Password: "User123!", Role: domain.RoleUser},
}

// Seed creates every user whose email is not already taken and returns how many it created.
func (s *UserService) Seed(ctx context.Context, users []SeedUser) (int, error) {
	created := 0
	for _, su := range users {
		_, err := s.Create(ctx, CreateUserInput{Name: su.Name, Email: su.Email, Password: su.Password, Role: su.Role})
		switch {
		case err == nil:
			created++
			s.log.Info("user seeded", zap.String("email", su.Email))
		case errors.Is(err, domain.ErrDuplicate):
			s.log.Info("seed user exists, skipped", zap.String("email", su.Email))
		default:
			return created, err
		}
	}
	return created, nil
}
