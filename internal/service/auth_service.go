package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"usercenter/internal/core/auth"
	"usercenter/internal/domain"
)

type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type AuthService struct {
	repo   domain.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	log    *zap.Logger
}

func NewAuthService(repo domain.UserRepository, hasher PasswordHasher, tokens TokenIssuer, l *zap.Logger) *AuthService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, log: l}
}

type LoginResult struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

// Login checks BANNED before the password, so a banned account fails either way.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.repo.FindCredentialsByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			loginAttempts.WithLabelValues("not_found").Inc()
			return LoginResult{}, domain.NotFound("Account not found")
		}
		loginAttempts.WithLabelValues("error").Inc()
		return LoginResult{}, err
	}
	if u.Status == domain.StatusBanned {
		loginAttempts.WithLabelValues("banned").Inc()
		s.log.Info("login refused for banned account", zap.Uint("user_id", u.ID))
		return LoginResult{}, domain.Unauthorized("Account is banned")
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		loginAttempts.WithLabelValues("bad_credentials").Inc()
		return LoginResult{}, domain.Unauthorized("Invalid credentials")
	}

	tok, err := s.tokens.Issue(auth.Identity{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   string(u.Role),
		Status: string(u.Status),
	})
	if err != nil {
		loginAttempts.WithLabelValues("error").Inc()
		return LoginResult{}, domain.Internal("issue token failed", err)
	}
	loginAttempts.WithLabelValues("success").Inc()
	return LoginResult{Token: tok, User: u.Public()}, nil
}
