package router

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"usercenter/internal/domain"
)

// memRepo is an in-memory domain.UserRepository with the same uniqueness rule as the users table.
type memRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]domain.User
}

func newMemRepo() *memRepo { return &memRepo{rows: map[uint]domain.User{}} }

func (r *memRepo) emailTaken(email string, except uint) bool {
	for id, u := range r.rows {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func public(u domain.User) *domain.User {
	u.PasswordHash = ""
	return &u
}

func (r *memRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(u.Email, 0) {
		return domain.Duplicate("email already registered")
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	r.rows[u.ID] = *u
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, domain.NotFound("user not found")
	}
	return public(u), nil
}

func (r *memRepo) FindCredentialsByID(_ context.Context, id uint) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, domain.NotFound("user not found")
	}
	return &u, nil
}

func (r *memRepo) FindCredentialsByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Email == email && u.Status != domain.StatusDeleted {
			return &u, nil
		}
	}
	return nil, domain.NotFound("user not found")
}

func (r *memRepo) EmailInUse(_ context.Context, email string, exceptID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emailTaken(email, exceptID), nil
}

func (r *memRepo) List(_ context.Context, f domain.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.rows {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.ExcludeStatus != "" && u.Status == f.ExcludeStatus {
			continue
		}
		if f.NameContains != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(f.NameContains)) {
			continue
		}
		out = append(out, *public(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Skip != nil {
		if *f.Skip >= len(out) {
			return []domain.User{}, nil
		}
		out = out[*f.Skip:]
	}
	if f.Take != nil && *f.Take < len(out) {
		out = out[:*f.Take]
	}
	return out, nil
}

func (r *memRepo) Update(_ context.Context, id uint, in domain.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok || u.Status == domain.StatusDeleted {
		return nil, domain.NotFound("user not found")
	}
	if in.Email != nil {
		if r.emailTaken(*in.Email, id) {
			return nil, domain.Duplicate("email already registered")
		}
		u.Email = *in.Email
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	r.rows[id] = u
	return public(u), nil
}

func (r *memRepo) UpdatePassword(_ context.Context, id uint, hash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok || u.Status == domain.StatusDeleted {
		return nil, domain.NotFound("user not found")
	}
	u.PasswordHash = hash
	r.rows[id] = u
	return public(u), nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id uint, status domain.Status, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok || u.Status == domain.StatusDeleted {
		return nil, domain.NotFound("user not found")
	}
	u.Status = status
	if email != "" {
		u.Email = email
	}
	r.rows[id] = u
	return public(u), nil
}
