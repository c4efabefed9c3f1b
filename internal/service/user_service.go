package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"usercenter/internal/core/cache"
	"usercenter/internal/domain"
	"usercenter/internal/events"
)

type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(pw, hashed string) bool
}

type UserService struct {
	repo      domain.UserRepository
	hasher    PasswordHasher
	events    domain.EventPublisher
	cache     *cache.Cache
	statusTTL time.Duration
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*UserService)

func WithEvents(p domain.EventPublisher) Option {
	return func(s *UserService) {
		if p != nil {
			s.events = p
		}
	}
}

// WithStatusCache caches CurrentStatus lookups; status changes invalidate the entry.
func WithStatusCache(c *cache.Cache, ttl time.Duration) Option {
	return func(s *UserService) { s.cache, s.statusTTL = c, ttl }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *UserService) {
		if l != nil {
			s.log = l
		}
	}
}

func NewUserService(repo domain.UserRepository, hasher PasswordHasher, opts ...Option) *UserService {
	s := &UserService{
		repo:   repo,
		hasher: hasher,
		events: events.Noop{},
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role // empty means USER
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (domain.PublicUser, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" {
		return domain.PublicUser{}, domain.InvalidInput("Name is required")
	}
	if email == "" {
		return domain.PublicUser{}, domain.InvalidInput("Valid email is required")
	}
	role := domain.RoleUser
	if in.Role != "" {
		r, ok := domain.ParseRole(string(in.Role))
		if !ok {
			return domain.PublicUser{}, domain.InvalidInput("Unknown role " + string(in.Role))
		}
		role = r
	}

	taken, err := s.repo.EmailInUse(ctx, email, 0)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if taken {
		return domain.PublicUser{}, domain.Duplicate("Email already registered")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.PublicUser{}, domain.Internal("hash password failed", err)
	}
	u := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusActive,
	}
	// a concurrent signup can still win the race; the unique index reports it as Duplicate
	if err := s.repo.Create(ctx, u); err != nil {
		return domain.PublicUser{}, err
	}

	s.log.Info("user created", zap.Uint("user_id", u.ID), zap.String("role", string(u.Role)))
	s.publish(ctx, domain.EventUserCreated, u)
	return u.Public(), nil
}

func (s *UserService) Get(ctx context.Context, id uint) (domain.PublicUser, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return u.Public(), nil
}

type ListUsersInput struct {
	Name string
	Skip *int
	Take *int
}

// List returns non-deleted USER accounts in insertion order.
func (s *UserService) List(ctx context.Context, in ListUsersInput) ([]domain.PublicUser, error) {
	if in.Skip != nil && *in.Skip < 0 {
		return nil, domain.InvalidInput("skip must be a non-negative integer")
	}
	if in.Take != nil && *in.Take < 1 {
		return nil, domain.InvalidInput("take must be a positive integer")
	}
	users, err := s.repo.List(ctx, domain.UserFilter{
		Role:          domain.RoleUser,
		ExcludeStatus: domain.StatusDeleted,
		NameContains:  in.Name,
		Skip:          in.Skip,
		Take:          in.Take,
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

func (s *UserService) Update(ctx context.Context, id uint, in domain.UserUpdate) (domain.PublicUser, error) {
	u, err := s.liveUser(ctx, id)
	if err != nil {
		return domain.PublicUser{}, err
	}

	var patch domain.UserUpdate
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.PublicUser{}, domain.InvalidInput("Name must be at least 1 character long")
		}
		patch.Name = &name
	}
	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if email == "" {
			return domain.PublicUser{}, domain.InvalidInput("Valid email is required")
		}
		if email != u.Email {
			taken, err := s.repo.EmailInUse(ctx, email, id)
			if err != nil {
				return domain.PublicUser{}, err
			}
			if taken {
				return domain.PublicUser{}, domain.Duplicate("Email already registered")
			}
		}
		patch.Email = &email
	}
	if patch.Empty() {
		return u.Public(), nil
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return updated.Public(), nil
}

func (s *UserService) ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) (domain.PublicUser, error) {
	u, err := s.repo.FindCredentialsByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.PublicUser{}, domain.NotFound("Account not found")
		}
		return domain.PublicUser{}, err
	}
	if u.IsDeleted() {
		return domain.PublicUser{}, domain.NotFound("Account not found")
	}
	if !s.hasher.Verify(oldPassword, u.PasswordHash) {
		return domain.PublicUser{}, domain.Unauthorized("Incorrect old password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.PublicUser{}, domain.Internal("hash password failed", err)
	}
	updated, err := s.repo.UpdatePassword(ctx, id, hash)
	if err != nil {
		return domain.PublicUser{}, err
	}
	s.log.Info("password changed", zap.Uint("user_id", id))
	return updated.Public(), nil
}

func (s *UserService) Ban(ctx context.Context, id uint) (domain.PublicUser, error) {
	return s.transition(ctx, id, domain.StatusBanned)
}

func (s *UserService) Activate(ctx context.Context, id uint) (domain.PublicUser, error) {
	return s.transition(ctx, id, domain.StatusActive)
}

// Delete marks the user DELETED and frees its email. Deleting twice is a no-op.
func (s *UserService) Delete(ctx context.Context, id uint) (domain.PublicUser, error) {
	return s.transition(ctx, id, domain.StatusDeleted)
}

// ACTIVE <-> BANNED, ACTIVE/BANNED -> DELETED. DELETED is terminal.
func (s *UserService) transition(ctx context.Context, id uint, to domain.Status) (domain.PublicUser, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if u.IsDeleted() {
		return deletedOutcome(u, to)
	}
	if u.Status == to {
		return u.Public(), nil
	}

	var email string
	if to == domain.StatusDeleted {
		email = anonymizedEmail()
	}
	updated, err := s.repo.UpdateStatus(ctx, id, to, email)
	if errors.Is(err, domain.ErrNotFound) {
		// a delete committed between the read and the write
		if cur, e := s.repo.FindByID(ctx, id); e == nil && cur.IsDeleted() {
			return deletedOutcome(cur, to)
		}
	}
	if err != nil {
		return domain.PublicUser{}, err
	}

	statusTransitions.WithLabelValues(string(u.Status), string(to)).Inc()
	s.log.Info("user status changed",
		zap.Uint("user_id", id),
		zap.String("from", string(u.Status)),
		zap.String("to", string(to)),
	)
	s.invalidateStatus(ctx, id)
	s.publish(ctx, eventFor(to), updated)
	return updated.Public(), nil
}

// deletedOutcome answers a transition requested on a DELETED user.
func deletedOutcome(u *domain.User, to domain.Status) (domain.PublicUser, error) {
	if to == domain.StatusDeleted {
		return u.Public(), nil
	}
	return domain.PublicUser{}, domain.InvalidInput("Cannot change the status of a deleted user")
}

// liveUser loads a user that is not DELETED.
func (s *UserService) liveUser(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsDeleted() {
		return nil, domain.NotFound("user not found")
	}
	return u, nil
}

type statusEntry struct {
	Status domain.Status `json:"status"`
}

// CurrentStatus reads the live status, through the cache when one is configured.
// Entries are keyed on a per-user generation that every status change bumps, so
// a load that raced a ban cannot re-publish the old status.
func (s *UserService) CurrentStatus(ctx context.Context, id uint) (domain.Status, error) {
	if s.cache == nil {
		return s.loadStatus(ctx, id)
	}
	gen, err := s.cache.Generation(ctx, statusGenKey(id))
	if err != nil {
		s.log.Warn("status cache unavailable, reading store", zap.Uint("user_id", id), zap.Error(err))
		return s.loadStatus(ctx, id)
	}
	e, err := cache.GetOrLoadJSON(ctx, s.cache, statusKey(id, gen),
		cache.TTLs{Hit: s.statusTTL, Absent: s.statusTTL},
		func(ctx context.Context) (statusEntry, error) {
			st, err := s.loadStatus(ctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				return statusEntry{}, cache.ErrAbsent
			}
			return statusEntry{Status: st}, err
		})
	if errors.Is(err, cache.ErrAbsent) {
		return "", domain.NotFound("user not found")
	}
	if err != nil {
		return "", err
	}
	return e.Status, nil
}

func (s *UserService) loadStatus(ctx context.Context, id uint) (domain.Status, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Status, nil
}

// invalidateStatus runs after the status write has committed.
func (s *UserService) invalidateStatus(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	old, _ := s.cache.Generation(ctx, statusGenKey(id))
	// the tag outlives any entry written under the previous one
	if err := s.cache.Bump(ctx, statusGenKey(id), 2*s.statusTTL); err != nil {
		s.log.Warn("status cache invalidate failed", zap.Uint("user_id", id), zap.Error(err))
		return
	}
	if old != "" {
		_ = s.cache.Invalidate(ctx, statusKey(id, old))
	}
}

func (s *UserService) publish(ctx context.Context, eventType string, u *domain.User) {
	err := s.events.PublishUserEvent(ctx, domain.UserEvent{
		Type:       eventType,
		UserID:     u.ID,
		Status:     u.Status,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		s.log.Warn("publish user event failed", zap.String("event", eventType), zap.Uint("user_id", u.ID), zap.Error(err))
	}
}

func statusKey(id uint, gen string) string { return fmt.Sprintf("usercenter:user:%d:status:%s", id, gen) }

func statusGenKey(id uint) string { return fmt.Sprintf("usercenter:user:%d:statusgen", id) }

func anonymizedEmail() string {
	return "deleted-" + uuid.NewString() + "@forevergone.insight"
}

func eventFor(s domain.Status) string {
	switch s {
	case domain.StatusBanned:
		return domain.EventUserBanned
	case domain.StatusDeleted:
		return domain.EventUserDeleted
	default:
		return domain.EventUserActivated
	}
}
