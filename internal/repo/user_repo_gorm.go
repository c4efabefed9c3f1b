package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"usercenter/internal/domain"
	"usercenter/internal/feature/user"
)

type UserRepo struct{ db *gorm.DB }

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	m := user.FromDomain(u)
	if m.Role == "" {
		m.Role = string(domain.RoleUser)
	}
	if m.Status == "" {
		m.Status = string(domain.StatusActive)
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDupKey(err) {
			return domain.Duplicate("email already registered")
		}
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = m.ID
	u.Role = domain.Role(m.Role)
	u.Status = domain.Status(m.Status)
	u.CreatedAt = m.CreatedAt
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.first(r.db.WithContext(ctx).Select(user.PublicColumns), "id = ?", id)
}

func (r *UserRepo) FindCredentialsByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// FindCredentialsByEmail ignores deleted rows.
func (r *UserRepo) FindCredentialsByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(r.db.WithContext(ctx), "email = ? AND status <> ?", email, string(domain.StatusDeleted))
}

func (r *UserRepo) first(q *gorm.DB, cond string, args ...any) (*domain.User, error) {
	var m user.UserModel
	err := q.Where(cond, args...).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *UserRepo) EmailInUse(ctx context.Context, email string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&user.UserModel{}).
		Where("email = ? AND status <> ? AND id <> ?", email, string(domain.StatusDeleted), exceptID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	q := r.db.WithContext(ctx).Model(&user.UserModel{}).Select(user.PublicColumns)
	if f.Role != "" {
		q = q.Where("role = ?", string(f.Role))
	}
	if f.ExcludeStatus != "" {
		q = q.Where("status <> ?", string(f.ExcludeStatus))
	}
	if s := strings.TrimSpace(f.NameContains); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+escapeLike(strings.ToLower(s))+"%")
	}
	if f.Skip != nil {
		q = q.Offset(*f.Skip)
	}
	if f.Take != nil {
		q = q.Limit(*f.Take)
	}

	var ms []user.UserModel
	if err := q.Order("id ASC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.User, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out, nil
}

func (r *UserRepo) Update(ctx context.Context, id uint, in domain.UserUpdate) (*domain.User, error) {
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	return r.updates(ctx, id, fields)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uint, hash string) (*domain.User, error) {
	return r.updates(ctx, id, map[string]any{"password_hash": hash})
}

// UpdateStatus also rewrites the email when one is given (anonymization on delete).
func (r *UserRepo) UpdateStatus(ctx context.Context, id uint, status domain.Status, email string) (*domain.User, error) {
	fields := map[string]any{"status": string(status)}
	if email != "" {
		fields["email"] = email
	}
	return r.updates(ctx, id, fields)
}

// updates is a single conditional write: a row that went DELETED after the
// caller read it is left alone.
func (r *UserRepo) updates(ctx context.Context, id uint, fields map[string]any) (*domain.User, error) {
	var affected int64
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&user.UserModel{}).
			Where("id = ? AND status <> ?", id, string(domain.StatusDeleted)).
			Updates(fields)
		if res.Error != nil {
			if isDupKey(res.Error) {
				return nil, domain.Duplicate("email already registered")
			}
			return nil, fmt.Errorf("update user: %w", res.Error)
		}
		affected = res.RowsAffected
	}
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// mysql reports 0 rows for an unchanged row, so only a DELETED row counts as a miss
	if affected == 0 && u.IsDeleted() {
		return nil, domain.NotFound("user not found")
	}
	return u, nil
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// drivers without TranslateError support
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
