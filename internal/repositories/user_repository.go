package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

var ErrUnknownRole = errors.New("unknown role")

// AccountRepository reads and writes the per-role account tables.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) model(role models.Role) (models.Principal, error) {
	p := models.NewPrincipal(role)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return p, nil
}

func (r *AccountRepository) Create(ctx context.Context, p models.Principal) error {
	p.Credentials().Prepare()
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *AccountRepository) Save(ctx context.Context, p models.Principal) error {
	p.Credentials().Prepare()
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *AccountRepository) findBy(ctx context.Context, role models.Role, column string, value any) (models.Principal, error) {
	p, err := r.model(role)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where(column+" = ?", value).First(p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, role models.Role, id uuid.UUID) (models.Principal, error) {
	return r.findBy(ctx, role, "id", id)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, role models.Role, email string) (models.Principal, error) {
	return r.findBy(ctx, role, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (r *AccountRepository) FindByUsername(ctx context.Context, role models.Role, username string) (models.Principal, error) {
	return r.findBy(ctx, role, "username", strings.TrimSpace(username))
}

// Taken reports whether column already holds value for an account other than exclude.
func (r *AccountRepository) Taken(ctx context.Context, role models.Role, column, value string, exclude uuid.UUID) (bool, error) {
	p, err := r.model(role)
	if err != nil {
		return false, err
	}
	var count int64
	q := r.db.WithContext(ctx).Model(p).Where(column+" = ?", value)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, role models.Role, id uuid.UUID, hash string) error {
	p, err := r.model(role)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(p).Where("id = ?", id).Update("password_hash", hash).Error
}

func (r *AccountRepository) TouchLogin(ctx context.Context, role models.Role, id uuid.UUID, at time.Time) error {
	p, err := r.model(role)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(p).Where("id = ?", id).Update("last_login_at", at).Error
}

func (r *AccountRepository) Delete(ctx context.Context, role models.Role, id uuid.UUID) (bool, error) {
	p, err := r.model(role)
	if err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(p)
	return res.RowsAffected > 0, res.Error
}

type AccountFilter struct {
	Search     string
	ActiveOnly bool
	Offset     int
	Limit      int
}

func (f AccountFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Search != "" {
		like := containsPattern(strings.ToLower(f.Search))
		db = db.Where(
			"("+likeClause("LOWER(username)")+" OR "+likeClause("LOWER(email)")+
				" OR "+likeClause("LOWER(first_name)")+" OR "+likeClause("LOWER(last_name)")+")",
			like, like, like, like,
		)
	}
	if f.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	return db
}

// List returns one page of a role's accounts, newest first, and the total match count.
func (r *AccountRepository) List(ctx context.Context, role models.Role, f AccountFilter) ([]models.Principal, int64, error) {
	p, err := r.model(role)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(p).Scopes(f.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).Scopes(f.scope, paginate(f.Offset, f.Limit)).Order("created_at DESC")
	var out []models.Principal
	switch role {
	case models.RoleAgent:
		var rows []models.Agent
		err = q.Find(&rows).Error
		for i := range rows {
			out = append(out, &rows[i])
		}
	case models.RoleSeller:
		var rows []models.Seller
		err = q.Find(&rows).Error
		for i := range rows {
			out = append(out, &rows[i])
		}
	case models.RoleBuyer:
		var rows []models.Buyer
		err = q.Find(&rows).Error
		for i := range rows {
			out = append(out, &rows[i])
		}
	case models.RoleSuperadmin:
		var rows []models.Superadmin
		err = q.Find(&rows).Error
		for i := range rows {
			out = append(out, &rows[i])
		}
	}
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListActiveAgents is the agent picker sellers see.
func (r *AccountRepository) ListActiveAgents(ctx context.Context) ([]models.Agent, error) {
	var agents []models.Agent
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("username ASC").
		Find(&agents).Error
	return agents, err
}

func (r *AccountRepository) Count(ctx context.Context, role models.Role, activeOnly bool) (int64, error) {
	p, err := r.model(role)
	if err != nil {
		return 0, err
	}
	var count int64
	q := r.db.WithContext(ctx).Model(p)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountJoinedBetween counts accounts created in [from, to).
func (r *AccountRepository) CountJoinedBetween(ctx context.Context, role models.Role, from, to time.Time) (int64, error) {
	p, err := r.model(role)
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(p).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}
