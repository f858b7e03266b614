package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

type DailySignups struct {
	Date    string `json:"date"`
	Day     string `json:"day"`
	Agents  int64  `json:"agents"`
	Sellers int64  `json:"sellers"`
	Buyers  int64  `json:"buyers"`
	Total   int64  `json:"total"`
}

type Dashboard struct {
	TotalUsers       int64          `json:"total_users"`
	TotalAgents      int64          `json:"total_agents"`
	TotalSellers     int64          `json:"total_sellers"`
	TotalBuyers      int64          `json:"total_buyers"`
	TotalListings    int64          `json:"total_listings"`
	ActiveAgents     int64          `json:"active_agents"`
	ActiveSellers    int64          `json:"active_sellers"`
	ActiveBuyers     int64          `json:"active_buyers"`
	SignupsLast7Days []DailySignups `json:"signups_last_7_days"`
}

// UserSummary is one row of the superadmin user list.
type UserSummary struct {
	ID          uuid.UUID   `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	UserType    models.Role `json:"user_type"`
	IsActive    bool        `json:"is_active"`
	DateJoined  time.Time   `json:"date_joined"`
	LastLoginAt *time.Time  `json:"last_login_at"`
}

func summarize(p models.Principal) UserSummary {
	acc := p.Credentials()
	return UserSummary{
		ID:          acc.ID,
		Username:    acc.Username,
		Email:       acc.Email,
		FirstName:   acc.FirstName,
		LastName:    acc.LastName,
		UserType:    p.Role(),
		IsActive:    acc.IsActive,
		DateJoined:  acc.CreatedAt,
		LastLoginAt: acc.LastLoginAt,
	}
}

type UserQuery struct {
	Role   models.Role
	Search string
	Page   utils.Page
}

type UserPage struct {
	Results    []UserSummary `json:"results"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	TotalPages int           `json:"total_pages"`
}

type AdminUserPatch struct {
	ProfileInput
	IsActive *bool `json:"is_active"`
}

type AdminUserInput struct {
	RegisterInput
	UserType models.Role `json:"user_type" binding:"required"`
}

// AdminService backs the superadmin console.
type AdminService struct {
	store *repositories.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewAdminService(store *repositories.Store, log zerolog.Logger) *AdminService {
	return &AdminService{store: store, log: log, now: time.Now}
}

func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	counts := []struct {
		role   models.Role
		active bool
		dst    *int64
	}{
		{models.RoleAgent, false, &d.TotalAgents},
		{models.RoleSeller, false, &d.TotalSellers},
		{models.RoleBuyer, false, &d.TotalBuyers},
		{models.RoleAgent, true, &d.ActiveAgents},
		{models.RoleSeller, true, &d.ActiveSellers},
		{models.RoleBuyer, true, &d.ActiveBuyers},
	}
	for _, c := range counts {
		n, err := s.store.Accounts.Count(ctx, c.role, c.active)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.role, err)
		}
		*c.dst = n
	}
	d.TotalUsers = d.TotalAgents + d.TotalSellers + d.TotalBuyers

	listings, err := s.store.Listings.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}
	d.TotalListings = listings

	today := utils.Today(s.now())
	for i := 6; i >= 0; i-- {
		from := today.AddDate(0, 0, -i)
		to := from.AddDate(0, 0, 1)
		day := DailySignups{Date: from.Format(utils.DateLayout), Day: from.Format("Mon")}
		for _, role := range models.MemberRoles {
			n, err := s.store.Accounts.CountJoinedBetween(ctx, role, from, to)
			if err != nil {
				return nil, fmt.Errorf("count %s signups: %w", role, err)
			}
			switch role {
			case models.RoleAgent:
				day.Agents = n
			case models.RoleSeller:
				day.Sellers = n
			case models.RoleBuyer:
				day.Buyers = n
			}
			day.Total += n
		}
		d.SignupsLast7Days = append(d.SignupsLast7Days, day)
	}
	return &d, nil
}

// Users lists one role's accounts, or every member role merged newest first.
func (s *AdminService) Users(ctx context.Context, q UserQuery) (*UserPage, error) {
	roles := models.MemberRoles
	if q.Role != "" {
		if !q.Role.IsMember() {
			return nil, invalid("user_type must be agent, seller, or buyer")
		}
		roles = []models.Role{q.Role}
	}

	offset, limit := q.Page.Offset(), q.Page.PerPage
	var (
		rows  []UserSummary
		total int64
	)
	for _, role := range roles {
		f := repositories.AccountFilter{Search: strings.TrimSpace(q.Search), Offset: offset, Limit: limit}
		if len(roles) > 1 {
			f.Offset, f.Limit = 0, offset+limit
		}
		found, n, err := s.store.Accounts.List(ctx, role, f)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", role, err)
		}
		total += n
		for _, p := range found {
			rows = append(rows, summarize(p))
		}
	}
	if len(roles) > 1 {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].DateJoined.After(rows[j].DateJoined) })
		if offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[offset:min(offset+limit, len(rows))]
		}
	}
	if rows == nil {
		rows = []UserSummary{}
	}
	return &UserPage{
		Results:    rows,
		Total:      total,
		Page:       q.Page.Number,
		PerPage:    q.Page.PerPage,
		TotalPages: q.Page.TotalPages(total),
	}, nil
}

func (s *AdminService) User(ctx context.Context, role models.Role, id uuid.UUID) (models.Principal, error) {
	if !role.IsMember() {
		return nil, invalid("Invalid user_type")
	}
	p, err := s.store.Accounts.FindByID(ctx, role, id)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", role, err)
	}
	if p == nil {
		return nil, notFound("User not found")
	}
	return p, nil
}

func (s *AdminService) CreateUser(ctx context.Context, in AdminUserInput) (models.Principal, error) {
	if !in.UserType.IsMember() {
		return nil, invalid("user_type must be agent, seller, or buyer")
	}
	p, err := createAccount(ctx, s.store, in.UserType, in.RegisterInput)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("role", string(in.UserType)).Str("user_id", p.Credentials().ID.String()).Msg("account created by superadmin")
	return p, nil
}

func (s *AdminService) UpdateUser(ctx context.Context, role models.Role, id uuid.UUID, in AdminUserPatch) (models.Principal, error) {
	p, err := s.User(ctx, role, id)
	if err != nil {
		return nil, err
	}
	if err := ensureUnique(ctx, s.store, role, in.ProfileInput, id); err != nil {
		return nil, err
	}
	if err := in.ProfileInput.apply(p); err != nil {
		return nil, err
	}
	setBool(&p.Credentials().IsActive, in.IsActive)
	if err := s.store.Accounts.Save(ctx, p); err != nil {
		return nil, accountWriteError("save", role, err)
	}
	return p, nil
}

// DeleteUser removes the account with its preferences and notifications.
func (s *AdminService) DeleteUser(ctx context.Context, role models.Role, id uuid.UUID) error {
	if _, err := s.User(ctx, role, id); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Preferences.DeleteFor(ctx, role, id); err != nil {
			return fmt.Errorf("delete preferences: %w", err)
		}
		if err := tx.Notifications.DeleteFor(ctx, role, id); err != nil {
			return fmt.Errorf("delete notifications: %w", err)
		}
		ok, err := tx.Accounts.Delete(ctx, role, id)
		if err != nil {
			return fmt.Errorf("delete %s: %w", role, err)
		}
		if !ok {
			return notFound("User not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("role", string(role)).Str("user_id", id.String()).Msg("account deleted by superadmin")
	return nil
}

// CreateSuperadmin inserts a console account. Used by the manage CLI.
func (s *AdminService) CreateSuperadmin(ctx context.Context, username, email, password string) (*models.Superadmin, error) {
	in := RegisterInput{Username: username, Email: email, Password: password, PasswordConfirm: password}
	if len(password) < 8 {
		return nil, invalid("Password must be at least 8 characters")
	}
	p, err := createAccount(ctx, s.store, models.RoleSuperadmin, in)
	if err != nil {
		return nil, err
	}
	return p.(*models.Superadmin), nil
}
