package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

// TokenBlacklist remembers revoked token ids until they expire.
type TokenBlacklist interface {
	Blacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	// Revoke blacklists jti only if it is not already, reporting whether
	// this call did it. Single-use tokens are redeemed through it.
	Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

type RegisterInput struct {
	Username        string `json:"username" binding:"required,max=150"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
	ProfileInput
}

type LoginInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	User   models.Principal `json:"user"`
	Tokens *utils.TokenPair `json:"tokens"`
}

type AuthService struct {
	store     *repositories.Store
	tokens    *utils.TokenIssuer
	blacklist TokenBlacklist
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(store *repositories.Store, tokens *utils.TokenIssuer, blacklist TokenBlacklist, log zerolog.Logger) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		blacklist: blacklist,
		log:       log,
		now:       time.Now,
	}
}

// RefreshTTL is how long issued refresh tokens stay valid.
func (s *AuthService) RefreshTTL() time.Duration { return s.tokens.RefreshTTL() }

// Register creates a member account and signs the user in.
func (s *AuthService) Register(ctx context.Context, role models.Role, in RegisterInput) (*AuthResult, error) {
	if !role.IsMember() {
		return nil, forbidden("Registration is not available for %s accounts", role)
	}
	p, err := createAccount(ctx, s.store, role, in)
	if err != nil {
		return nil, err
	}
	acc := p.Credentials()
	tokens, err := s.tokens.Issue(acc.ID, string(role))
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	s.log.Info().Str("role", string(role)).Str("user_id", acc.ID.String()).Msg("account registered")
	return &AuthResult{User: p, Tokens: tokens}, nil
}

// createAccount validates in and inserts an active account of the role.
func createAccount(ctx context.Context, store *repositories.Store, role models.Role, in RegisterInput) (models.Principal, error) {
	if in.Password != in.PasswordConfirm {
		return nil, invalid("Passwords do not match")
	}

	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)
	in.ProfileInput.Email, in.ProfileInput.Username = &email, &username
	if err := ensureUnique(ctx, store, role, in.ProfileInput, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := models.NewPrincipal(role)
	if p == nil {
		return nil, invalid("Unknown user type: %s", role)
	}
	acc := p.Credentials()
	acc.PasswordHash = hash
	acc.IsActive = true
	if a, ok := p.(*models.Agent); ok {
		a.Availability = models.AvailabilityFullTime
	}
	if err := in.ProfileInput.apply(p); err != nil {
		return nil, err
	}
	if err := store.Accounts.Create(ctx, p); err != nil {
		return nil, accountWriteError("create", role, err)
	}
	return p, nil
}

// Login checks the password of the account named by email or username.
func (s *AuthService) Login(ctx context.Context, role models.Role, in LoginInput) (*AuthResult, error) {
	var (
		p   models.Principal
		err error
	)
	switch {
	case in.Email != "":
		p, err = s.store.Accounts.FindByEmail(ctx, role, in.Email)
	case in.Username != "":
		p, err = s.store.Accounts.FindByUsername(ctx, role, in.Username)
	default:
		return nil, invalid("Email or username is required")
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", role, err)
	}
	if p == nil {
		return nil, newError(ErrInvalidCredentials, "Invalid credentials")
	}

	acc := p.Credentials()
	if err := utils.CheckPassword(acc.PasswordHash, in.Password); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			return nil, newError(ErrInvalidCredentials, "Invalid credentials")
		}
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !acc.IsActive {
		return nil, newError(ErrInactiveAccount, "This account has been deactivated")
	}

	now := s.now()
	if err := s.store.Accounts.TouchLogin(ctx, role, acc.ID, now); err != nil {
		return nil, fmt.Errorf("touch login: %w", err)
	}
	acc.LastLoginAt = &now

	tokens, err := s.tokens.Issue(acc.ID, string(role))
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &AuthResult{User: p, Tokens: tokens}, nil
}

// Refresh rotates the token pair and revokes the presented refresh token.
func (s *AuthService) Refresh(ctx context.Context, role models.Role, refresh string) (*utils.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refresh)
	if err != nil {
		return nil, newError(ErrInvalidToken, "Invalid or expired refresh token")
	}
	if claims.Role != string(role) {
		return nil, newError(ErrInvalidToken, "Token does not belong to a %s account", role)
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, newError(ErrInvalidToken, "Invalid token subject")
	}
	p, err := s.store.Accounts.FindByID(ctx, role, id)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", role, err)
	}
	if p == nil || !p.Credentials().IsActive {
		return nil, newError(ErrInactiveAccount, "User not found or inactive")
	}

	fresh, err := s.blacklist.Revoke(ctx, claims.ID, claims.TTL(s.now()))
	if err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	if !fresh {
		return nil, newError(ErrInvalidToken, "Token has been revoked")
	}
	return s.tokens.Issue(id, string(role))
}

// Logout revokes the access token in use and, when given, the refresh token.
func (s *AuthService) Logout(ctx context.Context, access *utils.Claims, refresh string) error {
	now := s.now()
	if refresh != "" {
		claims, err := s.tokens.VerifyRefresh(refresh)
		if err != nil {
			return newError(ErrInvalidToken, "Invalid or expired refresh token")
		}
		if err := s.blacklist.Blacklist(ctx, claims.ID, claims.TTL(now)); err != nil {
			return fmt.Errorf("blacklist refresh token: %w", err)
		}
	}
	if access != nil {
		if err := s.blacklist.Blacklist(ctx, access.ID, access.TTL(now)); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}
	return nil
}

// Authenticate validates an access token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*utils.Claims, error) {
	claims, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return nil, newError(ErrInvalidToken, "Invalid or expired token")
	}
	if err := s.ensureNotRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *AuthService) ensureNotRevoked(ctx context.Context, jti string) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		return fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return newError(ErrInvalidToken, "Token has been revoked")
	}
	return nil
}

type ChangePasswordInput struct {
	OldPassword        string `json:"old_password" binding:"required"`
	NewPassword        string `json:"new_password" binding:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" binding:"required"`
}

func (s *AuthService) ChangePassword(ctx context.Context, role models.Role, id uuid.UUID, in ChangePasswordInput) error {
	if in.NewPassword != in.NewPasswordConfirm {
		return invalid("New passwords do not match")
	}
	p, err := s.store.Accounts.FindByID(ctx, role, id)
	if err != nil {
		return fmt.Errorf("find %s: %w", role, err)
	}
	if p == nil {
		return notFound("User not found")
	}
	if err := utils.CheckPassword(p.Credentials().PasswordHash, in.OldPassword); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			return invalid("Old password is incorrect")
		}
		return fmt.Errorf("check password: %w", err)
	}
	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.Accounts.UpdatePassword(ctx, role, id, hash)
}
