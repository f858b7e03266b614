package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nahid2887/padzzey-sub000/internal/mailer"
	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

const otpDigits = 6

type ForgotPasswordInput struct {
	Email    string `json:"email" binding:"required,email"`
	UserType string `json:"user_type" binding:"required"`
}

type VerifyOTPInput struct {
	Email    string `json:"email" binding:"required,email"`
	OTP      string `json:"otp" binding:"required,len=6,numeric"`
	UserType string `json:"user_type" binding:"required"`
}

type ResetPasswordInput struct {
	VerifyOTPInput
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// PasswordResetService issues and redeems emailed one-time codes.
type PasswordResetService struct {
	store  *repositories.Store
	mail   mailer.Mailer
	expiry time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

func NewPasswordResetService(store *repositories.Store, mail mailer.Mailer, expiry time.Duration, log zerolog.Logger) *PasswordResetService {
	return &PasswordResetService{store: store, mail: mail, expiry: expiry, log: log, now: time.Now}
}

func memberRole(userType string) (models.Role, error) {
	role, ok := models.ParseRole(userType)
	if !ok || !role.IsMember() {
		return "", invalid("User type must be agent, seller or buyer")
	}
	return role, nil
}

// Forgot mails a fresh code and burns any older unused ones.
func (s *PasswordResetService) Forgot(ctx context.Context, in ForgotPasswordInput) error {
	role, err := memberRole(in.UserType)
	if err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	p, err := s.store.Accounts.FindByEmail(ctx, role, email)
	if err != nil {
		return fmt.Errorf("find %s: %w", role, err)
	}
	if p == nil || !p.Credentials().IsActive {
		return invalid("No account found with this email address.")
	}

	otp, err := utils.GenerateOTP(otpDigits)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	token := &models.PasswordResetToken{
		Email:     email,
		UserType:  role,
		OTP:       otp,
		ExpiresAt: s.now().Add(s.expiry),
	}
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.ResetTokens.InvalidateOutstanding(ctx, email, role); err != nil {
			return fmt.Errorf("invalidate codes: %w", err)
		}
		return tx.ResetTokens.Create(ctx, token)
	})
	if err != nil {
		return err
	}

	if err := s.mail.Send(ctx, mailer.OTPMessage(email, string(role), otp, s.expiry)); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("send password reset code")
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

func (s *PasswordResetService) usable(ctx context.Context, in VerifyOTPInput) (*models.PasswordResetToken, models.Role, error) {
	role, err := memberRole(in.UserType)
	if err != nil {
		return nil, "", err
	}
	token, err := s.store.ResetTokens.FindUsable(ctx, in.Email, role, strings.TrimSpace(in.OTP), s.now())
	if err != nil {
		return nil, "", fmt.Errorf("find reset code: %w", err)
	}
	if token == nil {
		return nil, "", invalid("OTP is invalid or expired.")
	}
	return token, role, nil
}

func (s *PasswordResetService) Verify(ctx context.Context, in VerifyOTPInput) error {
	_, _, err := s.usable(ctx, in)
	return err
}

// Reset redeems the code, sets the new password and mails a confirmation.
func (s *PasswordResetService) Reset(ctx context.Context, in ResetPasswordInput) error {
	if in.NewPassword != in.ConfirmPassword {
		return invalid("Passwords do not match")
	}
	token, role, err := s.usable(ctx, in.VerifyOTPInput)
	if err != nil {
		return err
	}
	p, err := s.store.Accounts.FindByEmail(ctx, role, token.Email)
	if err != nil {
		return fmt.Errorf("find %s: %w", role, err)
	}
	if p == nil {
		return invalid("Invalid OTP or email.")
	}
	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		redeemed, err := tx.ResetTokens.MarkUsed(ctx, token.ID)
		if err != nil {
			return fmt.Errorf("mark code used: %w", err)
		}
		if !redeemed {
			return invalid("OTP is invalid or expired.")
		}
		return tx.Accounts.UpdatePassword(ctx, role, p.Credentials().ID, hash)
	})
	if err != nil {
		return err
	}

	if err := s.mail.Send(ctx, mailer.ResetConfirmationMessage(token.Email, string(role))); err != nil {
		s.log.Warn().Err(err).Str("email", token.Email).Msg("send password reset confirmation")
	}
	return nil
}
