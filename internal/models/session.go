package models

import "time"

// PasswordResetToken is a one-time code mailed to a user who forgot their password.
type PasswordResetToken struct {
	Base
	Email     string    `gorm:"type:varchar(254);not null;index" json:"email"`
	UserType  Role      `gorm:"type:varchar(20);not null" json:"user_type"`
	OTP       string    `gorm:"column:otp;type:varchar(6);not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IsUsed    bool      `gorm:"not null" json:"is_used"`
}

// Usable reports whether the code can still be redeemed at now.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return !t.IsUsed && now.Before(t.ExpiresAt)
}
