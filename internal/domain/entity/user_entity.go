package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash; the plaintext is never stored.
//
// ResetTokenHash/ResetTokenExpiresAt carry the state of an in-flight
// password reset: only the sha256 hex of the issued token is persisted,
// and both fields are cleared when the token is consumed.
type User struct {
	ID                string
	Email             string
	Password          string
	Name              string
	AvatarURL         string
	ResetTokenHash    string
	ResetTokenExpires time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasActiveResetToken reports whether a reset token has been issued and
// has not yet expired at the given instant.
func (u *User) HasActiveResetToken(now time.Time) bool {
	return u.ResetTokenHash != "" && now.Before(u.ResetTokenExpires)
}

// ClearResetToken drops any in-flight reset token state.
func (u *User) ClearResetToken() {
	u.ResetTokenHash = ""
	u.ResetTokenExpires = time.Time{}
}
