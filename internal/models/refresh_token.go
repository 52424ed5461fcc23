package models

import "time"

// RefreshToken is one login session record. Rotation overwrites Token and
// ExpiresAt in place; the old value stops matching any row, which is the
// whole single-use mechanism.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
