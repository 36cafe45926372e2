package token

import "time"

// DefaultTTL is how long any token row survives before the sweeper removes
// it, regardless of its own expires_at.
const DefaultTTL = 24 * time.Hour

// Token binds a user to a pending email verification or password reset.
// UserID is a non-owning reference: users are never hard-deleted by any
// operation here, so dangling rows cannot occur in practice and no cascade
// is defined.
type Token struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    string     `gorm:"column:user_id;index;not null"`
	Name      string     `gorm:"column:name;not null"`
	Email     string     `gorm:"column:email;not null"`
	Role      string     `gorm:"column:role;not null"`
	Value     string     `gorm:"column:token;index;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (Token) TableName() string {
	return "tokens"
}

// Expired reports whether the token's own expiration window has elapsed.
// Tokens without an explicit expiration only age out via the sweeper.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}
