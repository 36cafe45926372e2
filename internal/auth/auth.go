package auth

import (
	"github.com/frahmantamala/staff-portal/internal/user"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the self-contained session credential payload. Possession of a
// validly signed, unexpired token is the sole authorization factor; there
// is no server-side revocation list.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenGeneratorAPI interface {
	IssueToken(u *user.User) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// UserAuthenticator is the slice of the identity service the login flow needs.
type UserAuthenticator interface {
	Authenticate(email, password string) (*user.User, error)
}

// TokenDeleter purges verification/reset tokens on logout. The bearer
// credential itself stays valid until its own expiry.
type TokenDeleter interface {
	DeleteByOwner(userID string) error
}

type ServiceAPI interface {
	Login(dto LoginDTO) (*LoginResult, error)
	Logout(userID string) error
	ValidateToken(tokenString string) (*Claims, error)
}

type LoginResult struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}
