package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/staff-portal/internal"
	"github.com/frahmantamala/staff-portal/internal/user"
	"github.com/golang-jwt/jwt/v5"
)

// Service authenticates credentials and mints session tokens.
type Service struct {
	users    UserAuthenticator
	tokens   TokenDeleter
	tokenGen TokenGeneratorAPI
	logger   *slog.Logger
}

func NewService(users UserAuthenticator, tokens TokenDeleter, tokenGen TokenGeneratorAPI, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		tokenGen: tokenGen,
		logger:   logger,
	}
}

func (s *Service) Login(dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.users.Authenticate(dto.Email, dto.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokenGen.IssueToken(u)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue session token", err)
	}

	s.logger.Info("user logged in", "user_id", u.ID, "role", u.Role)
	return &LoginResult{Token: token, User: u}, nil
}

// Logout deletes the user's verification/reset tokens. The session
// credential is stateless and stays valid until it expires.
func (s *Service) Logout(userID string) error {
	if err := s.tokens.DeleteByOwner(userID); err != nil {
		return internal.NewInternalError("failed to delete tokens", err)
	}
	s.logger.Info("user logged out", "user_id", userID)
	return nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateToken(tokenString)
}

// JWTTokenGenerator signs session credentials with an HMAC secret.
type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		TTL:    ttl,
	}
}

func (j *JWTTokenGenerator) IssueToken(u *user.User) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   u.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
