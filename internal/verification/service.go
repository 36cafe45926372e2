package verification

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/staff-portal/internal"
	tokenDatamodel "github.com/frahmantamala/staff-portal/internal/core/datamodel/token"
	"github.com/frahmantamala/staff-portal/internal/mailer"
	"github.com/frahmantamala/staff-portal/internal/token"
	"github.com/frahmantamala/staff-portal/internal/user"
)

const (
	verificationTokenBytes = 16
	resetTokenBytes        = 32
)

// Service drives the two token-mediated flows: email verification at
// registration and self-service password reset.
//
// Verification tokens are stored in the clear: the workflow only needs an
// equality lookup and the value travels over the email channel once. Reset
// tokens are stored as SHA-256 digests so a leaked database snapshot cannot
// be turned into valid reset links.
type Service struct {
	users       UserService
	tokens      token.StoreAPI
	mail        mailer.Mailer
	baseURL     string
	frontendURL string
	resetTTL    time.Duration
	logger      *slog.Logger
}

func NewService(users UserService, tokens token.StoreAPI, mail mailer.Mailer, baseURL, frontendURL string, resetTTL time.Duration, logger *slog.Logger) *Service {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &Service{
		users:       users,
		tokens:      tokens,
		mail:        mail,
		baseURL:     baseURL,
		frontendURL: frontendURL,
		resetTTL:    resetTTL,
		logger:      logger,
	}
}

// RegisterWithVerification creates the user, issues a verification token
// and mails the confirmation link. The caller only gets a success once the
// send attempt has completed; a transport failure fails the registration
// response even though the user row already exists.
func (s *Service) RegisterWithVerification(dto user.RegisterDTO) (*user.User, error) {
	u, err := s.users.Register(dto)
	if err != nil {
		return nil, err
	}

	value, err := generateTokenValue(verificationTokenBytes)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate verification token", err)
	}

	if err := s.tokens.Issue(&tokenDatamodel.Token{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Value:  value,
	}); err != nil {
		return nil, internal.NewInternalError("failed to issue verification token", err)
	}

	link := fmt.Sprintf("%s/api/v1/confirmation/%s/%s", s.baseURL, u.Email, value)
	msg := mailer.Message{
		To:      u.Email,
		Subject: "Account Verification",
		Body: fmt.Sprintf(`<p>Hello %s,</p>
<p>Please verify your account by clicking the link:</p>
<a href="%s">%s</a>
<p>The link expires in 24 hours.</p>
<p>Thank you!</p>`, u.Name, link, link),
	}

	if err := s.mail.Send(msg); err != nil {
		return nil, err
	}

	s.logger.Info("verification mail sent", "user_id", u.ID)
	return u, nil
}

// Confirm consumes a verification token: flips the user's verification flag,
// deletes the token and returns the role-specific login page to redirect to.
func (s *Service) Confirm(email, tokenValue string) (string, error) {
	t, err := s.tokens.FindByValue(tokenValue)
	if err != nil {
		return "", internal.NewInternalError("failed to look up token", err)
	}
	if t == nil {
		return "", internal.ErrTokenNotFound
	}

	u, err := s.users.GetByEmail(email)
	if err != nil {
		return "", err
	}
	if u.ID != t.UserID {
		return "", internal.ErrUserNotFound
	}

	if u.IsVerified {
		return "", internal.ErrAlreadyVerified
	}

	if _, err := s.users.MarkVerified(u.ID); err != nil {
		return "", err
	}

	// A duplicated confirmation request may observe the token again before
	// this delete commits; that at-least-once window is tolerated.
	if err := s.tokens.DeleteByValue(tokenValue); err != nil {
		return "", internal.NewInternalError("failed to delete consumed token", err)
	}

	s.logger.Info("user verified", "user_id", u.ID)
	return fmt.Sprintf("%s/%s/login", s.frontendURL, u.Role), nil
}

// RequestReset issues a reset token and mails the raw value. Only the
// SHA-256 digest of the value is persisted.
func (s *Service) RequestReset(email string) error {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}

	raw, err := generateTokenValue(resetTokenBytes)
	if err != nil {
		return internal.NewInternalError("failed to generate reset token", err)
	}

	expiresAt := time.Now().Add(s.resetTTL)
	if err := s.tokens.Issue(&tokenDatamodel.Token{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Value:     hashTokenValue(raw),
		ExpiresAt: &expiresAt,
	}); err != nil {
		return internal.NewInternalError("failed to issue reset token", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s/%s", s.frontendURL, raw, u.Role)
	msg := mailer.Message{
		To:      u.Email,
		Subject: "Password Reset Request",
		Body: fmt.Sprintf(`<p>Hello %s,</p>
<p>You requested a password reset. Click the link below to reset your password:</p>
<a href="%s">Reset Password</a>
<p>Or copy and paste this link into your browser:</p>
<p>%s</p>
<p>If you did not request this, please ignore this email.</p>`, u.Name, link, link),
	}

	if err := s.mail.Send(msg); err != nil {
		return err
	}

	s.logger.Info("reset mail sent", "user_id", u.ID)
	return nil
}

// ConfirmReset validates the raw token value and sets the new password.
// The explicit expiration is checked here even though the sweeper also
// ages tokens out: the reset window is shorter than the store-wide TTL.
func (s *Service) ConfirmReset(rawValue, newPassword string) error {
	if rawValue == "" {
		return internal.ErrInvalidOrExpiredToken
	}

	t, err := s.tokens.FindByValue(hashTokenValue(rawValue))
	if err != nil {
		return internal.NewInternalError("failed to look up token", err)
	}
	if t == nil || t.Expired(time.Now()) {
		return internal.ErrInvalidOrExpiredToken
	}

	u, err := s.users.GetByID(t.UserID)
	if err != nil {
		return err
	}

	// ChangePassword also purges every outstanding token for the owner,
	// consuming this one and any sibling reset links.
	if _, err := s.users.ChangePassword(u.ID, newPassword); err != nil {
		return err
	}

	s.logger.Info("password reset completed", "user_id", u.ID)
	return nil
}

func generateTokenValue(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func hashTokenValue(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
