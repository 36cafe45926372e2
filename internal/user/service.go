package user

import (
	"log/slog"

	"github.com/frahmantamala/staff-portal/internal"
	userDatamodel "github.com/frahmantamala/staff-portal/internal/core/datamodel/user"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service implements the identity operations: register, authenticate,
// change password and profile lookup.
type Service struct {
	repo       RepositoryAPI
	tokens     TokenPurger
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenPurger, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) Register(dto RegisterDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to check existing user", err)
	}
	if existing != nil {
		return nil, internal.ErrDuplicateEmail
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	image := dto.Image
	if image == "" {
		image = userDatamodel.DefaultImage
	}

	dm := &userDatamodel.User{
		ID:           uuid.NewString(),
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         dto.Role,
		Image:        image,
	}

	if err := s.repo.Create(dm); err != nil {
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user registered", "user_id", dm.ID, "role", dm.Role)
	return FromDataModel(dm), nil
}

// Authenticate verifies the credentials and the verification flag. Admins
// skip the verification check so the seeded account can always log in.
func (s *Service) Authenticate(email, password string) (*User, error) {
	dm, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if dm == nil || dm.PasswordHash == "" {
		return nil, internal.ErrInvalidCredentials
	}

	if dm.Role != userDatamodel.RoleAdmin && !dm.IsVerified {
		return nil, internal.ErrNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(dm.PasswordHash), []byte(password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	return FromDataModel(dm), nil
}

// ChangePassword re-hashes and persists the new password, then deletes all
// outstanding tokens for the user so pending reset/verification links stop
// working.
func (s *Service) ChangePassword(userID, newPassword string) (*User, error) {
	if err := (ChangePasswordDTO{NewPassword: newPassword}).Validate(); err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	dm, err := s.repo.UpdatePassword(userID, hash)
	if err != nil {
		return nil, internal.NewInternalError("failed to update password", err)
	}
	if dm == nil {
		return nil, internal.ErrUserNotFound
	}

	if err := s.tokens.DeleteByOwner(userID); err != nil {
		return nil, internal.NewInternalError("failed to invalidate tokens", err)
	}

	s.logger.Info("password changed", "user_id", userID)
	return FromDataModel(dm), nil
}

func (s *Service) GetProfile(userID string) (*Profile, error) {
	u, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return u.ToProfile(), nil
}

func (s *Service) GetByID(userID string) (*User, error) {
	dm, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if dm == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(dm), nil
}

func (s *Service) GetByEmail(email string) (*User, error) {
	dm, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if dm == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(dm), nil
}

func (s *Service) MarkVerified(userID string) (*User, error) {
	dm, err := s.repo.SetVerified(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to update verification flag", err)
	}
	if dm == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(dm), nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
