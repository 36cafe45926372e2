package user

import (
	"github.com/frahmantamala/staff-portal/internal"
	userDatamodel "github.com/frahmantamala/staff-portal/internal/core/datamodel/user"
)

const minPasswordLength = 6

// RegisterDTO carries registration input. Image is the stored reference
// produced by the upload store, not raw file bytes.
type RegisterDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Image    string `json:"-"`
}

type ChangePasswordDTO struct {
	NewPassword string `json:"new_password"`
}

func (d RegisterDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	if d.Email == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeValidationFailed)
	}
	if d.Password == "" {
		return internal.NewValidationError("password is required", internal.ErrCodeValidationFailed)
	}
	if len(d.Password) < minPasswordLength {
		return internal.NewValidationError("password must be at least 6 characters", internal.ErrCodePasswordTooShort)
	}
	if d.Role == "" {
		return internal.NewValidationError("role is required", internal.ErrCodeValidationFailed)
	}
	if !userDatamodel.ValidRole(d.Role) {
		return internal.NewValidationError("role must be one of Admin, Manager, Employee, HR, TL", internal.ErrCodeInvalidRole)
	}
	return nil
}

func (d ChangePasswordDTO) Validate() error {
	if d.NewPassword == "" {
		return internal.NewValidationError("new_password is required", internal.ErrCodeValidationFailed)
	}
	if len(d.NewPassword) < minPasswordLength {
		return internal.NewValidationError("new_password must be at least 6 characters", internal.ErrCodePasswordTooShort)
	}
	return nil
}
