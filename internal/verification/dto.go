package verification

import "github.com/frahmantamala/staff-portal/internal"

type ForgotPasswordDTO struct {
	Email string `json:"email"`
}

type ResetPasswordDTO struct {
	NewPassword string `json:"new_password"`
}

func (d ForgotPasswordDTO) Validate() error {
	if d.Email == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

func (d ResetPasswordDTO) Validate() error {
	if d.NewPassword == "" {
		return internal.NewValidationError("new_password is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
