package verification

import (
	"github.com/frahmantamala/staff-portal/internal/user"
)

// UserService is the slice of the identity service the workflow needs.
type UserService interface {
	Register(dto user.RegisterDTO) (*user.User, error)
	GetByEmail(email string) (*user.User, error)
	GetByID(userID string) (*user.User, error)
	MarkVerified(userID string) (*user.User, error)
	ChangePassword(userID, newPassword string) (*user.User, error)
}

type ServiceAPI interface {
	RegisterWithVerification(dto user.RegisterDTO) (*user.User, error)
	Confirm(email, tokenValue string) (redirectURL string, err error)
	RequestReset(email string) error
	ConfirmReset(rawValue, newPassword string) error
}
