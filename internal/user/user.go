package user

import (
	"net/http"
	"time"

	userDatamodel "github.com/frahmantamala/staff-portal/internal/core/datamodel/user"
)

// User is the external-facing identity record. The password hash never
// leaves the service layer.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Image      string    `json:"image"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// Profile is the dashboard projection of a User.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Image string `json:"image"`
}

type RepositoryAPI interface {
	Create(u *userDatamodel.User) error
	GetByEmail(email string) (*userDatamodel.User, error)
	GetByID(id string) (*userDatamodel.User, error)
	UpdatePassword(id, passwordHash string) (*userDatamodel.User, error)
	SetVerified(id string) (*userDatamodel.User, error)
}

// TokenPurger invalidates every outstanding verification/reset token for a
// user. Implemented by the token store.
type TokenPurger interface {
	DeleteByOwner(userID string) error
}

type ServiceAPI interface {
	Register(dto RegisterDTO) (*User, error)
	Authenticate(email, password string) (*User, error)
	ChangePassword(userID, newPassword string) (*User, error)
	GetProfile(userID string) (*Profile, error)
	GetByEmail(email string) (*User, error)
	GetByID(userID string) (*User, error)
	MarkVerified(userID string) (*User, error)
}

// ImageSaver stores an uploaded profile picture and returns its reference.
type ImageSaver interface {
	Save(r *http.Request, field string) (string, error)
}

func FromDataModel(dm *userDatamodel.User) *User {
	return &User{
		ID:         dm.ID,
		Name:       dm.Name,
		Email:      dm.Email,
		Role:       dm.Role,
		Image:      dm.Image,
		IsVerified: dm.IsVerified,
		CreatedAt:  dm.CreatedAt,
	}
}

func (u *User) ToProfile() *Profile {
	return &Profile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Image: u.Image,
	}
}
