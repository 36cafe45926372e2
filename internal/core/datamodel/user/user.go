package user

import "time"

// Role values match the frontend route segments, so they are stored with
// their display casing rather than lowercased.
const (
	RoleAdmin    = "Admin"
	RoleManager  = "Manager"
	RoleEmployee = "Employee"
	RoleHR       = "HR"
	RoleTL       = "TL"
)

// DefaultImage is the placeholder shown until a profile picture is uploaded.
const DefaultImage = "https://www.jotform.com/blog/wp-content/uploads/2022/12/how-to-add-link-to-google-form-1280x500.jpg"

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEmployee, RoleHR, RoleTL:
		return true
	}
	return false
}

type User struct {
	ID           string    `gorm:"primaryKey;column:id"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;not null;default:Employee"`
	Image        string    `gorm:"column:image"`
	IsVerified   bool      `gorm:"column:is_verified;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (User) TableName() string {
	return "users"
}
