// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// Role is the permission level of a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// ActiveFlag is the string-encoded activation state stored on a user.
type ActiveFlag string

const (
	Active   ActiveFlag = "true"
	Inactive ActiveFlag = "false"
)

// User represents a registered user in the system.
// It contains authentication credentials, the current session token and profile data.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`

	// Email is stored lower-cased and must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`

	// PasswordHash is the stored password hash. Never the plaintext password.
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	Name string `gorm:"size:255;not null" json:"name"`

	Role Role `gorm:"size:32;not null;default:user" json:"role"`

	// SessionToken is the token of the user's current session, empty when logged out.
	// Only the latest issued token is ever compared, so issuing a new one retires the old.
	SessionToken string `gorm:"size:64;index" json:"-"`

	IsActive ActiveFlag `gorm:"size:5;not null;default:true" json:"isActive"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`

	ProfileImage string `gorm:"size:1024" json:"profileImage,omitempty"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Active reports whether the account may log in.
func (u *User) Active() bool {
	return u.IsActive == Active
}
