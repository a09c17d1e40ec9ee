package dto

import (
	"time"

	"todo_backend/internal/feature/auth/domain/entity"
)

// UserRes is the public view of an identity. Credentials never leave the server.
type UserRes struct {
	ID           uint       `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	IsActive     string     `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin"`
	ProfileImage string     `json:"profileImage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// UserResFromEntity converts u; nil stays nil.
func UserResFromEntity(u *entity.User) *UserRes {
	if u == nil {
		return nil
	}
	return &UserRes{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         string(u.Role),
		IsActive:     string(u.IsActive),
		LastLogin:    u.LastLogin,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// ResultRes is the outcome of every mutating auth operation.
type ResultRes struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	User    *UserRes `json:"user,omitempty"`
}

// SessionRes mirrors the session state shown by the UI.
type SessionRes struct {
	CurrentUser     *UserRes `json:"currentUser"`
	Loading         bool     `json:"loading"`
	Error           string   `json:"error"`
	IsAuthenticated bool     `json:"isAuthenticated"`
}
