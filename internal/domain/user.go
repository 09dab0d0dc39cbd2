package domain

import (
	"context"
	"time"
)

// User mirrors the provider identity. Email and IsAdmin are never changed through the API.
type User struct {
	ID        string    `json:"id"` // Supabase UUID
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type UserRepository interface {
	// InsertIfAbsent creates the row unless one with the same id already exists.
	// It reports whether this call inserted it.
	InsertIfAbsent(ctx context.Context, user *User) (bool, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateName(ctx context.Context, id string, name *string) (*User, error)
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required" validate:"required,min=1,max=100,valid_name,no_emoji"`
}

type ProfileUsecase interface {
	GetProfile(ctx context.Context) (*User, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error)
}
