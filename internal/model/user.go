package model

import (
	"errors"
	"time"
)

// Gender values accepted at registration
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// User represents a user in the system
type User struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	Gender         string    `db:"gender" json:"gender"`
	AvatarURL      *string   `db:"avatar_url" json:"avatarUrl"`
	AvatarKey      *string   `db:"avatar_key" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`

	// Loaded from the follows table
	Followers  []int64 `json:"followers"`
	Followings []int64 `json:"followings"`
}

// Summary returns the public card for the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Name      string
	Email     string
	Gender    string
	Password  string
	AvatarURL *string
	AvatarKey *string
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdatePasswordRequest is the body of POST /user/{id}
type UpdatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UpdateProfileRequest carries optional profile changes.
type UpdateProfileRequest struct {
	Name      *string
	AvatarURL *string
	AvatarKey *string
}

// AuthResponse is returned after register and login.
type AuthResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
}

// Search limits
const (
	UserSearchLimit = 20
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when attempting to register an email that is taken
	ErrEmailExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrNameRequired     = errors.New("name is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidGender    = errors.New("gender must be male or female")
	ErrAvatarRequired   = errors.New("profile picture is required")
	ErrWrongPassword    = errors.New("old password does not match")
	ErrNotAccountOwner  = errors.New("cannot modify another user's account")
)
