package model

import (
	"errors"
	"time"
)

// DeviceToken represents a user's registered device for push notifications.
// Supports multiple devices per user.
type DeviceToken struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	Token     string    `db:"token" json:"-"`
	Platform  string    `db:"platform" json:"platform"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// RegisterTokenRequest is the request body for registering a device token.
type RegisterTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// Platform constants
const (
	PlatformExpo    = "expo"
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// IsValidPlatform reports whether p is one of the known platforms.
func IsValidPlatform(p string) bool {
	return p == PlatformExpo || p == PlatformIOS || p == PlatformAndroid
}

// Device token errors
var (
	ErrDeviceTokenRequired = errors.New("token is required")
	ErrInvalidPlatform     = errors.New("platform must be expo, ios or android")
)
