package model

import (
	"errors"
)

type UserSummary struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	AvatarURL *string `db:"avatar_url" json:"avatarUrl"`
}

// FollowData lists who follows a user and whom the user follows.
type FollowData struct {
	Followers  []UserSummary `json:"followers"`
	Followings []UserSummary `json:"followings"`
}

// FollowResult reports which way a follow toggle went.
type FollowResult struct {
	Following bool `json:"following"`
}

var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
