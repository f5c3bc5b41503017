package models

import "time"

type User struct {
	UserID        string    `json:"userid" bson:"userid"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email" bson:"email"`
	Password      string    `json:"password,omitempty" bson:"password"`
	Role          []string  `json:"role" bson:"role"`
	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	LastLogin     time.Time `json:"-" bson:"last_login,omitempty"`
}

// Preferences are the prefer/avoid tags gathered from a user's chat, scoped
// to one trip. The analysis prompt merges them across all of a trip's users.
type Preferences struct {
	TripID  string   `json:"trip_id" bson:"trip_id"`
	UserID  string   `json:"user_id" bson:"user_id"`
	Prefer  []string `json:"prefer" bson:"prefer"`
	Avoid   []string `json:"avoid" bson:"avoid"`
	Updated int64    `json:"updated" bson:"updated"`
}
