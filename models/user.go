package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"hashedPassword" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Identity is the authenticated actor carried by a session token.
type Identity struct {
	ID       primitive.ObjectID `json:"userId"`
	Username string             `json:"username"`
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username}
}

// NormalizeUsername lower-cases and trims a username; lookups and inserts both go through it.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
