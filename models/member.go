package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TeamMember is the canonical membership entry stored inside a project.
type TeamMember struct {
	User     primitive.ObjectID `bson:"user" json:"user"`
	Name     string             `bson:"name" json:"name"`
	Part     string             `bson:"part" json:"part"`
	Note     string             `bson:"note,omitempty" json:"note,omitempty"`
	JoinDate time.Time          `bson:"joinDate" json:"joinDate"`
}
