package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusNotStarted, nil
	}
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q: %w", s, ErrInvalidInput)
	}
	return st, nil
}

type Project struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name"`
	Description    string               `bson:"description" json:"description"`
	StartDate      time.Time            `bson:"startDate" json:"startDate"`
	EndDate        *time.Time           `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Status         Status               `bson:"status" json:"status"`
	ProjectManager primitive.ObjectID   `bson:"projectManager" json:"projectManager"`
	TeamMembers    []TeamMember         `bson:"teamMembers" json:"teamMembers"`
	Tasks          []primitive.ObjectID `bson:"tasks" json:"tasks"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasMember reports whether userID is already in the team member list.
func (p *Project) HasMember(userID primitive.ObjectID) bool {
	for _, m := range p.TeamMembers {
		if m.User == userID {
			return true
		}
	}
	return false
}

// ProjectInput is the create payload.
type ProjectInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   Date   `json:"startDate"`
	EndDate     *Date  `json:"endDate,omitempty"`
	Status      string `json:"status,omitempty"`
}

// ProjectPatch carries the fields to replace; nil fields are left untouched.
// An explicit null endDate clears the end date.
type ProjectPatch struct {
	Name        *string      `json:"name,omitempty"`
	Description *string      `json:"description,omitempty"`
	StartDate   *Date        `json:"startDate,omitempty"`
	EndDate     OptionalDate `json:"endDate"`
	Status      *Status      `json:"status,omitempty"`
}

func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.StartDate == nil && !p.EndDate.Set && p.Status == nil
}
