package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q: %w", s, ErrInvalidInput)
	}
	return p, nil
}

type Task struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"taskName" json:"name"`
	Description    string              `bson:"taskDescription" json:"description"`
	StartDate      time.Time           `bson:"startDate" json:"startDate"`
	EndDate        *time.Time          `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Priority       Priority            `bson:"priority" json:"priority"`
	Status         Status              `bson:"status" json:"status"`
	AssignedUser   *primitive.ObjectID `bson:"assignedUser,omitempty" json:"assignedUser,omitempty"`
	ProjectManager primitive.ObjectID  `bson:"projectManager" json:"projectManager"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (t *Task) IsAssignedTo(userID primitive.ObjectID) bool {
	return t.AssignedUser != nil && *t.AssignedUser == userID
}

type TaskInput struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	StartDate    Date                `json:"startDate"`
	EndDate      *Date               `json:"endDate,omitempty"`
	Priority     string              `json:"priority,omitempty"`
	Status       string              `json:"status,omitempty"`
	AssignedUser *primitive.ObjectID `json:"assignedUser,omitempty"`
}

// TaskPatch never carries the assignee; assignment goes through Reassign/Unassign.
type TaskPatch struct {
	Name        *string      `json:"name,omitempty"`
	Description *string      `json:"description,omitempty"`
	StartDate   *Date        `json:"startDate,omitempty"`
	EndDate     OptionalDate `json:"endDate"`
	Priority    *Priority    `json:"priority,omitempty"`
	Status      *Status      `json:"status,omitempty"`
}

func (p TaskPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.StartDate == nil && !p.EndDate.Set &&
		p.Priority == nil && p.Status == nil
}
