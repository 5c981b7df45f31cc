package utils

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HKazz/project-3-back-end/models"
)

// ParseObjectID converts a hex id taken from a path or body into an ObjectID.
func ParseObjectID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid %s id %q: %w", what, hex, models.ErrInvalidInput)
	}
	return id, nil
}
