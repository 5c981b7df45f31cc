package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HKazz/project-3-back-end/middleware"
	"github.com/HKazz/project-3-back-end/models"
	"github.com/HKazz/project-3-back-end/utils"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid request payload: %v: %w", err, models.ErrInvalidInput)
	}
	return nil
}

func pathID(r *http.Request, name, what string) (primitive.ObjectID, error) {
	return utils.ParseObjectID(mux.Vars(r)[name], what)
}

func actorFrom(r *http.Request) (models.Identity, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return models.Identity{}, fmt.Errorf("no authenticated user: %w", models.ErrUnauthorized)
	}
	return identity, nil
}
