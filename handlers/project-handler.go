package handlers

import (
	"net/http"

	"github.com/HKazz/project-3-back-end/models"
	"github.com/HKazz/project-3-back-end/services"
	"github.com/HKazz/project-3-back-end/utils"
)

type ProjectHandler struct {
	Service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	projects, err := h.Service.ListForUser(r.Context(), actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var input models.ProjectInput
	if err := decodeJSON(w, r, &input); err != nil {
		utils.WriteError(w, err)
		return
	}

	project, err := h.Service.Create(r.Context(), input, actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectId", "project")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	project, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	id, err := pathID(r, "projectId", "project")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var patch models.ProjectPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		utils.WriteError(w, err)
		return
	}

	project, err := h.Service.Update(r.Context(), id, patch, actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	id, err := pathID(r, "projectId", "project")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	project, err := h.Service.Delete(r.Context(), id, actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, project)
}

// AddMembers expects a JSON array of {user, name, part, note?, joinDate?}.
func (h *ProjectHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	id, err := pathID(r, "projectId", "project")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var members []models.TeamMember
	if err := decodeJSON(w, r, &members); err != nil {
		utils.WriteError(w, err)
		return
	}

	project, err := h.Service.AddMembers(r.Context(), id, members, actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	id, err := pathID(r, "projectId", "project")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	userID, err := pathID(r, "userId", "user")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	project, err := h.Service.RemoveMember(r.Context(), id, userID, actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) AssignedUsers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectId", "project")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	users, err := h.Service.AssignedUsers(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, users)
}
