package handlers

import (
	"net/http"

	"github.com/HKazz/project-3-back-end/models"
	"github.com/HKazz/project-3-back-end/services"
	"github.com/HKazz/project-3-back-end/utils"
)

type TaskHandler struct {
	Service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{Service: service}
}

type assigneeRequest struct {
	AssignedUser string `json:"assignedUser"`
}

func (h *TaskHandler) ListProjectTasks(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectId", "project")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	tasks, err := h.Service.ListForProject(r.Context(), projectID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	projectID, err := pathID(r, "projectId", "project")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var input models.TaskInput
	if err := decodeJSON(w, r, &input); err != nil {
		utils.WriteError(w, err)
		return
	}

	task, err := h.Service.Create(r.Context(), projectID, input, actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskId", "task")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	task, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	id, err := pathID(r, "taskId", "task")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var patch models.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		utils.WriteError(w, err)
		return
	}

	task, err := h.Service.Update(r.Context(), id, patch, actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	id, err := pathID(r, "taskId", "task")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	task, err := h.Service.Delete(r.Context(), id, actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) ReassignTask(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	id, err := pathID(r, "taskId", "task")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req assigneeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	userID, err := utils.ParseObjectID(req.AssignedUser, "user")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	task, err := h.Service.Reassign(r.Context(), id, userID, actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UnassignTask(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	id, err := pathID(r, "taskId", "task")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	task, err := h.Service.Unassign(r.Context(), id, actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, task)
}
