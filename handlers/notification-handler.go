package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/HKazz/project-3-back-end/services"
	"github.com/HKazz/project-3-back-end/utils"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	notifications, err := h.Service.List(r.Context(), actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.Service.MarkRead(r.Context(), actor, mux.Vars(r)["notificationId"]); err != nil {
		utils.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
