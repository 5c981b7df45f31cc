package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/HKazz/project-3-back-end/middleware"
	"github.com/HKazz/project-3-back-end/services"
	"github.com/HKazz/project-3-back-end/utils"
)

type RouterConfig struct {
	Auth          *services.AuthService
	Projects      *services.ProjectService
	Tasks         *services.TaskService
	Notifications *services.NotificationService
	CORSOrigin    string
	StoreTimeout  time.Duration
}

// NewRouter wires every route. CORS and request logging wrap the router so
// they also see preflight and unmatched requests.
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Auth)
	projectHandler := NewProjectHandler(cfg.Projects)
	taskHandler := NewTaskHandler(cfg.Tasks)
	notificationHandler := NewNotificationHandler(cfg.Notifications)

	r := mux.NewRouter()
	if cfg.StoreTimeout > 0 {
		r.Use(middleware.Timeout(cfg.StoreTimeout))
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/auth/sign-up", authHandler.SignUp).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(middleware.JWTAuthMiddleware(cfg.Auth))

	api.HandleFunc("/auth/verify", authHandler.Verify).Methods(http.MethodGet)

	api.HandleFunc("/projects", projectHandler.ListProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects", projectHandler.CreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectId}", projectHandler.GetProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectId}", projectHandler.UpdateProject).Methods(http.MethodPut)
	api.HandleFunc("/projects/{projectId}", projectHandler.DeleteProject).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{projectId}/members", projectHandler.AddMembers).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectId}/members/{userId}", projectHandler.RemoveMember).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{projectId}/assigned-users", projectHandler.AssignedUsers).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectId}/tasks", taskHandler.ListProjectTasks).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectId}/tasks", taskHandler.CreateTask).Methods(http.MethodPost)

	api.HandleFunc("/tasks/{taskId}", taskHandler.GetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskId}", taskHandler.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskId}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskId}/assignee", taskHandler.ReassignTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskId}/assignee", taskHandler.UnassignTask).Methods(http.MethodDelete)

	api.HandleFunc("/notifications", notificationHandler.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{notificationId}/read", notificationHandler.MarkRead).Methods(http.MethodPut)

	return middleware.RequestLogger(middleware.CORS(cfg.CORSOrigin)(r))
}
