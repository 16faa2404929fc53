package handlers

import (
	"io"
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/security"
	"github.com/rs/cors"
)

// NewRouter wires every route behind CORS, panic recovery and an access log
// written to accessLog.
func NewRouter(h *Handler, tokens *security.TokenManager, allowedOrigins []string, accessLog io.Writer) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", h.Health).Methods("GET")
	router.HandleFunc("/api/auth/register", h.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", h.Login).Methods("POST")

	managers := []models.Role{models.RoleAdmin, models.RoleManager}

	api := router.PathPrefix("/api").Subrouter()
	api.Use(tokens.Authenticate(h.svc))

	api.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	api.HandleFunc("/users/me", h.Me).Methods("GET")
	api.HandleFunc("/users/me", h.UpdateMe).Methods("PUT")
	api.HandleFunc("/users/me/password", h.ChangePassword).Methods("PUT")

	api.HandleFunc("/team", security.RoleRequired(h.ListTeam, managers...)).Methods("GET")
	api.HandleFunc("/team", security.RoleRequired(h.AddTeamMember, managers...)).Methods("POST")
	api.HandleFunc("/team/{id}", security.RoleRequired(h.UpdateTeamMember, managers...)).Methods("PUT")
	api.HandleFunc("/team/{id}", security.RoleRequired(h.RemoveTeamMember, managers...)).Methods("DELETE")

	api.HandleFunc("/projects", h.ListProjects).Methods("GET")
	api.HandleFunc("/projects/{id}", h.GetProject).Methods("GET")
	api.HandleFunc("/projects", security.RoleRequired(h.CreateProject, managers...)).Methods("POST")
	api.HandleFunc("/projects/{id}", security.RoleRequired(h.UpdateProject, managers...)).Methods("PUT")
	api.HandleFunc("/projects/{id}", security.RoleRequired(h.DeleteProject, managers...)).Methods("DELETE")

	api.HandleFunc("/tasks", h.ListTasks).Methods("GET")
	api.HandleFunc("/tasks", h.CreateTask).Methods("POST")
	api.HandleFunc("/tasks/{id}", h.GetTask).Methods("GET")
	api.HandleFunc("/tasks/{id}", h.UpdateTask).Methods("PUT")
	api.HandleFunc("/tasks/{id}/status", h.UpdateTaskStatus).Methods("PATCH")
	api.HandleFunc("/tasks/{id}", h.DeleteTask).Methods("DELETE")
	api.HandleFunc("/tasks/{id}/comments", h.AddComment).Methods("POST")
	api.HandleFunc("/tasks/{id}/comments/{commentId}", h.UpdateComment).Methods("PUT")
	api.HandleFunc("/tasks/{id}/comments/{commentId}", h.DeleteComment).Methods("DELETE")

	api.HandleFunc("/notifications", h.ListNotifications).Methods("GET")
	api.HandleFunc("/notifications", h.ClearNotifications).Methods("DELETE")
	api.HandleFunc("/notifications/read-all", h.MarkAllNotificationsRead).Methods("PUT")
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods("PUT")
	api.HandleFunc("/notifications/{id}", h.DeleteNotification).Methods("DELETE")

	api.HandleFunc("/activity/me", h.MyActivity).Methods("GET")
	api.HandleFunc("/activity/stats", security.RoleRequired(h.ActivityStats, managers...)).Methods("GET")
	api.HandleFunc("/activity/cleanup", security.RoleRequired(h.CleanupActivity, models.RoleAdmin)).Methods("DELETE")
	api.HandleFunc("/activity", security.RoleRequired(h.ListActivity, managers...)).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	recovery := gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(h.logger),
		gorillahandlers.PrintRecoveryStack(true),
	)
	return gorillahandlers.CombinedLoggingHandler(accessLog, recovery(c.Handler(router)))
}
