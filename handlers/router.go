package handlers

import (
	"net/http"

	"github.com/CrowderSoup/rosy-workroom/database"
	"github.com/CrowderSoup/rosy-workroom/services"
	"github.com/gorilla/mux"
)

// NewRouter wires the services over store and registers every route.
// Everything under /api except register and login requires a session.
func NewRouter(store *database.Store, authService *services.AuthService) *mux.Router {
	gate := services.NewAccessGate(store)
	validator := services.NewAssigneeValidator(store)
	registry := services.NewColumnRegistry(store)
	cardService := services.NewCardService(store, gate, validator)
	projectService := services.NewProjectService(store, gate, validator)

	authHandler := NewAuthHandler(authService)
	columnHandler := NewColumnHandler(registry, gate)
	cardHandler := NewCardHandler(cardService, registry, gate)
	projectHandler := NewProjectHandler(projectService)
	authMiddleware := NewAuthMiddleware(authService)

	r := mux.NewRouter()
	r.Use(RequestLogger)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"state": "ok"})
	}).Methods(http.MethodGet)

	// Auth routes
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Auth)

	api.HandleFunc("/auth/verify", authHandler.VerifyToken).Methods(http.MethodGet)

	api.HandleFunc("/columns", columnHandler.ListColumns).Methods(http.MethodGet)
	api.HandleFunc("/columns", columnHandler.CreateColumn).Methods(http.MethodPost)
	api.HandleFunc("/columns/{key}", columnHandler.UpdateColumn).Methods(http.MethodPut)
	api.HandleFunc("/columns/{key}", columnHandler.DeleteColumn).Methods(http.MethodDelete)

	api.HandleFunc("/board", cardHandler.GetBoard).Methods(http.MethodGet)
	api.HandleFunc("/cards", cardHandler.CreateCard).Methods(http.MethodPost)
	api.HandleFunc("/cards/{projectId:[0-9]+}", cardHandler.ListCards).Methods(http.MethodGet)
	api.HandleFunc("/cards/{id:[0-9]+}", cardHandler.UpdateCard).Methods(http.MethodPut)
	api.HandleFunc("/cards/{id:[0-9]+}", cardHandler.DeleteCard).Methods(http.MethodDelete)
	api.HandleFunc("/cards/{id:[0-9]+}/move", cardHandler.MoveCard).Methods(http.MethodPost)

	api.HandleFunc("/projects", projectHandler.ListProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects", projectHandler.CreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id:[0-9]+}", projectHandler.GetProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id:[0-9]+}", projectHandler.UpdateProject).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id:[0-9]+}", projectHandler.DeleteProject).Methods(http.MethodDelete)

	return r
}
