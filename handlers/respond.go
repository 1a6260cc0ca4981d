package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/CrowderSoup/rosy-workroom/logging"
	"github.com/CrowderSoup/rosy-workroom/services"
	"github.com/gorilla/mux"
)

type errorResponse struct {
	Status           string   `json:"status"`
	Error            string   `json:"error"`
	Reason           string   `json:"reason"`
	MissingUsers     []string `json:"missingUsers,omitempty"`
	InvalidAssignees []string `json:"invalidAssignees,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status": "success",
		"data":   data,
	}); err != nil {
		logging.Logger.Errorf("Error encoding response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, reason, message string) {
	writeErrorBody(w, status, errorResponse{Status: "error", Error: message, Reason: reason})
}

func writeErrorBody(w http.ResponseWriter, status int, body errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Logger.Errorf("Error encoding error response: %v", err)
	}
}

// writeError maps service errors onto HTTP status codes
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var listErr *services.UserListError
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &listErr):
		reason := "invalid_assignees"
		if len(listErr.MissingUsers) > 0 {
			reason = "missing_users"
		}
		writeErrorBody(w, http.StatusBadRequest, errorResponse{
			Status:           "error",
			Error:            listErr.Error(),
			Reason:           reason,
			MissingUsers:     listErr.MissingUsers,
			InvalidAssignees: listErr.InvalidAssignees,
		})
	case errors.As(err, &validationErr):
		writeJSONError(w, http.StatusBadRequest, "validation_failed", validationErr.Reason)
	case errors.Is(err, services.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, services.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, "forbidden", "you do not have access to this resource")
	case errors.Is(err, services.ErrConflict):
		writeJSONError(w, http.StatusConflict, "conflict", "already exists")
	case errors.Is(err, services.ErrInvalidToken):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid session")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, services.ErrRateLimited):
		writeJSONError(w, http.StatusTooManyRequests, "rate_limited", err.Error())
	default:
		logging.Logger.WithField("path", r.URL.Path).Errorf("Request failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal", "Server error")
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &services.ValidationError{Reason: "Invalid request format"}
	}
	return nil
}

// int64Var reads a numeric path variable
func int64Var(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id < 0 {
		return 0, &services.ValidationError{Reason: "invalid " + name}
	}
	return id, nil
}

// projectIDQuery reads the optional projectId query parameter, 0 if absent
func projectIDQuery(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("projectId")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, &services.ValidationError{Reason: "invalid projectId"}
	}
	return id, nil
}
