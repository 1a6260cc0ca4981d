package handlers

import (
	"net/http"

	"github.com/CrowderSoup/rosy-workroom/services"
	"github.com/gorilla/mux"
)

// ColumnHandler serves the workflow columns of personal and project boards
type ColumnHandler struct {
	registry *services.ColumnRegistry
	gate     *services.AccessGate
}

func NewColumnHandler(registry *services.ColumnRegistry, gate *services.AccessGate) *ColumnHandler {
	return &ColumnHandler{
		registry: registry,
		gate:     gate,
	}
}

type columnRequest struct {
	Name      *string `json:"name"`
	Position  *int    `json:"position"`
	ProjectID *int64  `json:"projectId"`
}

func (h *ColumnHandler) ListColumns(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	projectID, err := projectIDQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	scope, _, err := h.gate.BoardScope(r.Context(), projectID, caller)
	if err != nil {
		writeError(w, r, err)
		return
	}

	columns, err := h.registry.ListColumns(r.Context(), scope)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, columns)
}

func (h *ColumnHandler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	var req columnRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	var projectID int64
	if req.ProjectID != nil {
		projectID = *req.ProjectID
	}

	scope, _, err := h.gate.BoardScope(r.Context(), projectID, caller)
	if err != nil {
		writeError(w, r, err)
		return
	}

	col, err := h.registry.CreateColumn(r.Context(), scope, name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, col)
}

func (h *ColumnHandler) UpdateColumn(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	var req columnRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var projectID int64
	if req.ProjectID != nil {
		projectID = *req.ProjectID
	} else {
		q, err := projectIDQuery(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		projectID = q
	}

	scope, _, err := h.gate.BoardScope(r.Context(), projectID, caller)
	if err != nil {
		writeError(w, r, err)
		return
	}

	col, err := h.registry.UpdateColumn(r.Context(), scope, mux.Vars(r)["key"], req.Name, req.Position)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, col)
}

func (h *ColumnHandler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	projectID, err := projectIDQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	scope, _, err := h.gate.BoardScope(r.Context(), projectID, caller)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.registry.DeleteColumn(r.Context(), scope, mux.Vars(r)["key"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
