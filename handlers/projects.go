package handlers

import (
	"net/http"

	"github.com/CrowderSoup/rosy-workroom/services"
)

type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	projects, err := h.projects.ListProjects(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	var in services.ProjectInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := h.projects.CreateProject(r.Context(), caller, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	id, err := int64Var(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	project, err := h.projects.GetProject(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// UpdateProject changes project settings; owner only
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	id, err := int64Var(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in services.ProjectInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := h.projects.UpdateProject(r.Context(), caller, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	id, err := int64Var(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.projects.DeleteProject(r.Context(), caller, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
