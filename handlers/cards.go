package handlers

import (
	"net/http"

	"github.com/CrowderSoup/rosy-workroom/services"
)

// CardHandler handles card endpoints and the assembled board view
type CardHandler struct {
	cards    *services.CardService
	registry *services.ColumnRegistry
	gate     *services.AccessGate
}

func NewCardHandler(cards *services.CardService, registry *services.ColumnRegistry, gate *services.AccessGate) *CardHandler {
	return &CardHandler{
		cards:    cards,
		registry: registry,
		gate:     gate,
	}
}

// ListCards returns a board's cards ordered by status, position and id.
// Project id 0 is the caller's personal board.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	projectID, err := int64Var(r, "projectId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	cards, err := h.cards.ListCards(r.Context(), caller, projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	var in services.CardInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	card, err := h.cards.CreateCard(r.Context(), caller, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	id, err := int64Var(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in services.CardInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	card, err := h.cards.UpdateCard(r.Context(), caller, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// MoveCard applies a drag-and-drop move and returns the board's cards
func (h *CardHandler) MoveCard(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	id, err := int64Var(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req services.MoveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	cards, err := h.cards.MoveCard(r.Context(), caller, id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	id, err := int64Var(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.cards.DeleteCard(r.Context(), caller, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBoard returns the scope's columns, synthesized orphan columns
// included, each with its cards in display order.
func (h *CardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
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

	cards, err := h.cards.ListCards(r.Context(), caller, projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scope":   scope.String(),
		"columns": services.BuildBoard(columns, cards),
	})
}
