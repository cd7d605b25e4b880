package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"roomchat/internal/chat"
)

// APIHandlers serves the read-only REST surface: the room directory, the
// presence roster, and in-memory message history.
type APIHandlers struct {
	coordinator *chat.Coordinator
}

func NewAPIHandlers(coordinator *chat.Coordinator) *APIHandlers {
	return &APIHandlers{coordinator: coordinator}
}

func (h *APIHandlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.coordinator.RoomNames())
}

func (h *APIHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.coordinator.Users())
}

func (h *APIHandlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		http.Error(w, "room parameter is required", http.StatusBadRequest)
		return
	}

	messages, err := h.coordinator.History(room)
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	if messages == nil {
		messages = []chat.Message{}
	}
	writeJSON(w, messages)
}

func (h *APIHandlers) RoomMembers(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		http.Error(w, "room parameter is required", http.StatusBadRequest)
		return
	}

	members := h.coordinator.RoomMembers(room)
	if members == nil {
		members = []chat.User{}
	}
	writeJSON(w, members)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
