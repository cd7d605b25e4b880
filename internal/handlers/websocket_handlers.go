package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"roomchat/internal/auth"
	"roomchat/internal/chat"
	ws "roomchat/internal/websocket"
)

type WebSocketHandlers struct {
	verifier    *auth.Verifier
	coordinator *chat.Coordinator
	upgrader    websocket.Upgrader
}

func NewWebSocketHandlers(verifier *auth.Verifier, coordinator *chat.Coordinator) *WebSocketHandlers {
	return &WebSocketHandlers{
		verifier:    verifier,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// The identity assertion arrives as a query parameter; it must
	// verify before any connection state is created.
	identity, err := h.verifier.Verify(r.URL.Query().Get("token"))
	if err != nil {
		log.Debug().Err(err).Msg("websocket connection rejected")
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade error")
		return
	}

	// The domain connection id is minted here; the transport handle
	// never doubles as an identity key.
	connID := uuid.NewString()
	client := ws.NewClient(conn, h.coordinator, connID, identity)

	if err := h.coordinator.Connect(connID, identity, client); err != nil {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
