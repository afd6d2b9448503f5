package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/courtside/volleytrack/live"
)

type WebSocketHandler struct {
	hub      *live.Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(hub *live.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The socket only pushes public scoreboard state, so any
			// origin may subscribe.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// SubscribeMatch upgrades the connection and joins the match's room.
func (h *WebSocketHandler) SubscribeMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	h.hub.NewClient(conn, live.MatchRoom(matchID))
}
