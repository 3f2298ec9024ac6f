package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || isLocalhostOrigin(origin)
	},
}

// StreamLogs handles GET /ws/logs/{id}. Each new line of the container is
// sent as one text message.
func (h *Handlers) StreamLogs(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "id")
	hub, err := h.backend.Hub(name)
	if err != nil {
		h.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		h.logger.Debug().Err(err).Str("container", name).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	id, lines := hub.Subscribe()
	defer hub.Unsubscribe(id)

	logger := h.logger.With().Str("container", name).Str("listener", id).Logger()
	logger.Debug().Msg("stream client connected")

	// The read pump only notices the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			logger.Debug().Msg("stream client disconnected")
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case line, ok := <-lines:
			if !ok {
				// Backend shutting down
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				logger.Debug().Err(err).Msg("stream write failed")
				return
			}
		}
	}
}
