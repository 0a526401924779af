package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/endlessblink/memstore/internal/changebus"
)

// writeWait bounds how long a single WebSocket write may block before the
// connection is considered dead.
const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEvent is the wire shape a Change Bus event is marshaled to.
type wsEvent struct {
	Kind    string `json:"kind"`
	Domain  string `json:"domain"`
	Project string `json:"project"`
	ID      string `json:"id,omitempty"`
	Path    string `json:"path"`
	At      string `json:"at"`
}

// handleWebSocket upgrades the connection and streams Change Bus events
// until the client disconnects. When this subscriber's send queue is full,
// changebus drops the individual event rather than blocking the watcher;
// the stream itself continues.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var events <-chan changebus.Event
	var unsubscribe func()
	events, unsubscribe = s.bus.Subscribe()
	defer unsubscribe()

	// Drain and discard any client-initiated frames (pings, close) so the
	// read side stays healthy; this socket is server-push only.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for ev := range events {
		payload, err := json.Marshal(wsEvent{
			Kind:    string(ev.Kind),
			Domain:  string(ev.Domain),
			Project: ev.Project,
			ID:      ev.ID,
			Path:    ev.Path,
			At:      ev.At.Format(time.RFC3339Nano),
		})
		if err != nil {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
