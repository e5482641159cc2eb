package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mtlprog/vault/internal/token"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
	streamPongTimeout  = 2 * streamPingInterval
	streamBuffer       = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Read-only public stream.
	CheckOrigin: func(*http.Request) bool { return true },
}

// StreamToken handles GET /api/v1/token/stream. It sends the current view on connect and
// every published view afterwards. Slow clients skip intermediate views.
func (h *Handler) StreamToken(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates := make(chan token.View, streamBuffer)
	cancel := h.views.Subscribe(func(v token.View) {
		select {
		case updates <- v:
		default:
		}
	})
	defer cancel()

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	if err := writeView(conn, h.views.Snapshot()); err != nil {
		return
	}

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case v := <-updates:
			if err := writeView(conn, v); err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeView(conn *websocket.Conn, v token.View) error {
	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(NewTokenDTO(v))
}

// readUntilClosed drains client frames so pongs and close frames are processed.
func readUntilClosed(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadDeadline(time.Now().Add(streamPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
