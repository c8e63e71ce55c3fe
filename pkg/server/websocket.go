package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"mock-swap/pkg/session"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
)

// handleWebSocket streams a View for every published snapshot, starting with
// the current one
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := s.store.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.readLoop(conn, cancel)

	s.logger.Debug("websocket connected", "remote", r.RemoteAddr)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	tokens := s.store.Catalog().Tokens()
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(session.NewView(state, tokens)); err != nil {
				s.logger.Debug("websocket write failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so control messages are processed; it
// cancels the stream once the peer goes away
func (s *Server) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read error", "err", err)
			}
			return
		}
	}
}
