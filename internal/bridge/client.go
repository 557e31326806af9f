package bridge

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ha1tch/automata-diagram/pkg/render"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
	maxMessage = 64 * 1024
)

// client is one connected renderer.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// enqueue hands data to the writer. When a slow client's buffer is full
// the oldest queued message is discarded, so the newest frame always gets
// through.
func (c *client) enqueue(data []byte) bool {
	for {
		select {
		case <-c.done:
			return false
		default:
		}
		select {
		case c.send <- data:
			return true
		default:
		}
		select {
		case <-c.send:
			framesDropped.Inc()
		default:
		}
	}
}

func (s *Server) handleWebSocket(gc *gin.Context) {
	conn, err := s.upgrader.Upgrade(gc.Writer, gc.Request, nil)
	if err != nil {
		s.log.Error("failed to upgrade the websocket", "error", err)
		return
	}

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	log := s.log.With("session", c.id)
	log.Info("renderer connected", "remote", gc.Request.RemoteAddr)

	hello, _ := sonic.Marshal(Message{Type: MsgSession, SessionID: c.id})
	c.send <- hello

	s.mu.Lock()
	s.clients[c.id] = c
	c.send <- s.frameMsg
	s.mu.Unlock()

	go s.writePump(c)
	s.readPump(gc.Request.Context(), c)

	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	close(c.done)
	log.Info("renderer disconnected")
}

// readPump decodes renderer events and posts them to the editor loop.
func (s *Server) readPump(ctx context.Context, c *client) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed", "session", c.id, "error", err)
			}
			return
		}

		var env render.Envelope
		if err := sonic.Unmarshal(data, &env); err != nil {
			s.reject(c, "malformed event: "+err.Error())
			continue
		}
		ev, err := env.Event()
		if err != nil {
			s.reject(c, err.Error())
			continue
		}
		if err := s.loop.Post(ctx, ev); err != nil {
			s.reject(c, err.Error())
			return
		}
	}
}

func (s *Server) reject(c *client, reason string) {
	s.log.Debug("event rejected", "session", c.id, "reason", reason)
	data, err := sonic.Marshal(Message{Type: MsgError, Error: reason})
	if err == nil {
		c.enqueue(data)
	}
}

// writePump is the only goroutine writing to the connection.
func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Warn("Failed to write WebSocket frame", "session", c.id, "error", err)
				c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		c.conn.Close()
	}
}
