package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/kintree/pkg/notify"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/render/sink"
)

const writeWait = 5 * time.Second

// message is what the server pushes to pages.
type message struct {
	Type   string         `json:"type"`
	SVG    string         `json:"svg,omitempty"`
	Notice *notify.Notice `json:"notice,omitempty"`
}

// client is one websocket connection. Writes go through send so that only
// the write loop touches the connection's writer.
type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		// Slow page; it will catch up with the next scene.
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 32)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("page connected", "remote", r.RemoteAddr)

	go c.writeLoop()
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		c.close()
		s.logger.Debug("page disconnected", "remote", r.RemoteAddr)
	}()

	if msg, err := s.sceneMessage(r.Context()); err == nil {
		c.enqueue(msg)
	}

	p := render.NewPointer(s.coord)
	defer p.Cancel()
	for {
		var ev render.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read", "err", err)
			}
			return
		}
		p.Handle(ev)
	}
}

func (s *Server) sceneMessage(ctx context.Context) ([]byte, error) {
	svg := sink.RenderSVG(s.coord.Layout(ctx), s.svgOpts...)
	return json.Marshal(message{Type: "scene", SVG: string(svg)})
}

func (s *Server) broadcast(msg []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.enqueue(msg)
	}
}

// broadcastScene pushes the current layout to every page.
func (s *Server) broadcastScene() {
	s.mu.Lock()
	n := len(s.clients)
	s.mu.Unlock()
	if n == 0 {
		return
	}
	msg, err := s.sceneMessage(context.Background())
	if err != nil {
		s.logger.Error("encode scene", "err", err)
		return
	}
	s.broadcast(msg)
}

// forwardNotices relays notices to every page until the subscription ends.
func (s *Server) forwardNotices(ch <-chan notify.Notice) {
	for n := range ch {
		msg, err := json.Marshal(message{Type: "notice", Notice: &n})
		if err != nil {
			continue
		}
		s.broadcast(msg)
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.close()
	}
}
