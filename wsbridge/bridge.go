// Package wsbridge forwards hero scene events to web UI clients over a
// websocket and accepts update messages from them.
//
// Every client gets a buffered outgoing queue. Broadcasting never blocks: a
// client whose queue is full misses that event and a warning is logged.
package wsbridge

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/phanxgames/glyphwave"
)

// Applier receives update messages from clients. *glyphwave.Hero satisfies it.
type Applier interface {
	Apply(m glyphwave.Message)
}

const (
	sendBuffer   = 8
	writeTimeout = 5 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = pongTimeout * 9 / 10
	maxInbound   = 4096
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Bridge is an http.Handler that upgrades to a websocket per client.
type Bridge struct {
	target   Applier
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
	last    []byte // most recent sceneUpdate, sent to new clients
}

// New creates a bridge. Inbound updates go to target; a nil target makes the
// bridge broadcast-only.
func New(target Applier, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		target: target,
		log:    log.With(zap.String("component", "wsbridge")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// Clients returns the number of connected clients.
func (b *Bridge) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Publish broadcasts a scene event to every client.
func (b *Bridge) Publish(ev glyphwave.SceneEvent) {
	data, err := glyphwave.MarshalMessage(glyphwave.SceneUpdateMessage(ev))
	if err != nil {
		b.log.Error("encode scene update", zap.Error(err))
		return
	}
	// Sends happen under the lock so remove and Close cannot close a queue
	// mid-send. They never block.
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = data
	for _, c := range b.clients {
		select {
		case c.send <- data:
		default:
			b.log.Warn("client too slow, scene update dropped", zap.String("client", c.id))
		}
	}
}

// ServeHTTP upgrades the connection and runs the client's pumps until it
// disconnects.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("websocket upgrade", zap.Error(err))
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}

	b.mu.Lock()
	b.clients[c.id] = c
	if b.last != nil {
		c.send <- b.last
	}
	b.mu.Unlock()
	b.log.Info("client connected", zap.String("client", c.id), zap.String("remote", r.RemoteAddr))

	go b.writePump(c)
	b.readPump(c)
}

func (b *Bridge) remove(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c.id]; ok {
		delete(b.clients, c.id)
		close(c.send)
	}
	b.mu.Unlock()
}

// readPump applies inbound update messages and detects disconnects. The host
// owns the canvas size, so client sizes are dropped and the remaining fields
// are clamped.
func (b *Bridge) readPump(c *client) {
	defer func() {
		b.remove(c)
		c.conn.Close()
		b.log.Info("client disconnected", zap.String("client", c.id))
	}()
	c.conn.SetReadLimit(maxInbound)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.log.Warn("client read", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
		m, err := glyphwave.UnmarshalMessage(data)
		if err != nil {
			b.log.Warn("bad client message", zap.String("client", c.id), zap.Error(err))
			continue
		}
		if m.Type != glyphwave.MsgUpdate || b.target == nil {
			b.log.Debug("ignored client message", zap.String("type", string(m.Type)))
			continue
		}
		m.Width, m.Height = nil, nil
		m = m.Bounded()
		if m.IsEmptyUpdate() {
			b.log.Warn("rejected client update", zap.String("client", c.id), zap.ByteString("data", data))
			continue
		}
		b.target.Apply(m)
	}
}

// writePump sends queued events and keeps the connection alive with pings.
func (b *Bridge) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client.
func (b *Bridge) Close() {
	b.mu.Lock()
	clients := b.clients
	b.clients = make(map[string]*client)
	b.mu.Unlock()
	for _, c := range clients {
		close(c.send)
	}
}
