package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"baccarat-lite/apps/bot/internal/bot"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // board viewer is read-only
	},
}

// Connection is one board viewer subscribed to a single chat key.
type Connection struct {
	ID   string
	Key  string
	Conn *websocket.Conn
	Send chan []byte
	hub  *Hub
}

// Hub fans board updates out to websocket viewers, keyed by chat key.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]*Connection
	byKey  map[string]map[string]*Connection
	nextID uint64
	log    zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		conns: make(map[string]*Connection),
		byKey: make(map[string]map[string]*Connection),
		log:   log.With().Str("component", "ws_hub").Logger(),
	}
}

// HandleWebSocket upgrades GET /ws?key=<chat key>.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.URL.Query().Get("key"))
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing key")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("upgrade failed")
		return
	}

	h.mu.Lock()
	h.nextID++
	c := &Connection{
		ID:   fmt.Sprintf("conn_%d", h.nextID),
		Key:  key,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		hub:  h,
	}
	h.conns[c.ID] = c
	if h.byKey[key] == nil {
		h.byKey[key] = make(map[string]*Connection)
	}
	h.byKey[key][c.ID] = c
	total := len(h.conns)
	h.mu.Unlock()

	h.log.Debug().Str("conn", c.ID).Str("key", key).Int("total", total).Msg("viewer connected")

	go c.readPump()
	go c.writePump()
}

// PublishBoard satisfies bot.Publisher. Slow viewers drop updates.
func (h *Hub) PublishBoard(key string, board bot.Board) {
	data, err := json.Marshal(board)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("encode board failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.byKey[key] {
		select {
		case c.Send <- data:
		default:
		}
	}
}

// Subscribers reports how many viewers watch key.
func (h *Hub) Subscribers(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byKey[key])
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		h.remove(c)
	}
}

func (h *Hub) remove(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c.ID]; !ok {
		return
	}
	delete(h.conns, c.ID)
	if subs := h.byKey[c.Key]; subs != nil {
		delete(subs, c.ID)
		if len(subs) == 0 {
			delete(h.byKey, c.Key)
		}
	}
	close(c.Send)
	h.log.Debug().Str("conn", c.ID).Int("total", len(h.conns)).Msg("viewer disconnected")
}

func (c *Connection) readPump() {
	defer func() {
		c.hub.remove(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// viewers only listen; anything they send is dropped
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Str("conn", c.ID).Msg("read error")
			}
			return
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
