package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// Client is one websocket subscriber watching a venue on a date.
type Client struct {
	conn  *websocket.Conn
	send  chan []byte
	topic string
}

type broadcastMsg struct {
	topic string
	data  []byte
}

// Hub routes notifications to websocket clients subscribed to their
// venue/date topic. All subscriber state is owned by the Run goroutine.
type Hub struct {
	topics     map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	done       chan struct{}
	upgrader   websocket.Upgrader
	log        *slog.Logger
}

// NewHub returns a Hub; start it with Run.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		topics:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 256),
		done:       make(chan struct{}),
		// Origins are enforced by the CORS layer in front of the router.
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:      log,
	}
}

// Run services registrations and broadcasts until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			if h.topics[c.topic] == nil {
				h.topics[c.topic] = make(map[*Client]bool)
			}
			h.topics[c.topic][c] = true

		case c := <-h.unregister:
			h.remove(c)

		case m := <-h.broadcast:
			for c := range h.topics[m.topic] {
				select {
				case c.send <- m.data:
				default:
					// Slow consumer; its writer closes the socket.
					h.remove(c)
				}
			}

		case <-ctx.Done():
			for _, clients := range h.topics {
				for c := range clients {
					h.remove(c)
				}
			}
			return
		}
	}
}

func (h *Hub) remove(c *Client) {
	clients := h.topics[c.topic]
	if !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.topics, c.topic)
	}
}

// Publish queues n for the subscribers of its topic. Notifications without a
// venue are dropped.
func (h *Hub) Publish(ctx context.Context, n model.Notification) error {
	topic := n.Topic()
	if topic == "" {
		return nil
	}
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- broadcastMsg{topic: topic, data: data}:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe upgrades the request to a websocket streaming notifications for
// venueID on date.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, venueID, date string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := &Client{
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		topic: model.VenueTopic(venueID, date),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go h.writePump(c)
	go h.readPump(c)
}

// readPump discards client input and detects disconnects.
func (h *Hub) readPump(c *Client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
