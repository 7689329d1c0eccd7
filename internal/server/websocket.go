package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jfoltran/gallery/internal/lister"
	"github.com/jfoltran/gallery/internal/metrics"
)

// listingEvent is pushed to websocket clients whenever the assets
// directory changes.
type listingEvent struct {
	Type   string              `json:"type"`
	Images []lister.Descriptor `json:"images"`
}

// Hub manages WebSocket clients and broadcasts listing updates.
type Hub struct {
	collector *metrics.Collector
	watcher   *lister.Watcher
	logger    zerolog.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	id   string
	conn *websocket.Conn
}

func newHub(collector *metrics.Collector, logger zerolog.Logger) *Hub {
	return &Hub{
		collector: collector,
		logger:    logger.With().Str("component", "ws-hub").Logger(),
		clients:   make(map[*wsClient]struct{}),
	}
}

// start forwards watcher listings until ctx is cancelled. Without a
// watcher the hub only tracks connections.
func (h *Hub) start(ctx context.Context) {
	if h.watcher == nil {
		return
	}
	ch := h.watcher.Subscribe()
	defer h.watcher.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case imgs, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(imgs)
		}
	}
}

func (h *Hub) broadcast(imgs []lister.Descriptor) {
	data, err := json.Marshal(listingEvent{Type: "images", Images: imgs})
	if err != nil {
		h.logger.Err(err).Msg("marshal listing for ws")
		return
	}

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.remove(c)
		}
	}
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.collector.SetWSClients(n)
	h.logger.Debug().Str("client", c.id).Int("clients", n).Msg("ws client connected")
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.collector.SetWSClients(n)
}

func (h *Hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow cross-origin for dev.
	})
	if err != nil {
		h.logger.Err(err).Msg("ws accept")
		return
	}

	client := &wsClient{id: uuid.NewString(), conn: conn}
	h.add(client)

	// Keep connection alive by reading (client may send pings).
	for {
		_, _, err := conn.Read(r.Context())
		if err != nil {
			h.remove(client)
			return
		}
	}
}
