package viz

import (
	"log"
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

// Hub fans rendered frames out to websocket subscribers. Slow clients
// get frames dropped rather than stalling the render loop.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]chan []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]chan []byte),
	}
}

// SubscriberCount returns the number of connected clients.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Broadcast marshals the frame once and queues it to every subscriber.
func (h *Hub) Broadcast(f Frame) {
	payload, err := sonic.Marshal(f)
	if err != nil {
		log.Printf("viz: frame marshal error: %v", err)
		return
	}

	h.mu.Lock()
	for _, ch := range h.conns {
		select {
		case ch <- payload:
		default:
			// subscriber too slow, drop the frame
		}
	}
	h.mu.Unlock()
}

// ServeHTTP upgrades the connection and streams frames until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("viz: websocket upgrade failed: %v", err)
		return
	}

	ch := make(chan []byte, 8)
	h.mu.Lock()
	h.conns[conn] = ch
	h.mu.Unlock()
	log.Printf("viz: subscriber connected (total: %d)", h.SubscriberCount())

	// Writer: drain the frame queue into the socket.
	go func() {
		for payload := range ch {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}()

	// Reader: we expect nothing from the client; this just detects close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	close(ch)
	conn.Close()
	log.Printf("viz: subscriber disconnected (remaining: %d)", h.SubscriberCount())
}
