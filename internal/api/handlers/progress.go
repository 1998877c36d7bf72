package handlers

import (
	"net/http"
	"route-pool-service/internal/api/dto"
	"route-pool-service/internal/ports"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	progressBuffer = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 20 * time.Second
)

// ProgressHub fans generation progress out to websocket subscribers.
// A subscriber that falls behind loses frames rather than slowing workers.
type ProgressHub struct {
	Log *zap.Logger

	upgrader websocket.Upgrader
	mu       sync.Mutex
	subs     map[chan dto.ProgressMessage]struct{}
}

func NewProgressHub(log *zap.Logger) *ProgressHub {
	return &ProgressHub{
		Log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		subs:     make(map[chan dto.ProgressMessage]struct{}),
	}
}

func (h *ProgressHub) OnTaskDone(ev ports.ProgressEvent) {
	msg := dto.ProgressMessage{
		Done:     ev.Done,
		Total:    ev.Total,
		Target:   ev.Target,
		Capacity: ev.Capacity,
		Variant:  ev.Variant,
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *ProgressHub) subscribe() chan dto.ProgressMessage {
	ch := make(chan dto.ProgressMessage, progressBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *ProgressHub) unsubscribe(ch chan dto.ProgressMessage) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// Subscribers is the number of connected clients.
func (h *ProgressHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP upgrades to a websocket and streams progress frames until the
// client goes away.
func (h *ProgressHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// Reads only serve control frames; a read error means the client is gone.
	closed := make(chan struct{})
	conn.SetReadLimit(1 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case msg := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
