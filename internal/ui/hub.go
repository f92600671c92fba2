// Package ui pushes the live call view to browser clients over websocket:
// every transcript line, the identified customer's card, and periodic
// store/KPI statistics.
package ui

import (
	"context"
	log "log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"santral/internal/customer"
	"santral/internal/history"
	"santral/internal/perf"
)

// Event is the wire unit sent to every connected client.
type Event struct {
	Tur   string    `json:"tur"` // mesaj, musteri, istatistik
	Zaman time.Time `json:"zaman"`
	Veri  any       `json:"veri"`
}

type messagePayload struct {
	Gonderen string `json:"gonderen"`
	Mesaj    string `json:"mesaj"`
	Rol      string `json:"rol"` // customer, assistant, system
}

type statsPayload struct {
	Gecmis history.Stats      `json:"gecmis"`
	Gunluk history.DailyStats `json:"gunluk"`
	Sistem perf.SystemMetrics `json:"sistem"`
}

// sendBuffer bounds how far a slow client may lag before it loses events.
const sendBuffer = 256

// client owns the write side of one connection. All frames go through the
// send channel so exactly one goroutine ever writes to the Conn.
type client struct {
	conn *websocket.Conn
	send chan Event
}

// Hub fans events out to websocket clients. Broadcasts never block the
// caller: a client whose buffer is full is dropped.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler upgrades and holds the connection until the client goes away.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("Websocket upgrade failed", "err", err)
			return
		}
		c := &client{conn: conn, send: make(chan Event, sendBuffer)}
		h.mu.Lock()
		h.clients[c] = struct{}{}
		h.mu.Unlock()
		log.Info("UI client connected", "remote", conn.RemoteAddr())

		go c.writeLoop()

		// drain client frames; we only ever push
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.drop(c)
	}
}

// writeLoop is the single writer for this connection. It exits when the
// send channel closes or a write fails.
func (c *client) writeLoop() {
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			break
		}
	}
	c.conn.Close()
}

// drop unregisters the client and closes its send channel exactly once.
// Every close happens under the hub lock, so broadcast can never send on a
// closed channel.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcast(ev Event) {
	ev.Zaman = time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			log.Warn("UI client too slow, dropping", "remote", c.conn.RemoteAddr())
			h.dropLocked(c)
		}
	}
}

// Message implements the call loop's transcript sink. Fire and continue;
// the call thread never waits on a browser.
func (h *Hub) Message(gonderen, mesaj, tur string) {
	h.broadcast(Event{Tur: "mesaj", Veri: messagePayload{
		Gonderen: gonderen,
		Mesaj:    mesaj,
		Rol:      tur,
	}})
}

// Customer pushes the identified caller's card.
func (h *Hub) Customer(rec *customer.Record) {
	h.broadcast(Event{Tur: "musteri", Veri: rec})
}

// PollStats broadcasts store and KPI statistics on the given interval until
// ctx is cancelled. Run it on its own goroutine.
func (h *Hub) PollStats(ctx context.Context, interval time.Duration, hist *history.Store, tracker *perf.Tracker) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.broadcast(Event{Tur: "istatistik", Veri: statsPayload{
				Gecmis: hist.Stats(),
				Gunluk: hist.Daily(),
				Sistem: tracker.SystemMetrics(),
			}})
		}
	}
}

// Serve runs the websocket endpoint at /ws.
func (h *Hub) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.Handler())
	log.Info("UI websocket listening", "addr", addr)
	return http.ListenAndServe(addr, mux)
}
