package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ScreenActivator turns a screen's polling controller on and off
type ScreenActivator interface {
	Activate(name string) error
	Deactivate(name string) error
}

// Push is the envelope sent to screen subscribers
type Push struct {
	Screen    string    `json:"screen"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans refreshed screen payloads out to websocket subscribers. The first
// subscriber of a screen activates its controller and the last one to leave
// deactivates it.
type Hub struct {
	activator ScreenActivator
	screens   map[string]bool
	log       zerolog.Logger

	lock    sync.Mutex
	clients map[string]map[*websocket.Conn]bool
}

// NewHub creates a hub serving the named screens
func NewHub(activator ScreenActivator, screens []string, log zerolog.Logger) *Hub {
	known := make(map[string]bool, len(screens))
	for _, s := range screens {
		known[s] = true
	}
	return &Hub{
		activator: activator,
		screens:   known,
		log:       log.With().Str("component", "ws-hub").Logger(),
		clients:   make(map[string]map[*websocket.Conn]bool),
	}
}

// Broadcast sends payload to every subscriber of screen. Subscribers that
// fail to receive are dropped.
func (h *Hub) Broadcast(screen string, payload any) {
	msg, err := json.Marshal(Push{Screen: screen, Data: payload, Timestamp: time.Now()})
	if err != nil {
		h.log.Error().Err(err).Str("screen", screen).Msg("failed to marshal push")
		return
	}

	h.lock.Lock()
	var dropped []*websocket.Conn
	for conn := range h.clients[screen] {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			dropped = append(dropped, conn)
		}
	}
	h.lock.Unlock()

	for _, conn := range dropped {
		h.remove(screen, conn)
	}
}

// Subscribers returns the number of connections on screen
func (h *Hub) Subscribers(screen string) int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients[screen])
}

// ServeWS handles GET /ws?screen=<name>
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	screen := r.URL.Query().Get("screen")
	if !h.screens[screen] {
		respondError(w, http.StatusBadRequest, "unknown screen")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	h.add(screen, conn)

	// Clients only listen; reading detects the close.
	go func() {
		defer h.remove(screen, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) add(screen string, conn *websocket.Conn) {
	h.lock.Lock()
	defer h.lock.Unlock()

	subs, ok := h.clients[screen]
	if !ok {
		subs = make(map[*websocket.Conn]bool)
		h.clients[screen] = subs
	}
	subs[conn] = true
	h.log.Debug().Str("screen", screen).Msg("subscriber joined")

	// activation happens under the lock so a concurrent leave cannot
	// deactivate after this join
	if len(subs) == 1 {
		if err := h.activator.Activate(screen); err != nil {
			h.log.Error().Err(err).Str("screen", screen).Msg("failed to activate controller")
		}
	}
}

func (h *Hub) remove(screen string, conn *websocket.Conn) {
	h.lock.Lock()
	defer h.lock.Unlock()

	subs := h.clients[screen]
	if !subs[conn] {
		return
	}
	delete(subs, conn)
	conn.Close()
	h.log.Debug().Str("screen", screen).Msg("subscriber left")

	if len(subs) == 0 {
		delete(h.clients, screen)
		if err := h.activator.Deactivate(screen); err != nil {
			h.log.Error().Err(err).Str("screen", screen).Msg("failed to deactivate controller")
		}
	}
}
