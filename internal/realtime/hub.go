// Package realtime hosts the server side of the collaborative dashboard
// sessions: one room per trial or flight, relaying presence, chat,
// typing, and viewport frames between the participants watching it.
package realtime

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/flightdeck-io/flightdeck/internal/wire"
	"github.com/flightdeck-io/flightdeck/pkg/logger"
	"github.com/flightdeck-io/flightdeck/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // 1 MiB

	sendBufferSize = 64
)

// ResourceKind distinguishes the two dashboard scopes.
type ResourceKind string

// Supported resource kinds.
const (
	KindTrial  ResourceKind = "trial"
	KindFlight ResourceKind = "flight"
)

// Resource identifies one dashboard room.
type Resource struct {
	Kind ResourceKind
	ID   string
}

func (r Resource) key() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// Hub coordinates the dashboard rooms. Each connection belongs to
// exactly one room for its whole lifetime.
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu    sync.RWMutex
	rooms map[string]*room
}

// NewHub constructs a hub with same-origin and loopback origin checks.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				originHost := hostWithoutPort(origin)
				requestHost := hostWithoutPort(r.Host)
				return originHost == requestHost || isLoopback(originHost)
			},
		},
		log:   logger.WithModule("realtime"),
		rooms: make(map[string]*room),
	}
}

// Serve upgrades the request and joins the participant to the room for
// res under the authenticated user identity. It blocks until the
// connection closes. An empty user falls back to the connection id.
func (h *Hub) Serve(res Resource, user string, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	p := &participant{
		id:   uuid.NewString(),
		user: user,
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	if p.user == "" {
		p.user = p.id
	}

	rm, firstForUser := h.joinRoom(res, p)
	metrics.SessionConnections.WithLabelValues(string(res.Kind)).Inc()
	h.log.Debug("participant joined",
		zap.String("room", res.key()),
		zap.String("participant", p.id),
		zap.String("user", p.user))

	// A second tab of the same user extends an existing presence rather
	// than announcing a new one.
	if firstForUser {
		rm.broadcastExcept(p, wire.UserJoined{UserID: p.user})
	}

	go p.writeLoop()
	p.readLoop(rm)
}

// Participants returns the user ids currently in the room for res; used
// by monitoring.
func (h *Hub) Participants(res Resource) []string {
	h.mu.RLock()
	rm, ok := h.rooms[res.key()]
	h.mu.RUnlock()

	if !ok {
		return nil
	}
	return rm.users()
}

// joinRoom reports whether p is its user's first connection in the room.
func (h *Hub) joinRoom(res Resource, p *participant) (*room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[res.key()]
	if !ok {
		rm = newRoom(res)
		h.rooms[res.key()] = rm
	}
	return rm, rm.add(p)
}

func (h *Hub) leaveRoom(rm *room, p *participant) {
	empty, lastForUser := rm.remove(p)
	metrics.SessionConnections.WithLabelValues(string(rm.res.Kind)).Dec()

	if empty {
		h.mu.Lock()
		if current, ok := h.rooms[rm.res.key()]; ok && current == rm && current.empty() {
			delete(h.rooms, rm.res.key())
		}
		h.mu.Unlock()
	}

	if lastForUser {
		rm.broadcastExcept(nil, wire.UserLeft{UserID: p.user})
	}
}

func hostWithoutPort(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}

	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		parsed, err := http.NewRequest(http.MethodGet, host, nil)
		if err == nil {
			return hostWithoutPort(parsed.URL.Host)
		}
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	if ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}
