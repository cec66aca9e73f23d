// Package session implements the client side of the collaborative
// dashboard: a managed websocket connection plus the presence, chat,
// and viewport state that it synchronises.
package session

import (
	"time"

	"github.com/flightdeck-io/flightdeck/internal/cache"
	"github.com/flightdeck-io/flightdeck/internal/session/backoff"
	"github.com/flightdeck-io/flightdeck/internal/wire"
)

// Options configures a Session.
type Options struct {
	// Endpoint is the realtime server websocket URL.
	Endpoint string
	// Token is the bearer credential.
	Token string
	// Exactly one of TrialID / FlightID identifies the dashboard.
	TrialID  string
	FlightID string

	// Store persists chat history across sessions. Optional.
	Store cache.Store
	// Notifier plays the new-message cue. Optional, best effort.
	Notifier Notifier
	// DebounceWindow tunes viewport coalescing; zero means 500ms.
	DebounceWindow time.Duration
	// Backoff tunes reconnection; nil means constant one second.
	Backoff backoff.Policy
	// OnState observes connection lifecycle transitions. Optional.
	OnState func(State)
}

// Session bundles one dashboard's connection manager, router, and state
// components. Create it when the dashboard mounts and Close it when the
// dashboard unmounts or navigates to a different resource.
type Session struct {
	manager  *Manager
	router   *Router
	presence *Tracker
	chat     *ChatLog
	viewport *ViewportSync
}

// New assembles a session. It returns ErrNotAuthorized when the token
// or resource identifier is missing, in which case the caller should
// redirect to login instead of mounting the dashboard.
func New(opts Options) (*Session, error) {
	kind, id := "flight", opts.FlightID
	if opts.TrialID != "" {
		kind, id = "trial", opts.TrialID
	}

	presence := NewTracker()
	chat := NewChatLog(opts.Store, ChatKey(kind, id), opts.Notifier)

	s := &Session{
		presence: presence,
		chat:     chat,
	}

	// The viewport broadcasts through the manager; the manager routes
	// inbound frames back to the components. Wire the cycle through the
	// session so neither package depends on the other's internals.
	s.viewport = NewViewportSync(func(msg wire.Message) { s.manager.Send(msg) }, opts.DebounceWindow)
	s.router = NewRouter(presence, chat, s.viewport)

	manager, err := NewManager(Config{
		Endpoint: opts.Endpoint,
		Token:    opts.Token,
		TrialID:  opts.TrialID,
		FlightID: opts.FlightID,
		OnFrame:  s.router.HandleFrame,
		OnState:  opts.OnState,
		Backoff:  opts.Backoff,
	})
	if err != nil {
		s.viewport.Stop()
		return nil, err
	}
	s.manager = manager

	return s, nil
}

// Connect starts the transport.
func (s *Session) Connect() { s.manager.Connect() }

// State reports the connection state.
func (s *Session) State() State { return s.manager.State() }

// Close tears down the transport and cancels every pending timer.
func (s *Session) Close() {
	s.viewport.Stop()
	s.manager.Close()
}

// SendChat broadcasts a chat line and clears the local typing signal.
func (s *Session) SendChat(text string) {
	if text == "" {
		return
	}
	s.manager.Send(wire.ChatMessage{Message: text})
	s.manager.Send(wire.Typing{IsTyping: false})
}

// SetTyping broadcasts the local typing state.
func (s *Session) SetTyping(isTyping bool) {
	s.manager.Send(wire.Typing{IsTyping: isTyping})
}

// RegisterChart attaches a rendered chart so peer viewport updates can
// reach it.
func (s *Session) RegisterChart(chartID string, chart Chart) {
	s.viewport.Register(chartID, chart)
}

// UnregisterChart detaches a chart on unmount.
func (s *Session) UnregisterChart(chartID string) {
	s.viewport.Unregister(chartID)
}

// LocalZoom reports a local pan/zoom completion for broadcast.
func (s *Session) LocalZoom(chartID string, min, max float64) {
	s.viewport.LocalZoom(chartID, min, max)
}

// Presence exposes the participant tracker.
func (s *Session) Presence() *Tracker { return s.presence }

// Chat exposes the chat log.
func (s *Session) Chat() *ChatLog { return s.chat }
