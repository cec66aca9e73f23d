package session

import (
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/flightdeck-io/flightdeck/internal/session/backoff"
	"github.com/flightdeck-io/flightdeck/internal/wire"
	"github.com/flightdeck-io/flightdeck/pkg/logger"
)

// ErrNotAuthorized is returned when a session is created without a
// bearer token or without exactly one resource identifier. The caller
// is expected to redirect to credential acquisition.
var ErrNotAuthorized = errors.New("session: token and exactly one of trial or flight id required")

// State enumerates the connection manager lifecycle.
type State int32

// Connection manager states.
const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const defaultWriteTimeout = 10 * time.Second

// Config parameterises a connection manager.
type Config struct {
	// Endpoint is the websocket URL of the realtime server, without
	// query parameters, e.g. "ws://localhost:8080/ws".
	Endpoint string
	// Token is the bearer credential passed as a query parameter.
	Token string
	// Exactly one of TrialID / FlightID scopes the session.
	TrialID  string
	FlightID string

	// OnFrame receives every inbound frame; dispatch is synchronous in
	// transport delivery order. Required.
	OnFrame func(data []byte)
	// OnState observes lifecycle transitions. Optional. The hook must
	// not call back into the Manager.
	OnState func(State)

	// Backoff controls reconnection delays. Defaults to a constant one
	// second, matching the original dashboard.
	Backoff backoff.Policy
	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
	// WriteTimeout bounds each outbound write. Defaults to 10s.
	WriteTimeout time.Duration
}

// Manager owns the websocket connection for one mounted dashboard. It
// is the single chokepoint between the UI-facing components and the
// transport: nothing else may open, write to, or close the socket.
//
// Lifecycle: Disconnected -> Connecting -> Open -> Closed, with Closed
// -> Connecting on abnormal closure and Closed terminal after a normal
// close (code 1000). Close tears the manager down from any state.
type Manager struct {
	cfg     Config
	url     string
	policy  backoff.Policy
	dialer  *websocket.Dialer
	timeout time.Duration
	log     *zap.Logger

	mu       sync.Mutex
	state    State
	conn     *websocket.Conn
	retry    *time.Timer
	attempts int
	done     bool
}

// NewManager validates the session parameters and builds a manager in
// the Disconnected state. It performs no network I/O.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Token == "" {
		return nil, ErrNotAuthorized
	}
	if (cfg.TrialID == "") == (cfg.FlightID == "") {
		return nil, ErrNotAuthorized
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("session: endpoint is required")
	}
	if cfg.OnFrame == nil {
		return nil, errors.New("session: frame handler is required")
	}

	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, errors.New("session: invalid endpoint")
	}

	query := endpoint.Query()
	query.Set("token", cfg.Token)
	if cfg.TrialID != "" {
		query.Set("trialId", cfg.TrialID)
	} else {
		query.Set("flightId", cfg.FlightID)
	}
	endpoint.RawQuery = query.Encode()

	policy := cfg.Backoff
	if policy == nil {
		policy = backoff.Constant(time.Second)
	}

	dialer := cfg.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	return &Manager{
		cfg:     cfg,
		url:     endpoint.String(),
		policy:  policy,
		dialer:  dialer,
		timeout: timeout,
		log:     logger.WithModule("session.manager"),
		state:   StateDisconnected,
	}, nil
}

// Connect starts the connection attempt. It returns immediately; state
// transitions are observable via State and the OnState hook.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.done || m.state == StateConnecting || m.state == StateOpen {
		m.mu.Unlock()
		return
	}
	m.state = StateConnecting
	m.mu.Unlock()

	m.notify(StateConnecting)
	go m.dial()
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Send delivers a message if the connection is Open. Otherwise the
// message is dropped with a diagnostic: the session contract is
// fire-and-forget, so callers get no error to handle.
func (m *Manager) Send(msg wire.Message) {
	data, err := wire.Encode(msg)
	if err != nil {
		m.log.Error("encode outbound message", zap.Error(err))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateOpen || m.conn == nil {
		m.log.Warn("send dropped; connection not open",
			zap.String("type", string(msg.MessageType())),
			zap.String("state", m.state.String()))
		return
	}

	_ = m.conn.SetWriteDeadline(time.Now().Add(m.timeout))
	if err := m.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		// A write failure is logged but does not drive the state
		// machine; reconnection is triggered by the close event alone.
		m.log.Error("write failed", zap.Error(err))
	}
}

// Close tears the session down: it cancels any pending reconnect timer,
// closes the socket with a normal-closure code so peers do not observe
// an abnormal drop, and leaves the manager Disconnected. Idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return
	}
	m.done = true

	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}

	conn := m.conn
	m.conn = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	if conn != nil {
		deadline := time.Now().Add(m.timeout)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = conn.Close()
	}

	m.notify(StateDisconnected)
}

func (m *Manager) dial() {
	conn, resp, err := m.dialer.Dial(m.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		// Handshake failures surface to the state machine as an
		// abnormal closure of a connection that never opened.
		m.log.Error("dial failed", zap.Error(err))
		m.transitionClosed(websocket.CloseAbnormalClosure)
		return
	}

	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		_ = conn.Close()
		return
	}
	m.conn = conn
	m.attempts = 0
	m.state = StateOpen
	m.mu.Unlock()

	m.notify(StateOpen)
	m.log.Debug("connection open", zap.String("url", m.cfg.Endpoint))

	// Ask for the participant list as soon as the session opens.
	m.Send(wire.GetUserList{})

	m.readLoop(conn)
}

func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.handleClose(err)
			return
		}
		m.cfg.OnFrame(data)
	}
}

func (m *Manager) handleClose(err error) {
	code := websocket.CloseAbnormalClosure
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		code = closeErr.Code
	}

	m.log.Warn("connection closed", zap.Int("code", code), zap.Error(err))
	m.transitionClosed(code)
}

// transitionClosed moves the machine to Closed and, unless the closure
// was intentional (code 1000) or the manager is being torn down,
// schedules a single reconnection attempt.
func (m *Manager) transitionClosed(code int) {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.state = StateClosed

	if code == websocket.CloseNormalClosure {
		m.mu.Unlock()
		m.notify(StateClosed)
		m.log.Debug("normal closure; not reconnecting")
		return
	}

	m.attempts++
	delay, ok := m.policy.Next(m.attempts)
	if !ok {
		m.mu.Unlock()
		m.notify(StateClosed)
		m.log.Warn("reconnect attempts exhausted", zap.Int("attempts", m.attempts))
		return
	}

	m.retry = time.AfterFunc(delay, m.reconnect)
	attempt := m.attempts
	m.mu.Unlock()

	m.notify(StateClosed)
	m.log.Debug("reconnect scheduled",
		zap.Int("attempt", attempt),
		zap.Duration("delay", delay))
}

func (m *Manager) reconnect() {
	m.mu.Lock()
	if m.done || m.state != StateClosed {
		m.mu.Unlock()
		return
	}
	m.retry = nil
	m.state = StateConnecting
	m.mu.Unlock()

	m.notify(StateConnecting)
	m.dial()
}

func (m *Manager) notify(s State) {
	if m.cfg.OnState != nil {
		m.cfg.OnState(s)
	}
}
