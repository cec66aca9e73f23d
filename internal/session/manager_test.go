package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/flightdeck-io/flightdeck/internal/session/backoff"
	"github.com/flightdeck-io/flightdeck/internal/wire"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// newWSServer runs handler for every websocket connection and counts
// how many connections the client established.
func newWSServer(t *testing.T, handler func(conn *websocket.Conn)) (string, *atomic.Int32) {
	t.Helper()

	var dials atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		dials.Add(1)
		handler(conn)
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), &dials
}

func stateRecorder() (func(State), chan State) {
	states := make(chan State, 64)
	return func(s State) {
		select {
		case states <- s:
		default:
		}
	}, states
}

func waitForState(t *testing.T, states chan State, want State) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-states:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", want)
		}
	}
}

func TestNewManagerRequiresCredentialAndOneResource(t *testing.T) {
	onFrame := func([]byte) {}

	_, err := NewManager(Config{Endpoint: "ws://x", TrialID: "t1", OnFrame: onFrame})
	require.ErrorIs(t, err, ErrNotAuthorized)

	_, err = NewManager(Config{Endpoint: "ws://x", Token: "tok", OnFrame: onFrame})
	require.ErrorIs(t, err, ErrNotAuthorized)

	_, err = NewManager(Config{Endpoint: "ws://x", Token: "tok", TrialID: "t1", FlightID: "f1", OnFrame: onFrame})
	require.ErrorIs(t, err, ErrNotAuthorized)

	m, err := NewManager(Config{Endpoint: "ws://x", Token: "tok", FlightID: "f1", OnFrame: onFrame})
	require.NoError(t, err)
	require.Equal(t, StateDisconnected, m.State())
}

func TestManagerSendsGetUserListOnOpen(t *testing.T) {
	frames := make(chan wire.Message, 8)
	url, _ := newWSServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := wire.Decode(data)
		if err != nil {
			return
		}
		frames <- msg
	})

	onState, states := stateRecorder()
	m, err := NewManager(Config{
		Endpoint: url,
		Token:    "tok",
		TrialID:  "t1",
		OnFrame:  func([]byte) {},
		OnState:  onState,
	})
	require.NoError(t, err)
	defer m.Close()

	m.Connect()
	waitForState(t, states, StateOpen)

	select {
	case msg := <-frames:
		require.Equal(t, wire.TypeGetUserList, msg.MessageType())
	case <-time.After(2 * time.Second):
		t.Fatal("server never received getUserList")
	}
}

func TestManagerReconnectsOnAbnormalClose(t *testing.T) {
	url, dials := newWSServer(t, func(conn *websocket.Conn) {
		// Drop the TCP connection without a close frame; the client
		// observes this as an abnormal closure (1006).
		conn.Close()
	})

	m, err := NewManager(Config{
		Endpoint: url,
		Token:    "tok",
		FlightID: "f1",
		OnFrame:  func([]byte) {},
		Backoff:  backoff.Constant(30 * time.Millisecond),
	})
	require.NoError(t, err)
	defer m.Close()

	m.Connect()

	require.Eventually(t, func() bool { return dials.Load() >= 3 },
		2*time.Second, 10*time.Millisecond,
		"abnormal closures should keep scheduling reconnects")
}

func TestManagerNormalCloseIsTerminal(t *testing.T) {
	url, dials := newWSServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"), deadline)
		// Give the client a moment to read the close frame.
		_, _, _ = conn.ReadMessage()
	})

	onState, states := stateRecorder()
	m, err := NewManager(Config{
		Endpoint: url,
		Token:    "tok",
		TrialID:  "t1",
		OnFrame:  func([]byte) {},
		OnState:  onState,
		Backoff:  backoff.Constant(30 * time.Millisecond),
	})
	require.NoError(t, err)
	defer m.Close()

	m.Connect()
	waitForState(t, states, StateClosed)

	// No retry should ever fire after an intentional closure.
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(1), dials.Load())
	require.Equal(t, StateClosed, m.State())
}

func TestManagerCloseCancelsPendingReconnect(t *testing.T) {
	url, dials := newWSServer(t, func(conn *websocket.Conn) {
		conn.Close()
	})

	onState, states := stateRecorder()
	m, err := NewManager(Config{
		Endpoint: url,
		Token:    "tok",
		TrialID:  "t1",
		OnFrame:  func([]byte) {},
		OnState:  onState,
		Backoff:  backoff.Constant(250 * time.Millisecond),
	})
	require.NoError(t, err)

	m.Connect()
	waitForState(t, states, StateClosed)

	// Tear down while the retry timer is pending.
	m.Close()
	time.Sleep(500 * time.Millisecond)

	require.Equal(t, int32(1), dials.Load(), "cancelled timer must not dial again")
	require.Equal(t, StateDisconnected, m.State())
}

func TestManagerSendWhileNotOpenIsDropped(t *testing.T) {
	m, err := NewManager(Config{
		Endpoint: "ws://127.0.0.1:1/ws",
		Token:    "tok",
		TrialID:  "t1",
		OnFrame:  func([]byte) {},
	})
	require.NoError(t, err)

	require.NotPanics(t, func() {
		m.Send(wire.ChatMessage{Message: "nobody hears this"})
	})
}

func TestManagerDeliversFramesInOrder(t *testing.T) {
	url, _ := newWSServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		for _, text := range []string{"M1", "M2", "M3"} {
			data, err := wire.Encode(wire.ChatMessage{UserID: "peer", Message: text})
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_, _, _ = conn.ReadMessage()
	})

	received := make(chan string, 8)
	m, err := NewManager(Config{
		Endpoint: url,
		Token:    "tok",
		FlightID: "f1",
		OnFrame: func(data []byte) {
			msg, err := wire.Decode(data)
			if err != nil {
				return
			}
			if chat, ok := msg.(wire.ChatMessage); ok {
				received <- chat.Message
			}
		},
	})
	require.NoError(t, err)
	defer m.Close()

	m.Connect()

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case text := <-received:
			got = append(got, text)
		case <-timeout:
			t.Fatalf("only received %v", got)
		}
	}
	require.Equal(t, []string{"M1", "M2", "M3"}, got)
}

func TestManagerSendReachesServerWhenOpen(t *testing.T) {
	frames := make(chan wire.Message, 8)
	url, _ := newWSServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msg, err := wire.Decode(data); err == nil {
				frames <- msg
			}
		}
	})

	onState, states := stateRecorder()
	m, err := NewManager(Config{
		Endpoint: url,
		Token:    "tok",
		TrialID:  "t1",
		OnFrame:  func([]byte) {},
		OnState:  onState,
	})
	require.NoError(t, err)
	defer m.Close()

	m.Connect()
	waitForState(t, states, StateOpen)

	m.Send(wire.Typing{IsTyping: true})

	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-frames:
			if typing, ok := msg.(wire.Typing); ok {
				require.True(t, typing.IsTyping)
				return
			}
		case <-timeout:
			t.Fatal("typing frame never arrived")
		}
	}
}
