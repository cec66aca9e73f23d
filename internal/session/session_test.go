package session

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/flightdeck-io/flightdeck/internal/cache"
	"github.com/flightdeck-io/flightdeck/internal/wire"
)

func TestNewSessionRejectsMissingCredential(t *testing.T) {
	_, err := New(Options{Endpoint: "ws://x", TrialID: "t1"})
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestSessionEndToEndAgainstScriptedServer(t *testing.T) {
	url, _ := newWSServer(t, func(conn *websocket.Conn) {
		defer conn.Close()

		// Expect the initial getUserList, then play a short scenario.
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msg, err := wire.Decode(data); err != nil || msg.MessageType() != wire.TypeGetUserList {
			return
		}

		script := []wire.Message{
			wire.UserList{Users: []string{"self", "peer"}},
			wire.Typing{UserID: "peer", IsTyping: true},
			wire.ChatMessage{UserID: "peer", Message: "bank angle looks high"},
			wire.Typing{UserID: "peer", IsTyping: false},
			wire.ZoomUpdate{ChartID: "altitude", Min: 10, Max: 40, Origin: "peer-origin"},
		}
		for _, msg := range script {
			payload, err := wire.Encode(msg)
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}

		// Keep the connection open until the client closes it.
		_, _, _ = conn.ReadMessage()
	})

	store := cache.NewMemoryStore()
	states := make(chan State, 16)
	s, err := New(Options{
		Endpoint:       url,
		Token:          "tok",
		TrialID:        "trial-9",
		Store:          store,
		DebounceWindow: testWindow,
		OnState: func(st State) {
			select {
			case states <- st:
			default:
			}
		},
	})
	require.NoError(t, err)
	defer s.Close()

	chart := &fakeChart{}
	s.RegisterChart("altitude", chart)

	s.Connect()
	waitForState(t, states, StateOpen)

	require.Eventually(t, func() bool {
		return len(s.Chat().Entries()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, []string{"peer", "self"}, s.Presence().Users())
	require.Empty(t, s.Presence().TypingUsers(), "peer stopped typing")
	require.Equal(t, "bank angle looks high", s.Chat().Entries()[0].Message)

	require.Eventually(t, func() bool {
		return len(chart.ranges()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, [2]float64{10, 40}, chart.ranges()[0])

	// History for this trial survives into the next session.
	s.Close()
	reloaded := NewChatLog(store, ChatKey("trial", "trial-9"), nil)
	require.Len(t, reloaded.Entries(), 1)
}
