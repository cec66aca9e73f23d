package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackerAddIsIdempotent(t *testing.T) {
	tr := NewTracker()

	tr.Add("user-1")
	tr.Add("user-1")
	tr.Add("user-2")

	require.Equal(t, []string{"user-1", "user-2"}, tr.Users())
}

func TestTrackerRemoveAbsentIsNoOp(t *testing.T) {
	tr := NewTracker()
	tr.Add("user-1")

	tr.Remove("ghost")
	tr.Remove("ghost")

	require.Equal(t, []string{"user-1"}, tr.Users())
}

func TestTrackerRemoveClearsTypingState(t *testing.T) {
	tr := NewTracker()
	tr.Add("user-1")
	tr.Add("user-2")
	tr.SetTyping("user-2", true)

	// user-2 leaves without ever signalling not-typing.
	tr.Remove("user-2")

	require.Equal(t, []string{"user-1"}, tr.Users())
	require.Empty(t, tr.TypingUsers())
}

func TestTrackerSetTypingIdempotentBothWays(t *testing.T) {
	tr := NewTracker()
	tr.Add("user-1")

	tr.SetTyping("user-1", true)
	tr.SetTyping("user-1", true)
	require.Equal(t, []string{"user-1"}, tr.TypingUsers())

	tr.SetTyping("user-1", false)
	tr.SetTyping("user-1", false)
	require.Empty(t, tr.TypingUsers())
}

func TestTrackerReplaceDropsStaleTyping(t *testing.T) {
	tr := NewTracker()
	tr.Replace([]string{"a", "b", "c"})
	tr.SetTyping("b", true)
	tr.SetTyping("c", true)

	tr.Replace([]string{"a", "c"})

	require.Equal(t, []string{"a", "c"}, tr.Users())
	require.Equal(t, []string{"c"}, tr.TypingUsers())
}

func TestTrackerIgnoresEmptyIDs(t *testing.T) {
	tr := NewTracker()
	tr.Add("")
	tr.Replace([]string{"", "x"})

	require.Equal(t, []string{"x"}, tr.Users())
}
