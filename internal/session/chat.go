package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/flightdeck-io/flightdeck/internal/cache"
	"github.com/flightdeck-io/flightdeck/pkg/logger"
)

const chatPersistTimeout = 2 * time.Second

// ChatEntry is one line of the session chat log as persisted and
// displayed: the author's participant id and the message text.
type ChatEntry struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// Notifier is invoked for messages that arrive while the chat panel is
// hidden or unfocused, typically to play a sound. Failures are swallowed.
type Notifier func() error

// ChatLog is the append-only ordered chat history for one dashboard
// resource. Every mutation is mirrored to the store under a key scoped
// by resource, and the log is hydrated from the store on construction.
//
// The unread counter approximates read state: it grows while the panel
// is hidden or not under pointer focus and resets when focus arrives.
type ChatLog struct {
	store  cache.Store
	key    string
	notify Notifier
	log    *zap.Logger

	mu      sync.Mutex
	entries []ChatEntry
	unread  int
	visible bool
	focused bool
}

// ChatKey derives the persistence key for a dashboard resource, keeping
// histories of distinct trials and flights separate.
func ChatKey(kind, id string) string {
	return fmt.Sprintf("session.chat.%s.%s", kind, id)
}

// NewChatLog builds a chat log backed by store under key. A nil store
// disables persistence. The log starts visible and unfocused, matching a
// freshly mounted dashboard.
func NewChatLog(store cache.Store, key string, notify Notifier) *ChatLog {
	l := &ChatLog{
		store:   store,
		key:     key,
		notify:  notify,
		log:     logger.WithModule("session.chat"),
		visible: true,
	}
	l.hydrate()
	return l
}

// AppendRemote records a message that arrived over the wire, bumping the
// unread counter and firing the notifier when the panel is not watched.
func (l *ChatLog) AppendRemote(entry ChatEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	watched := l.visible && l.focused
	if !watched {
		l.unread++
	}
	l.persistLocked()
	l.mu.Unlock()

	if !watched {
		l.fireNotifier()
	}
}

// Entries returns a copy of the log in arrival order.
func (l *ChatLog) Entries() []ChatEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]ChatEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Unread returns the current unread counter.
func (l *ChatLog) Unread() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unread
}

// SetVisible records whether the chat panel is shown.
func (l *ChatLog) SetVisible(visible bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visible = visible
}

// Focus marks the panel as under pointer focus and clears the unread
// counter, regardless of how high it grew.
func (l *ChatLog) Focus() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.focused = true
	l.unread = 0
}

// Blur clears pointer focus; subsequent arrivals count as unread again.
func (l *ChatLog) Blur() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.focused = false
}

func (l *ChatLog) hydrate() {
	if l.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), chatPersistTimeout)
	defer cancel()

	data, ok, err := l.store.Get(ctx, l.key)
	if err != nil {
		l.log.Warn("chat history load failed", zap.String("key", l.key), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var entries []ChatEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		l.log.Warn("chat history corrupt; starting empty", zap.String("key", l.key), zap.Error(err))
		return
	}
	l.entries = entries
}

func (l *ChatLog) persistLocked() {
	if l.store == nil {
		return
	}

	data, err := json.Marshal(l.entries)
	if err != nil {
		l.log.Warn("chat history encode failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), chatPersistTimeout)
	defer cancel()

	if err := l.store.Set(ctx, l.key, data, 0); err != nil {
		l.log.Warn("chat history save failed", zap.String("key", l.key), zap.Error(err))
	}
}

// fireNotifier runs the notification callback, swallowing both errors
// and panics: a broken sound device must never take down the session.
func (l *ChatLog) fireNotifier() {
	if l.notify == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			l.log.Debug("notifier panicked", zap.Any("cause", r))
		}
	}()

	if err := l.notify(); err != nil {
		l.log.Debug("notifier failed", zap.Error(err))
	}
}
