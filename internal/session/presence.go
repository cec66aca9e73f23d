package session

import (
	"sort"
	"sync"
)

// Tracker maintains the de-duplicated participant set and the subset of
// participants currently typing. It performs no I/O of its own; all
// mutations arrive from the router or from local UI events.
type Tracker struct {
	mu     sync.RWMutex
	users  map[string]struct{}
	typing map[string]struct{}
}

// NewTracker builds an empty presence tracker.
func NewTracker() *Tracker {
	return &Tracker{
		users:  make(map[string]struct{}),
		typing: make(map[string]struct{}),
	}
}

// Replace swaps the presence set wholesale, as delivered by a userList
// frame. Typing state for departed participants is discarded.
func (t *Tracker) Replace(ids []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.users = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		t.users[id] = struct{}{}
	}

	for id := range t.typing {
		if _, ok := t.users[id]; !ok {
			delete(t.typing, id)
		}
	}
}

// Add inserts a participant. Adding a present id is a no-op.
func (t *Tracker) Add(id string) {
	if id == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.users[id] = struct{}{}
}

// Remove deletes a participant and any typing state it held. Removing an
// absent id is a no-op.
func (t *Tracker) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.users, id)
	delete(t.typing, id)
}

// SetTyping records or clears the typing flag for a participant.
// Both directions are idempotent.
func (t *Tracker) SetTyping(id string, isTyping bool) {
	if id == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if isTyping {
		t.typing[id] = struct{}{}
		return
	}
	delete(t.typing, id)
}

// Users returns the current participants in sorted order.
func (t *Tracker) Users() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return sortedKeys(t.users)
}

// TypingUsers returns the participants currently typing in sorted order.
func (t *Tracker) TypingUsers() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return sortedKeys(t.typing)
}

// Contains reports whether the participant is present.
func (t *Tracker) Contains(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.users[id]
	return ok
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
