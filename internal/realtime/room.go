package realtime

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/flightdeck-io/flightdeck/internal/wire"
	"github.com/flightdeck-io/flightdeck/pkg/logger"
	"github.com/flightdeck-io/flightdeck/pkg/metrics"
)

// room fans frames out between the participants of one dashboard.
type room struct {
	res Resource
	log *zap.Logger

	mu           sync.RWMutex
	participants map[*participant]struct{}
}

func newRoom(res Resource) *room {
	return &room{
		res:          res,
		log:          logger.WithModule("realtime.room"),
		participants: make(map[*participant]struct{}),
	}
}

// add reports whether p is the first connection for its user.
func (r *room) add(p *participant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants[p] = struct{}{}
	return r.userConnectionsLocked(p.user) == 1
}

// remove reports whether the room became empty and whether p was its
// user's last connection.
func (r *room) remove(p *participant) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.participants, p)
	return len(r.participants) == 0, r.userConnectionsLocked(p.user) == 0
}

func (r *room) empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants) == 0
}

func (r *room) userConnectionsLocked(user string) int {
	n := 0
	for p := range r.participants {
		if p.user == user {
			n++
		}
	}
	return n
}

// users returns the distinct user ids present in the room, sorted.
func (r *room) users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.participants))
	ids := make([]string, 0, len(r.participants))
	for p := range r.participants {
		if _, dup := seen[p.user]; dup {
			continue
		}
		seen[p.user] = struct{}{}
		ids = append(ids, p.user)
	}
	sort.Strings(ids)
	return ids
}

// broadcastExcept relays a message to every participant other than skip.
// Pass a nil skip to reach the whole room.
func (r *room) broadcastExcept(skip *participant, msg wire.Message) {
	data, err := wire.Encode(msg)
	if err != nil {
		r.log.Error("encode broadcast", zap.Error(err))
		return
	}
	metrics.SessionMessages.WithLabelValues(string(msg.MessageType())).Inc()

	r.mu.RLock()
	defer r.mu.RUnlock()

	for p := range r.participants {
		if p == skip {
			continue
		}
		p.enqueue(data)
	}
}
