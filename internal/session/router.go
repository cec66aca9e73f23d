package session

import (
	"go.uber.org/zap"

	"github.com/flightdeck-io/flightdeck/internal/wire"
	"github.com/flightdeck-io/flightdeck/pkg/logger"
)

// Router decodes inbound frames and dispatches them to the presence
// tracker, chat log, and viewport sync. It is the only reader of the
// connection manager's inbound stream.
type Router struct {
	presence *Tracker
	chat     *ChatLog
	viewport *ViewportSync
	log      *zap.Logger
}

// NewRouter wires the three state components behind one dispatch point.
func NewRouter(presence *Tracker, chat *ChatLog, viewport *ViewportSync) *Router {
	return &Router{
		presence: presence,
		chat:     chat,
		viewport: viewport,
		log:      logger.WithModule("session.router"),
	}
}

// HandleFrame processes one raw inbound frame. Malformed frames are
// dropped with a diagnostic so one bad payload cannot kill the stream;
// unknown discriminators are skipped for forward compatibility.
func (r *Router) HandleFrame(data []byte) {
	msg, err := wire.Decode(data)
	if err != nil {
		r.log.Warn("dropping malformed frame", zap.Error(err))
		return
	}

	switch m := msg.(type) {
	case wire.UserList:
		r.presence.Replace(m.Users)
	case wire.UserJoined:
		r.presence.Add(m.UserID)
	case wire.UserLeft:
		r.presence.Remove(m.UserID)
	case wire.ChatMessage:
		r.chat.AppendRemote(ChatEntry{UserID: m.UserID, Message: m.Message})
	case wire.Typing:
		r.presence.SetTyping(m.UserID, m.IsTyping)
	case wire.ZoomUpdate:
		r.viewport.HandleRemote(m)
	case wire.Unknown:
		r.log.Debug("skipping unknown frame type", zap.String("type", string(m.Type)))
	default:
		// Server-bound requests (getUserList) have no client-side effect.
	}
}
