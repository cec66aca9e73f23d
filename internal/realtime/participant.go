package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/flightdeck-io/flightdeck/internal/wire"
	"github.com/flightdeck-io/flightdeck/pkg/metrics"
)

// participant is one websocket connection inside a room. id is assigned
// per connection for logging; user is the authenticated identity that
// presence and message stamping are keyed by, so a reconnect or a second
// tab resumes the same presence entry.
type participant struct {
	id   string
	user string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (p *participant) readLoop(rm *room) {
	defer p.close(rm, "abnormal")

	p.conn.SetReadLimit(maxMessageSize)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				p.close(rm, "normal")
				return
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				p.hub.log.Warn("unexpected close",
					zap.String("participant", p.id), zap.Error(err))
			}
			return
		}

		if len(payload) == 0 {
			continue
		}
		p.dispatch(rm, payload)
	}
}

// dispatch handles one inbound frame. Identity fields are always
// stamped server-side so a client cannot impersonate another
// participant.
func (p *participant) dispatch(rm *room, payload []byte) {
	msg, err := wire.Decode(payload)
	if err != nil {
		p.hub.log.Warn("dropping malformed frame",
			zap.String("participant", p.id), zap.Error(err))
		return
	}

	switch m := msg.(type) {
	case wire.GetUserList:
		p.reply(wire.UserList{Users: rm.users()})
	case wire.ChatMessage:
		m.UserID = p.user
		// Chat goes to the whole room so the author's own log and the
		// peers' logs append the same stamped message.
		rm.broadcastExcept(nil, m)
	case wire.Typing:
		m.UserID = p.user
		rm.broadcastExcept(p, m)
	case wire.ZoomUpdate:
		rm.broadcastExcept(p, m)
	case wire.Unknown:
		p.hub.log.Debug("ignoring unknown frame type",
			zap.String("type", string(m.Type)), zap.String("participant", p.id))
	default:
		// Server-originated types arriving from a client are ignored.
	}
}

func (p *participant) reply(msg wire.Message) {
	data, err := wire.Encode(msg)
	if err != nil {
		p.hub.log.Error("encode reply", zap.Error(err))
		return
	}
	metrics.SessionMessages.WithLabelValues(string(msg.MessageType())).Inc()
	p.enqueue(data)
}

// enqueue delivers bytes without blocking; a participant that cannot
// drain its buffer is dropped rather than stalling the room. Only the
// socket is severed here; enqueue runs under the room lock, so room
// cleanup is left to the read loop, which unblocks with an error.
func (p *participant) enqueue(data []byte) {
	select {
	case p.send <- data:
	default:
		p.hub.log.Warn("dropping backpressure participant", zap.String("participant", p.id))
		metrics.SessionDisconnects.WithLabelValues("backpressure").Inc()
		_ = p.conn.Close()
	}
}

func (p *participant) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = p.conn.Close()
	}()

	for {
		select {
		case data, ok := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (p *participant) close(rm *room, cause string) {
	p.once.Do(func() {
		p.hub.leaveRoom(rm, p)
		metrics.SessionDisconnects.WithLabelValues(cause).Inc()
		close(p.send)
		_ = p.conn.Close()
	})
}
