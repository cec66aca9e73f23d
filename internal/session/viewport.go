package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flightdeck-io/flightdeck/internal/wire"
	"github.com/flightdeck-io/flightdeck/pkg/logger"
)

// Chart is the handle the viewport sync drives when a peer update
// arrives. Implementations apply the bounds to their rendered x axis.
type Chart interface {
	ApplyTimeRange(min, max float64)
}

// SendFunc delivers an outbound message to the connection manager.
type SendFunc func(wire.Message)

// ViewportSync keeps the time-axis bounds of the dashboard charts in
// step across participants. Both directions are debounced per chartId
// with the same quiet period, so bursts of wheel events collapse into a
// single broadcast and a flood of peer updates into a single repaint.
//
// Every outbound update carries this instance's origin marker; inbound
// updates bearing the same marker are reflections of our own change
// coming back through a peer and are discarded.
type ViewportSync struct {
	origin   string
	send     SendFunc
	outbound *Debouncer
	inbound  *Debouncer
	log      *zap.Logger

	mu     sync.RWMutex
	charts map[string]Chart
}

// NewViewportSync builds a viewport synchroniser emitting through send.
// window is the debounce quiet period; zero selects the default 500ms.
func NewViewportSync(send SendFunc, window time.Duration) *ViewportSync {
	return &ViewportSync{
		origin:   uuid.NewString(),
		send:     send,
		outbound: NewDebouncer(window),
		inbound:  NewDebouncer(window),
		log:      logger.WithModule("session.viewport"),
		charts:   make(map[string]Chart),
	}
}

// Origin returns the local origin marker.
func (v *ViewportSync) Origin() string {
	return v.origin
}

// Register attaches the rendered chart handle for chartID.
func (v *ViewportSync) Register(chartID string, chart Chart) {
	if chartID == "" || chart == nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.charts[chartID] = chart
}

// Unregister detaches the chart handle; pending inbound updates for it
// will be dropped at apply time.
func (v *ViewportSync) Unregister(chartID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.charts, chartID)
}

// LocalZoom notes a local pan/zoom completion for chartID. After the
// quiet period the latest bounds are broadcast; earlier bursts for the
// same chart are superseded. Bounds for other charts are unaffected.
func (v *ViewportSync) LocalZoom(chartID string, min, max float64) {
	if chartID == "" {
		return
	}

	v.outbound.Call(chartID, func() {
		if v.send == nil {
			return
		}
		v.send(wire.ZoomUpdate{
			ChartID: chartID,
			Min:     min,
			Max:     max,
			Origin:  v.origin,
		})
	})
}

// HandleRemote applies a peer's zoom update to the matching registered
// chart after the quiet period. Updates that originated here are
// reflections and are dropped immediately.
func (v *ViewportSync) HandleRemote(update wire.ZoomUpdate) {
	if update.ChartID == "" {
		return
	}
	if update.Origin != "" && update.Origin == v.origin {
		v.log.Debug("ignoring reflected viewport update", zap.String("chart", update.ChartID))
		return
	}

	v.inbound.Call(update.ChartID, func() {
		v.mu.RLock()
		chart, ok := v.charts[update.ChartID]
		v.mu.RUnlock()

		if !ok {
			v.log.Debug("viewport update for unmounted chart dropped", zap.String("chart", update.ChartID))
			return
		}
		chart.ApplyTimeRange(update.Min, update.Max)
	})
}

// Stop cancels all pending debounce timers. Called on dashboard unmount.
func (v *ViewportSync) Stop() {
	v.outbound.Stop()
	v.inbound.Stop()
}
