package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testWindow = 50 * time.Millisecond

func TestDebouncerCoalescesBurstToLatestCall(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Stop()

	var mu sync.Mutex
	var fired []int

	// Burst of three updates for the same chart; only the last survives.
	for _, max := range []int{10, 20, 30} {
		max := max
		d.Call("altitude", func() {
			mu.Lock()
			fired = append(fired, max)
			mu.Unlock()
		})
		time.Sleep(testWindow / 5)
	}

	time.Sleep(3 * testWindow)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{30}, fired)
}

func TestDebouncerKeysAreIndependent(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Stop()

	var altitude, speed atomic.Int32

	for i := 0; i < 3; i++ {
		d.Call("altitude", func() { altitude.Add(1) })
		d.Call("speed", func() { speed.Add(1) })
		time.Sleep(testWindow / 5)
	}

	time.Sleep(3 * testWindow)

	require.Equal(t, int32(1), altitude.Load())
	require.Equal(t, int32(1), speed.Load())
}

func TestDebouncerCancelDropsPendingCall(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Stop()

	var fired atomic.Int32
	d.Call("gyro", func() { fired.Add(1) })
	d.Cancel("gyro")

	time.Sleep(3 * testWindow)
	require.Equal(t, int32(0), fired.Load())
}

func TestDebouncerStopMidWindowNeverFires(t *testing.T) {
	d := NewDebouncer(testWindow)

	var fired atomic.Int32
	d.Call("altitude", func() { fired.Add(1) })

	time.Sleep(testWindow / 5)
	d.Stop()

	time.Sleep(3 * testWindow)
	require.Equal(t, int32(0), fired.Load())
}

func TestDebouncerRejectsCallsAfterStop(t *testing.T) {
	d := NewDebouncer(testWindow)
	d.Stop()

	var fired atomic.Int32
	d.Call("speed", func() { fired.Add(1) })

	time.Sleep(3 * testWindow)
	require.Equal(t, int32(0), fired.Load())
}
