package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConstantNeverGivesUp(t *testing.T) {
	p := Constant(time.Second)
	for attempt := 1; attempt <= 100; attempt += 33 {
		delay, ok := p.Next(attempt)
		require.True(t, ok)
		require.Equal(t, time.Second, delay)
	}
}

func TestExponentialDoublesUpToCap(t *testing.T) {
	p := Exponential{Base: 100 * time.Millisecond, Max: time.Second}

	expected := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for i, want := range expected {
		delay, ok := p.Next(i + 1)
		require.True(t, ok)
		require.Equal(t, want, delay, "attempt %d", i+1)
	}
}

func TestWithMaxAttemptsStops(t *testing.T) {
	p := WithMaxAttempts(Constant(time.Second), 3)

	_, ok := p.Next(3)
	require.True(t, ok)
	_, ok = p.Next(4)
	require.False(t, ok)
}

func TestWithJitterStaysWithinSpread(t *testing.T) {
	p := WithJitter(Constant(time.Second), 0.5)

	for i := 0; i < 50; i++ {
		delay, ok := p.Next(1)
		require.True(t, ok)
		require.GreaterOrEqual(t, delay, 500*time.Millisecond)
		require.LessOrEqual(t, delay, 1500*time.Millisecond)
	}
}
