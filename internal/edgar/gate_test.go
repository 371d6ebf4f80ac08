package edgar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock advances only when slept on, recording every sleep.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestGateFirstRequestDoesNotSleep(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1000, 0)}
	g := newGate(100*time.Millisecond, clk)

	require.NoError(t, g.wait(context.Background()))
	require.Empty(t, clk.sleeps)
}

func TestGateSleepsRemainder(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1000, 0)}
	g := newGate(100*time.Millisecond, clk)

	require.NoError(t, g.wait(context.Background()))
	g.stamp()

	clk.advance(30 * time.Millisecond)
	require.NoError(t, g.wait(context.Background()))
	require.Equal(t, []time.Duration{70 * time.Millisecond}, clk.sleeps)
}

func TestGateNoSleepAfterInterval(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1000, 0)}
	g := newGate(100*time.Millisecond, clk)

	require.NoError(t, g.wait(context.Background()))
	g.stamp()

	clk.advance(150 * time.Millisecond)
	require.NoError(t, g.wait(context.Background()))
	require.Empty(t, clk.sleeps)
}

func TestGateStampOnFailureStillThrottles(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1000, 0)}
	g := newGate(100*time.Millisecond, clk)

	// Simulate a failed attempt: wait then stamp, exactly what the client
	// does regardless of outcome.
	require.NoError(t, g.wait(context.Background()))
	g.stamp()
	require.NoError(t, g.wait(context.Background()))
	require.Equal(t, []time.Duration{100 * time.Millisecond}, clk.sleeps)
}

func TestGateCanceledContext(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1000, 0)}
	g := newGate(100*time.Millisecond, clk)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, g.wait(ctx))
}
