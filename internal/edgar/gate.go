package edgar

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time for the request gate so tests can run without real
// sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// gate enforces a minimum interval between outbound requests. The timestamp
// is updated after every attempt, success or failure, so a failing endpoint
// cannot be hammered faster than the interval. The mutex keeps the guarantee
// global if the client is ever shared across goroutines.
type gate struct {
	mu       sync.Mutex
	interval time.Duration
	clock    Clock
	last     time.Time
}

func newGate(interval time.Duration, clock Clock) *gate {
	return &gate{interval: interval, clock: clock}
}

// wait blocks until the minimum interval since the previous stamp has
// elapsed.
func (g *gate) wait(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if g.last.IsZero() || g.interval <= 0 {
		return nil
	}
	if remaining := g.interval - g.clock.Now().Sub(g.last); remaining > 0 {
		g.clock.Sleep(remaining)
	}
	return ctx.Err()
}

// stamp records the completion time of the latest attempt.
func (g *gate) stamp() {
	g.mu.Lock()
	g.last = g.clock.Now()
	g.mu.Unlock()
}
