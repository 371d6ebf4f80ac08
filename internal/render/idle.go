package render

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
)

// idleWaiter observes CDP network events and resolves once no subresource
// request has been in flight for a quiet window. Chromium exposes no direct
// network-idle signal over chromedp, so the waiter keeps its own in-flight
// set from request/finished/failed events.
type idleWaiter struct {
	quiet    time.Duration
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	activity chan struct{}
}

func newIdleWaiter(quiet time.Duration) *idleWaiter {
	return &idleWaiter{
		quiet:    quiet,
		inflight: make(map[network.RequestID]struct{}),
		activity: make(chan struct{}, 1),
	}
}

// handle is registered via chromedp.ListenTarget and runs on the CDP event
// goroutine; it must not block.
func (w *idleWaiter) handle(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		w.track(e.RequestID, true)
	case *network.EventLoadingFinished:
		w.track(e.RequestID, false)
	case *network.EventLoadingFailed:
		w.track(e.RequestID, false)
	}
}

func (w *idleWaiter) track(id network.RequestID, started bool) {
	w.mu.Lock()
	if started {
		w.inflight[id] = struct{}{}
	} else {
		delete(w.inflight, id)
	}
	w.mu.Unlock()

	select {
	case w.activity <- struct{}{}:
	default:
	}
}

func (w *idleWaiter) idle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.inflight) == 0
}

// Wait blocks until the page has been network-idle for the quiet window, or
// the context expires.
func (w *idleWaiter) Wait(ctx context.Context) error {
	timer := time.NewTimer(w.quiet)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.activity:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.quiet)
		case <-timer.C:
			if w.idle() {
				return nil
			}
			timer.Reset(w.quiet)
		}
	}
}
