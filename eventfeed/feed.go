// Package eventfeed implements the fire-and-forget event bus described in
// spec.md §6: BeaconBlockImported, BeaconBlockRejected, BeaconAttestationImported,
// BeaconAttestationRejected, BeaconHeadChanged and BeaconFinalization all flow
// through a Feed. Shaped after the teacher's pervasive use of
// go-ethereum/event.Feed (new(event.Feed); feed.Subscribe(ch); feed.Send(v)),
// reimplemented locally so this module does not need to pull in all of
// go-ethereum for one type (see SPEC_FULL.md §3).
package eventfeed

import "sync"

// Feed fans an event out to every subscriber's channel. Send never blocks
// indefinitely on a slow subscriber; each delivery is best-effort.
type Feed struct {
	mu   sync.Mutex
	subs map[chan interface{}]struct{}
}

// Subscribe registers ch to receive all future Send calls. The returned
// function unsubscribes ch.
func (f *Feed) Subscribe(ch chan interface{}) (unsubscribe func()) {
	f.mu.Lock()
	if f.subs == nil {
		f.subs = make(map[chan interface{}]struct{})
	}
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, ch)
		f.mu.Unlock()
	}
}

// Send delivers event to every current subscriber. Delivery to a full
// channel is dropped rather than blocking the sender, since this is a
// notification bus, not a durable queue.
func (f *Feed) Send(event interface{}) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	delivered := 0
	for ch := range f.subs {
		select {
		case ch <- event:
			delivered++
		default:
		}
	}
	return delivered
}
