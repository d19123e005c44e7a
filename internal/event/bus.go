// Package event provides the in-process signal bus connecting the deploy
// orchestrator, network resolver, and history aggregator. Subscriptions are
// explicit; there is no ambient global dispatch.
package event

import "sync"

// Topic identifies one broadcast signal.
type Topic string

const (
	// TokenDeployed fires after a deployment confirms. Payload:
	// *deploy.Transaction.
	TokenDeployed Topic = "tokenDeployed"
	// NetworkChanged fires after the wallet connection lands on a different
	// chain or account. Payload: the new resolution.
	NetworkChanged Topic = "networkChanged"
	// NetworkRefresh asks network-dependent state to re-run its fetch.
	// No payload.
	NetworkRefresh Topic = "networkRefresh"
)

// Bus is a synchronous broadcast bus. Publish calls every subscriber of the
// topic in subscription order, on the publisher's goroutine.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[Topic]map[int]func(payload any)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[int]func(any))}
}

// Subscribe registers fn for a topic and returns its unsubscribe func.
// Unsubscribing twice is harmless.
func (b *Bus) Subscribe(t Topic, fn func(payload any)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[t] == nil {
		b.subs[t] = make(map[int]func(any))
	}
	id := b.next
	b.next++
	b.subs[t][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[t], id)
	}
}

// Publish delivers payload to every subscriber of t. Subscribers run outside
// the bus lock, so they may publish or (un)subscribe reentrantly. A panicking
// subscriber does not stop delivery to the rest.
func (b *Bus) Publish(t Topic, payload any) {
	b.mu.Lock()
	fns := make([]func(any), 0, len(b.subs[t]))
	for _, fn := range b.subs[t] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		func() {
			defer func() { _ = recover() }()
			fn(payload)
		}()
	}
}
