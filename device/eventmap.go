// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package device models a live ecoNET device: an event map keyed by decoded
// frame fields, typed writable Parameters, Mixer/Thermostat sub-devices,
// and the composable filters subscribers can wrap around a callback
// (spec §3.4, §4.4).
package device

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Callback transforms (or simply observes) a value dispatched for a key.
// Its return value becomes the value stored in the map and seen by later
// subscribers (spec §3.4: "each may return a transformed value").
type Callback func(ctx context.Context, value any) (any, error)

// ErrTimeout is returned by Get/WaitFor when their context expires before
// the key's latch fires.
var ErrTimeout = errors.New("device: timed out waiting for key")

// ErrShutdown is returned by Dispatch, Get and WaitFor once Shutdown has
// been called.
var ErrShutdown = errors.New("device: event map is shut down")

// EventMap is the per-device key/value store with ordered pub/sub and
// one-shot latches (spec §3.4). The zero value is not usable; use NewEventMap.
type EventMap struct {
	mu     sync.Mutex
	values map[string]any
	subs   map[string][]subscriber
	latch  map[string]chan struct{}

	wg       sync.WaitGroup
	shutdown bool
	shutCh   chan struct{}
}

type subscriber struct {
	id int
	cb Callback
}

// NewEventMap returns an empty, ready-to-use event map.
func NewEventMap() *EventMap {
	return &EventMap{
		values: make(map[string]any),
		subs:   make(map[string][]subscriber),
		latch:  make(map[string]chan struct{}),
		shutCh: make(chan struct{}),
	}
}

func (m *EventMap) latchFor(key string) chan struct{} {
	l, ok := m.latch[key]
	if !ok {
		l = make(chan struct{})
		m.latch[key] = l
	}
	return l
}

// Dispatch runs every subscriber registered for key, in registration order,
// threading each callback's return value into the next, then stores the
// final value and fires the key's latch (spec §3.4 invariants).
func (m *EventMap) Dispatch(ctx context.Context, key string, value any) error {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return ErrShutdown
	}
	subs := append([]subscriber(nil), m.subs[key]...)
	m.mu.Unlock()

	cur := value
	for _, s := range subs {
		v, err := s.cb(ctx, cur)
		if err != nil {
			return errors.Wrapf(err, "device: subscriber for %q", key)
		}
		cur = v
	}

	m.mu.Lock()
	m.values[key] = cur
	l := m.latchFor(key)
	select {
	case <-l:
		// already fired once; lifetime latch, stays fired
	default:
		close(l)
	}
	m.mu.Unlock()
	return nil
}

// DispatchAsync spawns Dispatch as a tracked child task (spec §4.4.1
// dispatch_nowait), counted by Shutdown's wait.
func (m *EventMap) DispatchAsync(ctx context.Context, key string, value any) {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		_ = m.Dispatch(ctx, key, value)
	}()
}

var subIDSeq int
var subIDMu sync.Mutex

func nextSubID() int {
	subIDMu.Lock()
	defer subIDMu.Unlock()
	subIDSeq++
	return subIDSeq
}

// Subscribe registers cb for key, returning a token Unsubscribe accepts.
func (m *EventMap) Subscribe(key string, cb Callback) int {
	id := nextSubID()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[key] = append(m.subs[key], subscriber{id: id, cb: cb})
	return id
}

// SubscribeOnce registers cb for key, auto-unsubscribing after its first firing.
func (m *EventMap) SubscribeOnce(key string, cb Callback) int {
	var id int
	wrapped := func(ctx context.Context, value any) (any, error) {
		v, err := cb(ctx, value)
		m.Unsubscribe(key, id)
		return v, err
	}
	id = m.Subscribe(key, wrapped)
	return id
}

// Unsubscribe removes the subscriber previously returned by Subscribe/SubscribeOnce.
func (m *EventMap) Unsubscribe(key string, id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.subs[key]
	for i, s := range list {
		if s.id == id {
			m.subs[key] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Get waits for key's latch (dispatched at least once) and returns its value.
func (m *EventMap) Get(ctx context.Context, key string) (any, error) {
	if err := m.WaitFor(ctx, key); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

// GetNowait returns the current value for key without blocking, or def if
// the key has never been dispatched.
func (m *EventMap) GetNowait(key string, def any) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key]; ok {
		return v
	}
	return def
}

// WaitFor blocks until key's latch fires once, ctx is cancelled, or the
// map is shut down.
func (m *EventMap) WaitFor(ctx context.Context, key string) error {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return ErrShutdown
	}
	l := m.latchFor(key)
	shutCh := m.shutCh
	m.mu.Unlock()

	select {
	case <-l:
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ErrTimeout, "key %q", key)
	case <-shutCh:
		return ErrShutdown
	}
}

// Shutdown marks the map closed and waits for every DispatchAsync task to
// finish (spec §4.4.1, §5 cancellation).
func (m *EventMap) Shutdown() {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	m.shutdown = true
	close(m.shutCh)
	m.mu.Unlock()
	m.wg.Wait()
}
