// Package events fans chain activity out to any number of listeners, such
// as the websocket clients connected to the node.
package events

import (
	"fmt"
	"sync"
)

// messageBuffer is how many events a slow listener can fall behind before
// events start being dropped for it.
const messageBuffer = 100

// Events maintains the set of listeners keyed by a unique id.
type Events struct {
	mu        sync.Mutex
	listeners map[string]chan string
	closed    bool
}

// New constructs an Events value for registering and receiving events.
func New() *Events {
	return &Events{
		listeners: make(map[string]chan string),
	}
}

// Shutdown closes every listener channel. Any later call to Acquire returns
// a closed channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.listeners {
		delete(evt.listeners, id)
		close(ch)
	}
	evt.closed = true
}

// Acquire takes a unique id and returns a channel that receives events
// until Release or Shutdown is called.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.listeners[id]; exists {
		return ch
	}

	ch := make(chan string, messageBuffer)
	if evt.closed {
		close(ch)
		return ch
	}

	evt.listeners[id] = ch
	return ch
}

// Release closes and removes the channel that was provided by Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.listeners[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.listeners, id)
	close(ch)
	return nil
}

// Send delivers the event to every listener. Send never blocks, a listener
// with a full buffer misses the event.
func (evt *Events) Send(s string) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for _, ch := range evt.listeners {
		select {
		case ch <- s:
		default:
		}
	}
}

// Len returns the number of active listeners.
func (evt *Events) Len() int {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	return len(evt.listeners)
}
