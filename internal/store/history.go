package store

import (
	"context"
	"net/url"
	"sync"

	"github.com/KirkDiggler/rpg-sheets/internal/errors"
)

// EventType names a history notification.
type EventType string

const (
	// EventPushState fires after PushState
	EventPushState EventType = "pushstate"
	// EventReplaceState fires after ReplaceState
	EventReplaceState EventType = "replacestate"
	// EventPopState fires after Back, Forward or Go moves the cursor
	EventPopState EventType = "popstate"
)

// Event is delivered to History listeners.
type Event struct {
	Type     EventType
	Location string
}

type historyListener struct {
	id int
	fn func(Event)
}

// History is an in-memory session history: a stack of query strings for one
// path and a cursor into it. It implements Backend with every Commit being a
// push.
type History struct {
	mu        sync.Mutex
	path      string
	entries   []string
	index     int
	listeners []historyListener
	nextID    int
}

var _ Backend = (*History)(nil)

// NewHistory starts a history at location, e.g. "/characters/brannoc?roll=average".
func NewHistory(location string) (*History, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, errors.InvalidArgumentf("invalid location %q", location)
	}
	return &History{
		path:    u.Path,
		entries: []string{u.RawQuery},
	}, nil
}

// Location returns the current path and query.
func (h *History) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.locationLocked()
}

func (h *History) locationLocked() string {
	if q := h.entries[h.index]; q != "" {
		return h.path + "?" + q
	}
	return h.path
}

// RawQuery returns the current query string without the leading "?".
func (h *History) RawQuery() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Query parses the current query string. Unparseable pairs are dropped.
func (h *History) Query() url.Values {
	values, _ := url.ParseQuery(h.RawQuery())
	if values == nil {
		values = url.Values{}
	}
	return values
}

// Len is the number of entries in the stack.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// PushState discards forward entries and appends values as the new current
// entry.
func (h *History) PushState(values url.Values) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], values.Encode())
	h.index++
	h.dispatchLocked(EventPushState)
}

// ReplaceState overwrites the current entry.
func (h *History) ReplaceState(values url.Values) {
	h.mu.Lock()
	h.entries[h.index] = values.Encode()
	h.dispatchLocked(EventReplaceState)
}

// Back moves one entry back. It reports false at the start of the stack.
func (h *History) Back() bool {
	return h.Go(-1)
}

// Forward moves one entry forward. It reports false at the end of the stack.
func (h *History) Forward() bool {
	return h.Go(1)
}

// Go moves the cursor by delta entries. Out of range moves do nothing.
func (h *History) Go(delta int) bool {
	h.mu.Lock()
	target := h.index + delta
	if delta == 0 || target < 0 || target >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = target
	h.dispatchLocked(EventPopState)
	return true
}

// Listen registers fn for every history event.
func (h *History) Listen(fn func(Event)) (unlisten func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	h.listeners = append(h.listeners, historyListener{id: id, fn: fn})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, l := range h.listeners {
			if l.id == id {
				h.listeners = append(h.listeners[:i:i], h.listeners[i+1:]...)
				return
			}
		}
	}
}

// dispatchLocked unlocks h.mu and then calls listeners, so a listener may
// read or navigate the history.
func (h *History) dispatchLocked(t EventType) {
	event := Event{Type: t, Location: h.locationLocked()}
	listeners := make([]historyListener, len(h.listeners))
	copy(listeners, h.listeners)
	h.mu.Unlock()

	for _, l := range listeners {
		l.fn(event)
	}
}

// Load implements Backend
func (h *History) Load(_ context.Context) (url.Values, error) {
	return h.Query(), nil
}

// Commit implements Backend with a push
func (h *History) Commit(_ context.Context, values url.Values) error {
	h.PushState(values)
	return nil
}

// Subscribe implements Backend
func (h *History) Subscribe(fn func()) func() {
	return h.Listen(func(Event) { fn() })
}
