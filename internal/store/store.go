package store

import (
	"context"
	"net/url"
	"sync"

	"github.com/KirkDiggler/rpg-sheets/internal/errors"
)

// Config holds the dependencies of a Store
type Config struct {
	Backend Backend
}

// Validate ensures all required dependencies are present
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Backend == nil {
		vb.RequiredField("Backend")
	}

	return vb.Build()
}

// maxAttempts bounds the retries of a read-modify-write that keeps losing
// to other writers on a ConditionalBackend.
const maxAttempts = 5

type listener struct {
	id int
	fn func()
}

// Store reads and writes raw parameters through a Backend. Reads always go to
// the backend, except inside a Batch where they see the pending writes.
type Store struct {
	backend Backend
	attach  sync.Once

	mu        sync.Mutex
	detach    func()
	depth     int
	pending   url.Values
	listeners []listener
	nextID    int
}

// New creates a Store. The backend subscription is made by the first
// Subscribe, so request-scoped stores that never listen cost nothing.
func New(cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Store{backend: cfg.Backend}, nil
}

// Close detaches the store from its backend. Listeners stop receiving
// notifications and later subscriptions are never notified.
func (s *Store) Close() {
	s.attach.Do(func() {})

	s.mu.Lock()
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// Lookup returns the raw value of key and whether the key is present.
func (s *Store) Lookup(ctx context.Context, key string) (string, bool, error) {
	values, err := s.Snapshot(ctx)
	if err != nil {
		return "", false, err
	}
	if _, ok := values[key]; !ok {
		return "", false, nil
	}
	return values.Get(key), true, nil
}

// Snapshot returns a copy of the full parameter set as readers currently see
// it.
func (s *Store) Snapshot(ctx context.Context) (url.Values, error) {
	s.mu.Lock()
	if s.depth > 0 {
		values := cloneValues(s.pending)
		s.mu.Unlock()
		return values, nil
	}
	s.mu.Unlock()

	values, err := s.backend.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load query")
	}
	return values, nil
}

// SetRaw writes value under key, or removes key when present is false. Outside
// a batch this is one commit, even when the value does not change.
func (s *Store) SetRaw(ctx context.Context, key, value string, present bool) error {
	set := func(values url.Values) {
		if present {
			values.Set(key, value)
		} else {
			values.Del(key)
		}
	}

	s.mu.Lock()
	if s.depth > 0 {
		set(s.pending)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	return s.transact(ctx, false, func(_ context.Context, values url.Values) error {
		set(values)
		return nil
	})
}

// ResetKeys removes every key in a single commit, returning each to its
// default.
func (s *Store) ResetKeys(ctx context.Context, keys ...string) error {
	return s.Batch(ctx, func(ctx context.Context) error {
		for _, key := range keys {
			if err := s.SetRaw(ctx, key, "", false); err != nil {
				return err
			}
		}
		return nil
	})
}

// Batch runs fn with commits deferred. Writes made by fn, including writes
// from nested batches, are committed once when the outermost batch returns.
// Nothing is committed when fn returns an error or leaves the parameter set
// as it found it.
func (s *Store) Batch(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.depth > 0 {
		s.depth++
		s.mu.Unlock()
		defer s.leave()
		return fn(ctx)
	}
	s.mu.Unlock()

	return s.transact(ctx, true, func(ctx context.Context, values url.Values) error {
		s.mu.Lock()
		s.depth, s.pending = 1, values
		s.mu.Unlock()
		defer s.leave()

		return fn(ctx)
	})
}

// Subscribe registers fn to run after every change to the backend's
// parameters. Listeners run in subscription order.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.attach.Do(func() {
		detach := s.backend.Subscribe(s.notify)
		s.mu.Lock()
		s.detach = detach
		s.mu.Unlock()
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// leave closes one batch level. The outermost level drops the pending set,
// also when fn panicked.
func (s *Store) leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depth--
	if s.depth == 0 {
		s.pending = nil
	}
}

// transact loads the parameter set, lets mutate change a copy and commits it.
// On a ConditionalBackend a conflicting writer restarts the whole cycle.
func (s *Store) transact(ctx context.Context, skipUnchanged bool, mutate func(context.Context, url.Values) error) error {
	for attempt := 1; ; attempt++ {
		base, err := s.backend.Load(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load query")
		}

		values := cloneValues(base)
		if err := mutate(ctx, values); err != nil {
			return err
		}
		if skipUnchanged && values.Encode() == base.Encode() {
			return nil
		}

		err = s.commit(ctx, base, values)
		if err == nil {
			return nil
		}
		if !errors.IsFailedPrecondition(err) || attempt == maxAttempts {
			return errors.Wrap(err, "failed to commit query")
		}
	}
}

func (s *Store) commit(ctx context.Context, base, values url.Values) error {
	if cb, ok := s.backend.(ConditionalBackend); ok {
		return cb.CommitIf(ctx, base, values)
	}
	return s.backend.Commit(ctx, values)
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn()
	}
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}
	return out
}
