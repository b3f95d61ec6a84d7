package sheetstate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-sheets/internal/errors"
	"github.com/KirkDiggler/rpg-sheets/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-sheets/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/rpg-sheets/internal/redis"
	"github.com/KirkDiggler/rpg-sheets/internal/store"
)

const (
	// Key pattern: sheet_state:{session}
	stateKeyPrefix = "sheet_state:"
	historySuffix  = ":history"
	eventsSuffix   = ":events"

	defaultTTL          = 12 * time.Hour
	defaultHistoryLimit = 50
	maxWatchAttempts    = 5
)

// Config holds the configuration for the Redis backend
type Config struct {
	Client      redisclient.Client
	Clock       clock.Clock
	IDGenerator idgen.Generator
	SessionID   string

	// TTL is refreshed on every commit. Zero means defaultTTL.
	TTL time.Duration
	// HistoryLimit caps the stored history. Zero means defaultHistoryLimit.
	HistoryLimit int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	errors.ValidateRequired("SessionID", c.SessionID, vb)
	if c.TTL < 0 {
		vb.Field("TTL", "cannot be negative")
	}
	if c.HistoryLimit < 0 {
		vb.Field("HistoryLimit", "cannot be negative")
	}

	return vb.Build()
}

// stateRecord is the JSON stored under the session key
type stateRecord struct {
	Query     string    `json:"query"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// changeEvent is published on every commit. Origin lets a backend ignore its
// own publications, its local listeners were already called.
type changeEvent struct {
	Origin string `json:"origin"`
	Query  string `json:"query"`
}

type subscriber struct {
	id int
	fn func()
}

type redisBackend struct {
	client       redisclient.Client
	clock        clock.Clock
	origin       string
	sessionID    string
	ttl          time.Duration
	historyLimit int

	mu          sync.Mutex
	subscribers []subscriber
	nextID      int
	pubsub      *redis.PubSub
	done        chan struct{}
}

var (
	_ Backend                  = (*redisBackend)(nil)
	_ store.ConditionalBackend = (*redisBackend)(nil)
)

// NewRedisBackend creates a backend bound to cfg.SessionID
func NewRedisBackend(cfg *Config) (Backend, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}
	limit := cfg.HistoryLimit
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	return &redisBackend{
		client:       cfg.Client,
		clock:        cfg.Clock,
		origin:       cfg.IDGenerator.Generate(),
		sessionID:    cfg.SessionID,
		ttl:          ttl,
		historyLimit: limit,
	}, nil
}

// Load returns the current query. A missing or expired session is empty.
func (b *redisBackend) Load(ctx context.Context) (url.Values, error) {
	return b.load(ctx, b.client)
}

// getter is satisfied by the client and by a watched *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (b *redisBackend) load(ctx context.Context, g getter) (url.Values, error) {
	raw, err := g.Get(ctx, b.stateKey()).Result()
	if err != nil {
		if err == redis.Nil {
			return url.Values{}, nil
		}
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to get sheet state from Redis")
	}

	var record stateRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal sheet state")
	}

	if b.clock.Now().After(record.ExpiresAt) {
		return url.Values{}, nil
	}

	return parseQuery(record.Query), nil
}

// Commit stores values, appends them to the history and publishes the change
func (b *redisBackend) Commit(ctx context.Context, values url.Values) error {
	query := values.Encode()

	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return b.queueWrite(ctx, pipe, query, b.pushHistory(ctx, query))
	})
	if err != nil {
		return unavailable(err, "failed to store sheet state in Redis")
	}

	b.committed(query)
	return nil
}

// CommitIf is Commit guarded by WATCH on the state key. It returns
// store.ErrConflict when the stored query no longer equals base.
func (b *redisBackend) CommitIf(ctx context.Context, base, values url.Values) error {
	query := values.Encode()

	err := b.watch(ctx, func(tx *redis.Tx) error {
		current, err := b.load(ctx, tx)
		if err != nil {
			return err
		}
		if current.Encode() != base.Encode() {
			return errors.Wrap(store.ErrConflict, "sheet state changed")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return b.queueWrite(ctx, pipe, query, b.pushHistory(ctx, query))
		})
		return err
	}, b.stateKey())
	if err != nil {
		return err
	}

	b.committed(query)
	return nil
}

// Back drops the latest history entry and restores the one before it. The
// read and the write run under WATCH so a concurrent commit is never
// overwritten; the undo is retried against the newer history instead.
func (b *redisBackend) Back(ctx context.Context) (bool, error) {
	var (
		previous string
		moved    bool
	)

	err := b.watch(ctx, func(tx *redis.Tx) error {
		moved = false
		entries, err := tx.LRange(ctx, b.historyKey(), -2, -1).Result()
		if err != nil {
			return unavailable(err, "failed to read sheet history")
		}
		if len(entries) < 2 {
			return nil
		}

		previous = entries[0]
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return b.queueWrite(ctx, pipe, previous, func(pipe redis.Pipeliner) {
				pipe.RPop(ctx, b.historyKey())
			})
		})
		if err != nil {
			return err
		}
		moved = true
		return nil
	}, b.stateKey(), b.historyKey())
	if err != nil || !moved {
		return false, err
	}

	slog.Debug("Restored sheet state",
		"session_id", b.sessionID,
		"query", previous)

	b.notify()
	return true, nil
}

// Entries returns the stored history, oldest first
func (b *redisBackend) Entries(ctx context.Context) ([]url.Values, error) {
	entries, err := b.client.LRange(ctx, b.historyKey(), 0, -1).Result()
	if err != nil {
		return nil, unavailable(err, "failed to read sheet history")
	}

	out := make([]url.Values, len(entries))
	for i, e := range entries {
		out[i] = parseQuery(e)
	}
	return out, nil
}

// watch runs fn in an optimistic transaction over keys, retrying when a
// watched key changes before EXEC.
func (b *redisBackend) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for range maxWatchAttempts {
		err := b.client.Watch(ctx, fn, keys...)
		switch {
		case err == nil:
			return nil
		case err == redis.TxFailedErr:
			continue
		}

		var coded *errors.Error
		if errors.As(err, &coded) {
			return err
		}
		return unavailable(err, "failed to store sheet state in Redis")
	}
	return errors.Wrapf(store.ErrConflict, "sheet state kept changing after %d attempts", maxWatchAttempts)
}

func (b *redisBackend) pushHistory(ctx context.Context, query string) func(redis.Pipeliner) {
	return func(pipe redis.Pipeliner) {
		pipe.RPush(ctx, b.historyKey(), query)
		pipe.LTrim(ctx, b.historyKey(), int64(-b.historyLimit), -1)
	}
}

// queueWrite queues the state record, the history change in extra, the TTL
// refresh and the change event on pipe.
func (b *redisBackend) queueWrite(ctx context.Context, pipe redis.Pipeliner, query string, extra func(redis.Pipeliner)) error {
	now := b.clock.Now()
	record, err := json.Marshal(stateRecord{
		Query:     query,
		UpdatedAt: now,
		ExpiresAt: now.Add(b.ttl),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to marshal sheet state")
	}

	event, err := json.Marshal(changeEvent{Origin: b.origin, Query: query})
	if err != nil {
		return errors.Wrapf(err, "failed to marshal change event")
	}

	pipe.Set(ctx, b.stateKey(), record, b.ttl)
	extra(pipe)
	pipe.Expire(ctx, b.historyKey(), b.ttl)
	pipe.Publish(ctx, b.eventsKey(), event)
	return nil
}

func (b *redisBackend) committed(query string) {
	slog.Debug("Committed sheet state",
		"session_id", b.sessionID,
		"query", query)

	b.notify()
}

func unavailable(err error, message string) error {
	var coded *errors.Error
	if errors.As(err, &coded) {
		return err
	}
	return errors.WrapWithCode(err, errors.CodeUnavailable, message)
}

// Subscribe registers fn. The first subscription opens the redis channel so
// commits from other processes are observed too.
func (b *redisBackend) Subscribe(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pubsub == nil {
		b.listen()
	}

	b.nextID++
	id := b.nextID
	b.subscribers = append(b.subscribers, subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subscribers {
			if s.id == id {
				b.subscribers = append(b.subscribers[:i:i], b.subscribers[i+1:]...)
				return
			}
		}
	}
}

// listen must be called with b.mu held
func (b *redisBackend) listen() {
	ctx := context.Background()
	b.pubsub = b.client.Subscribe(ctx, b.eventsKey())
	b.done = make(chan struct{})

	// wait for the subscription so commits made right after Subscribe returns
	// are delivered
	if _, err := b.pubsub.Receive(ctx); err != nil {
		slog.Warn("Failed to subscribe to sheet events",
			"session_id", b.sessionID,
			"error", err)
	}

	go func(ch <-chan *redis.Message, done chan<- struct{}) {
		defer close(done)
		for msg := range ch {
			var event changeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.Warn("Dropping malformed sheet event",
					"session_id", b.sessionID,
					"error", err)
				continue
			}
			if event.Origin == b.origin {
				continue
			}
			b.notify()
		}
	}(b.pubsub.Channel(), b.done)
}

func (b *redisBackend) notify() {
	b.mu.Lock()
	subscribers := make([]subscriber, len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mu.Unlock()

	for _, s := range subscribers {
		s.fn()
	}
}

// Close closes the subscription and waits for the listener goroutine
func (b *redisBackend) Close() error {
	b.mu.Lock()
	ps, done := b.pubsub, b.done
	b.pubsub, b.done = nil, nil
	b.mu.Unlock()

	if ps == nil {
		return nil
	}
	if err := ps.Close(); err != nil {
		return errors.Wrapf(err, "failed to close sheet event subscription")
	}
	<-done
	return nil
}

func (b *redisBackend) stateKey() string {
	return fmt.Sprintf("%s%s", stateKeyPrefix, b.sessionID)
}

func (b *redisBackend) historyKey() string {
	return b.stateKey() + historySuffix
}

func (b *redisBackend) eventsKey() string {
	return b.stateKey() + eventsSuffix
}

func parseQuery(query string) url.Values {
	values, _ := url.ParseQuery(query)
	if values == nil {
		values = url.Values{}
	}
	return values
}
