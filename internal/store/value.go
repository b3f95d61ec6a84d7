package store

import (
	"context"
)

// Codec converts between a typed value and its query-string form. Encode
// reports false when the value should not appear in the query at all, which
// is how defaults stay out of the URL. Decode receives present=false for an
// absent key and must never fail: malformed input decodes to the default.
type Codec[T any] interface {
	Encode(value T) (raw string, ok bool)
	Decode(raw string, present bool) T
}

// Value is a typed view of one key in a Store.
type Value[T any] struct {
	key   string
	codec Codec[T]
}

// NewValue binds key to codec.
func NewValue[T any](key string, codec Codec[T]) *Value[T] {
	return &Value[T]{key: key, codec: codec}
}

// Key returns the query parameter name
func (v *Value[T]) Key() string {
	return v.key
}

// Get decodes the current value.
func (v *Value[T]) Get(ctx context.Context, s *Store) (T, error) {
	raw, present, err := s.Lookup(ctx, v.key)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.codec.Decode(raw, present), nil
}

// Set writes value, removing the key when the codec reports no value.
func (v *Value[T]) Set(ctx context.Context, s *Store, value T) error {
	raw, ok := v.codec.Encode(value)
	return s.SetRaw(ctx, v.key, raw, ok)
}

// Update reads the value, applies fn and writes the result in one batch.
func (v *Value[T]) Update(ctx context.Context, s *Store, fn func(T) T) error {
	return s.Batch(ctx, func(ctx context.Context) error {
		current, err := v.Get(ctx, s)
		if err != nil {
			return err
		}
		return v.Set(ctx, s, fn(current))
	})
}

// Clear removes the key so readers see the default.
func (v *Value[T]) Clear(ctx context.Context, s *Store) error {
	return s.SetRaw(ctx, v.key, "", false)
}
