// Package storage holds the durable string-to-string records a visitor's
// stores survive restarts with: the session, the identity record and the
// anonymous cart snapshot.
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type scoped struct {
	kv     KV
	prefix string
}

// Scoped returns a KV whose keys live under prefix, so several visitors can
// share one backend without seeing each other's records.
func Scoped(kv KV, parts ...string) KV {
	return &scoped{kv: kv, prefix: strings.Join(parts, ":") + ":"}
}

func (s *scoped) Get(ctx context.Context, key string) (string, error) {
	return s.kv.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.kv.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, s.prefix+k)
	}
	return s.kv.Delete(ctx, full...)
}
