// Package rediskv is an optional KeyValueStore backend for multi-process
// Server deployments that want the batch index counter and retry
// metadata visible to every process sharing a write-key, instead of
// pinned to one process's local disk. Grounded on the common/mredis
// connection-wrapper pattern.
//
// Only non-batch keys are ever routed here (see pkg/eventbatch/storage):
// the open/closed batch files themselves stay on local disk or in
// memory — sharing the counter and retry state across processes is a
// durability choice about small scalar state, not a batch-file
// coordination protocol.
package rediskv

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Store adapts a redis.Client to kvstore.KeyValueStore. All keys are
// namespaced under a caller-supplied prefix (typically the write key)
// to keep multiple SDK instances from colliding on one Redis database.
//
// Values are stored as plain strings with no type tag, so a read under
// a different type than the write does not fall back to the default
// when the stored string parses as the requested type: a value written
// with WriteInt reads back through ReadLong, and any value reads back
// through ReadString. Only values that fail to parse, and absent keys,
// yield the caller's default.
type Store struct {
	client *redis.Client
	prefix string
	ctx    context.Context
}

// New wraps an existing *redis.Client. The engine does not own the
// connection lifecycle; the host creates and closes it.
func New(ctx context.Context, client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix, ctx: ctx}
}

func (s *Store) key(k string) string { return s.prefix + ":" + k }

func (s *Store) WriteInt(key string, value int) error {
	return s.client.Set(s.ctx, s.key(key), strconv.Itoa(value), 0).Err()
}

func (s *Store) ReadInt(key string, def int) int {
	v, err := s.client.Get(s.ctx, s.key(key)).Result()
	if err != nil {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func (s *Store) RemoveInt(key string) error { return s.client.Del(s.ctx, s.key(key)).Err() }

func (s *Store) WriteLong(key string, value int64) error {
	return s.client.Set(s.ctx, s.key(key), strconv.FormatInt(value, 10), 0).Err()
}

func (s *Store) ReadLong(key string, def int64) int64 {
	v, err := s.client.Get(s.ctx, s.key(key)).Result()
	if err != nil {
		return def
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}

	return n
}

func (s *Store) RemoveLong(key string) error { return s.client.Del(s.ctx, s.key(key)).Err() }

func (s *Store) WriteBool(key string, value bool) error {
	return s.client.Set(s.ctx, s.key(key), strconv.FormatBool(value), 0).Err()
}

func (s *Store) ReadBool(key string, def bool) bool {
	v, err := s.client.Get(s.ctx, s.key(key)).Result()
	if err != nil {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}

	return b
}

func (s *Store) RemoveBool(key string) error { return s.client.Del(s.ctx, s.key(key)).Err() }

func (s *Store) WriteString(key string, value string) error {
	return s.client.Set(s.ctx, s.key(key), value, 0).Err()
}

func (s *Store) ReadString(key string, def string) string {
	v, err := s.client.Get(s.ctx, s.key(key)).Result()
	if err != nil {
		return def
	}

	return v
}

func (s *Store) RemoveString(key string) error { return s.client.Del(s.ctx, s.key(key)).Err() }

// Delete clears every key under this store's prefix.
func (s *Store) Delete() error {
	keys, err := s.client.Keys(s.ctx, s.prefix+":*").Result()
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	return s.client.Del(s.ctx, keys...).Err()
}
