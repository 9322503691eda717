// Package postgreskv is an optional KeyValueStore backend for Server
// deployments that already run Postgres for other telemetry and want
// retry metadata and the batch index counter to survive a volume wipe
// rather than live only on local disk. Uses pgx/v5 as its Postgres
// driver and Masterminds/squirrel as its query builder, matching
// common/mpostgres's stack.
package postgreskv

import (
	"context"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS eventbatch_kv (
	prefix   TEXT NOT NULL,
	key      TEXT NOT NULL,
	kind     SMALLINT NOT NULL,
	value    TEXT NOT NULL,
	PRIMARY KEY (prefix, key)
)`

type kind int8

const (
	kindInt kind = iota
	kindLong
	kindBool
	kindString
)

// Store adapts a pgxpool.Pool to kvstore.KeyValueStore. Rows are
// namespaced by prefix (typically the write key) the same way rediskv
// namespaces its keys.
type Store struct {
	pool   *pgxpool.Pool
	prefix string
	ctx    context.Context
	psql   sq.StatementBuilderType
}

// New wraps an existing pool and ensures the backing table exists.
func New(ctx context.Context, pool *pgxpool.Pool, prefix string) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, err
	}

	return &Store{
		pool:   pool,
		prefix: prefix,
		ctx:    ctx,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

func (s *Store) upsert(key string, k kind, value string) error {
	query, args, err := s.psql.Insert("eventbatch_kv").
		Columns("prefix", "key", "kind", "value").
		Values(s.prefix, key, k, value).
		Suffix("ON CONFLICT (prefix, key) DO UPDATE SET kind = EXCLUDED.kind, value = EXCLUDED.value").
		ToSql()
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(s.ctx, query, args...)

	return err
}

func (s *Store) lookup(key string, want kind) (string, bool) {
	query, args, err := s.psql.Select("kind", "value").
		From("eventbatch_kv").
		Where(sq.Eq{"prefix": s.prefix, "key": key}).
		ToSql()
	if err != nil {
		return "", false
	}

	var gotKind kind

	var value string

	row := s.pool.QueryRow(s.ctx, query, args...)
	if err := row.Scan(&gotKind, &value); err != nil {
		return "", false
	}

	if gotKind != want {
		return "", false
	}

	return value, true
}

func (s *Store) delete(key string) error {
	query, args, err := s.psql.Delete("eventbatch_kv").
		Where(sq.Eq{"prefix": s.prefix, "key": key}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(s.ctx, query, args...)

	return err
}

func (s *Store) WriteInt(key string, value int) error {
	return s.upsert(key, kindInt, strconv.Itoa(value))
}

func (s *Store) ReadInt(key string, def int) int {
	v, ok := s.lookup(key, kindInt)
	if !ok {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func (s *Store) RemoveInt(key string) error { return s.delete(key) }

func (s *Store) WriteLong(key string, value int64) error {
	return s.upsert(key, kindLong, strconv.FormatInt(value, 10))
}

func (s *Store) ReadLong(key string, def int64) int64 {
	v, ok := s.lookup(key, kindLong)
	if !ok {
		return def
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}

	return n
}

func (s *Store) RemoveLong(key string) error { return s.delete(key) }

func (s *Store) WriteBool(key string, value bool) error {
	v := "false"
	if value {
		v = "true"
	}

	return s.upsert(key, kindBool, v)
}

func (s *Store) ReadBool(key string, def bool) bool {
	v, ok := s.lookup(key, kindBool)
	if !ok {
		return def
	}

	return v == "true"
}

func (s *Store) RemoveBool(key string) error { return s.delete(key) }

func (s *Store) WriteString(key string, value string) error {
	return s.upsert(key, kindString, value)
}

func (s *Store) ReadString(key string, def string) string {
	v, ok := s.lookup(key, kindString)
	if !ok {
		return def
	}

	return v
}

func (s *Store) RemoveString(key string) error { return s.delete(key) }

// Delete clears every row under this store's prefix.
func (s *Store) Delete() error {
	query, args, err := s.psql.Delete("eventbatch_kv").
		Where(sq.Eq{"prefix": s.prefix}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(s.ctx, query, args...)

	return err
}
