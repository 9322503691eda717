// Package storage implements the Storage façade: a single surface over
// BatchManager (for the EVENT key) and KeyValueStore (for everything
// else), enforcing the per-event payload size cap.
package storage

import (
	"strconv"
	"strings"

	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/batchmanager"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/kvstore"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"
)

// readJoinSeparator is the exact separator Storage.ReadEvent uses to
// join closed-batch ids, and the one ParseEventIDs splits back apart.
const readJoinSeparator = ", "

// Storage composes a BatchManager and a KeyValueStore behind one
// interface.
type Storage struct {
	batches batchmanager.BatchManager
	kv      kvstore.KeyValueStore

	maxPayloadSize int
}

// New builds a Storage over the given backends.
func New(batches batchmanager.BatchManager, kv kvstore.KeyValueStore, maxPayloadSize int) *Storage {
	return &Storage{batches: batches, kv: kv, maxPayloadSize: maxPayloadSize}
}

// WriteEvent stores a single JSON event payload into the open batch.
// Returns model.ErrPayloadTooLarge without touching the open batch when
// len(payload) >= MaxPayloadSize.
func (s *Storage) WriteEvent(payload string) error {
	if len(payload) >= s.maxPayloadSize {
		return model.ErrPayloadTooLarge
	}

	return s.batches.StoreEvent(payload)
}

// ReadEvent returns the closed-batch ids joined by ", " — the exact
// protocol Uploader parses back into a list.
func (s *Storage) ReadEvent() string {
	ids := s.batches.Read()

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}

	return strings.Join(parts, readJoinSeparator)
}

// ParseEventIDs is the Uploader-side half of the Storage/Uploader
// protocol: it parses ReadEvent's ", "-joined string back into ids,
// preserving order.
func ParseEventIDs(joined string) []int64 {
	if joined == "" {
		return nil
	}

	parts := strings.Split(joined, readJoinSeparator)
	ids := make([]int64, 0, len(parts))

	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			continue
		}

		ids = append(ids, id)
	}

	return ids
}

// ReadFileList returns the closed-batch ids directly (bypassing the
// string-join protocol), for callers that don't need to cross the
// Storage/Uploader string boundary.
func (s *Storage) ReadFileList() []int64 { return s.batches.Read() }

// ReadBatchContent returns the raw bytes of a closed batch.
func (s *Storage) ReadBatchContent(id int64) (string, bool) {
	buf, ok := s.batches.ReadContent(id)
	if !ok {
		return "", false
	}

	return string(buf), true
}

// Rollover forwards to the BatchManager.
func (s *Storage) Rollover() error { return s.batches.Rollover() }

// Remove removes a closed batch.
func (s *Storage) Remove(id int64) bool { return s.batches.Remove(id) }

// Close drops the open batch without finalising it.
func (s *Storage) Close() { s.batches.CloseAndReset() }

// Delete clears every key and every batch. Destructive.
func (s *Storage) Delete() error {
	if err := s.batches.Delete(); err != nil {
		return err
	}

	return s.kv.Delete()
}

// GetLibraryVersion returns the static library name/version constants.
func (s *Storage) GetLibraryVersion() model.LibraryInfo {
	return model.LibraryInfo{Name: model.LibraryName, Version: model.LibraryVersion}
}

// --- typed key/value passthroughs ---

func (s *Storage) WriteInt(key string, value int) error      { return s.kv.WriteInt(key, value) }
func (s *Storage) ReadInt(key string, def int) int            { return s.kv.ReadInt(key, def) }
func (s *Storage) RemoveInt(key string) error                 { return s.kv.RemoveInt(key) }
func (s *Storage) WriteLong(key string, v int64) error        { return s.kv.WriteLong(key, v) }
func (s *Storage) ReadLong(key string, def int64) int64       { return s.kv.ReadLong(key, def) }
func (s *Storage) RemoveLong(key string) error                { return s.kv.RemoveLong(key) }
func (s *Storage) WriteBool(key string, v bool) error         { return s.kv.WriteBool(key, v) }
func (s *Storage) ReadBool(key string, def bool) bool         { return s.kv.ReadBool(key, def) }
func (s *Storage) RemoveBool(key string) error                { return s.kv.RemoveBool(key) }
func (s *Storage) WriteString(key string, v string) error     { return s.kv.WriteString(key, v) }
func (s *Storage) ReadString(key string, def string) string   { return s.kv.ReadString(key, def) }
func (s *Storage) RemoveString(key string) error               { return s.kv.RemoveString(key) }
