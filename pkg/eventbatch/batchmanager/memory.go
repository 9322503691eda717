package batchmanager

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/kvstore"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"
)

// counterKey follows a scoped-properties-key convention.
func counterKey(writeKey string) string {
	return "rudderstack.event.batch.index." + writeKey
}

type openBatch struct {
	index int64
	buf   []byte
}

// MemoryBatchManager is the in-memory BatchManager backend: closed
// batches live in a map keyed by index, the counter lives in a
// KeyValueStore (typically kvstore.MemoryStore). Mutating operations
// are serialised by mu; Read/ReadContent take a read lock and never
// block behind a slow batch-file write, they simply observe whatever
// state mu last committed.
//
// Matches the file backend's documented quirk: the size check
// happens strictly after the first append, not before it.
type MemoryBatchManager struct {
	writeKey string
	platform model.PlatformType
	counter  kvstore.KeyValueStore
	maxBatch int

	mu     sync.RWMutex
	open   *openBatch
	closed map[int64][]byte
	order  []int64
}

// NewMemoryBatchManager builds a BatchManager with no durability. The
// counter is still persisted to the supplied KeyValueStore so a host
// can share one counter table across several in-memory managers in
// tests without index collisions.
func NewMemoryBatchManager(writeKey string, platform model.PlatformType, counter kvstore.KeyValueStore, maxBatchSize int) *MemoryBatchManager {
	return &MemoryBatchManager{
		writeKey: writeKey,
		platform: platform,
		counter:  counter,
		maxBatch: maxBatchSize,
		closed:   make(map[int64][]byte),
	}
}

func (m *MemoryBatchManager) nextIndex() int64 {
	idx := m.counter.ReadLong(counterKey(m.writeKey), 0)
	return idx
}

func (m *MemoryBatchManager) advanceIndex(from int64) {
	_ = m.counter.WriteLong(counterKey(m.writeKey), from+1)
}

func (m *MemoryBatchManager) StoreEvent(payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.open == nil {
		m.open = &openBatch{index: m.nextIndex(), buf: []byte(batchPrefix + payload)}
		return nil
	}

	// Matches the file backend: the size check happens after the
	// append that created the batch, never before the first event.
	if len(m.open.buf) > m.maxBatch {
		m.finishLocked()
		m.open = &openBatch{index: m.nextIndex(), buf: []byte(batchPrefix + payload)}
		return nil
	}

	m.open.buf = append(m.open.buf, ',')
	m.open.buf = append(m.open.buf, payload...)

	return nil
}

func (m *MemoryBatchManager) Read() []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, len(m.order))
	copy(ids, m.order)

	if m.platform == model.Server {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	return ids
}

func (m *MemoryBatchManager) ReadContent(id int64) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	buf, ok := m.closed[id]
	if !ok {
		return nil, false
	}

	out := make([]byte, len(buf))
	copy(out, buf)

	return out, true
}

func (m *MemoryBatchManager) Remove(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.closed[id]; !ok {
		return false
	}

	delete(m.closed, id)

	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	return true
}

// finishLocked finalises m.open into m.closed. Caller must hold mu.
func (m *MemoryBatchManager) finishLocked() {
	if m.open == nil {
		return
	}

	finished := append(m.open.buf, []byte(fmt.Sprintf(`%s%s%s`, batchSuffix, sentAtPlaceholder, batchTail))...)
	m.closed[m.open.index] = finished
	m.order = append(m.order, m.open.index)
	m.advanceIndex(m.open.index)
	m.open = nil
}

func (m *MemoryBatchManager) Rollover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finishLocked()

	return nil
}

func (m *MemoryBatchManager) CloseAndReset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.open = nil
}

func (m *MemoryBatchManager) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.open = nil
	m.closed = make(map[int64][]byte)
	m.order = nil

	return nil
}

var _ BatchManager = (*MemoryBatchManager)(nil)
