package batchmanager

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/kvstore"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"
)

const tmpSuffix = ".tmp"

// FileBatchManager persists batches as files under
// <baseDir>/<writeKey>/<i>(.tmp). The index counter is
// persisted in a KeyValueStore (typically kvstore.FileStore pointed at
// the same base directory) rather than inferred from directory
// listings, so it survives every closed batch being removed.
type FileBatchManager struct {
	dir      string
	writeKey string
	platform model.PlatformType
	counter  kvstore.KeyValueStore
	maxBatch int

	mu        sync.Mutex
	openIndex int64
	openSet   bool
}

// NewFileBatchManager creates (if absent) <baseDir>/<writeKey> and
// returns a FileBatchManager over it.
func NewFileBatchManager(baseDir, writeKey string, platform model.PlatformType, counter kvstore.KeyValueStore, maxBatchSize int) (*FileBatchManager, error) {
	dir := filepath.Join(baseDir, writeKey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &FileBatchManager{
		dir:      dir,
		writeKey: writeKey,
		platform: platform,
		counter:  counter,
		maxBatch: maxBatchSize,
	}, nil
}

func (m *FileBatchManager) tmpPath(idx int64) string {
	return filepath.Join(m.dir, strconv.FormatInt(idx, 10)+tmpSuffix)
}

func (m *FileBatchManager) closedPath(idx int64) string {
	return filepath.Join(m.dir, strconv.FormatInt(idx, 10))
}

func (m *FileBatchManager) nextIndex() int64 {
	return m.counter.ReadLong(counterKey(m.writeKey), 0)
}

func (m *FileBatchManager) advanceIndex(from int64) {
	_ = m.counter.WriteLong(counterKey(m.writeKey), from+1)
}

func (m *FileBatchManager) openSize() int64 {
	info, err := os.Stat(m.tmpPath(m.openIndex))
	if err != nil {
		return 0
	}

	return info.Size()
}

func (m *FileBatchManager) StoreEvent(payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.openSet {
		m.openIndex = m.nextIndex()
		m.openSet = true

		return m.appendOpen([]byte(batchPrefix + payload))
	}

	// Matches the documented quirk: the size check happens after the
	// batch already exists, never before the first event.
	if m.openSize() > int64(m.maxBatch) {
		if err := m.finishLocked(); err != nil {
			return err
		}

		m.openIndex = m.nextIndex()
		m.openSet = true

		return m.appendOpen([]byte(batchPrefix + payload))
	}

	return m.appendOpen([]byte("," + payload))
}

func (m *FileBatchManager) appendOpen(b []byte) error {
	f, err := os.OpenFile(m.tmpPath(m.openIndex), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(b)

	return err
}

func (m *FileBatchManager) Read() []int64 {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil
	}

	var ids []int64

	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) == tmpSuffix {
			continue
		}

		id, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			continue
		}

		ids = append(ids, id)
	}

	if m.platform == model.Server {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	return ids
}

func (m *FileBatchManager) ReadContent(id int64) ([]byte, bool) {
	buf, err := os.ReadFile(m.closedPath(id))
	if err != nil {
		return nil, false
	}

	return buf, true
}

func (m *FileBatchManager) Remove(id int64) bool {
	err := os.Remove(m.closedPath(id))
	return err == nil
}

// finishLocked must be called with mu held.
func (m *FileBatchManager) finishLocked() error {
	if !m.openSet {
		return nil
	}

	if err := m.appendOpen([]byte(batchSuffix + sentAtPlaceholder + batchTail)); err != nil {
		return err
	}

	if err := os.Rename(m.tmpPath(m.openIndex), m.closedPath(m.openIndex)); err != nil {
		return err
	}

	m.advanceIndex(m.openIndex)
	m.openSet = false

	return nil
}

func (m *FileBatchManager) Rollover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.finishLocked()
}

func (m *FileBatchManager) CloseAndReset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.openSet {
		_ = os.Remove(m.tmpPath(m.openIndex))
		m.openSet = false
	}
}

func (m *FileBatchManager) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := os.Remove(filepath.Join(m.dir, e.Name())); err != nil {
			return err
		}
	}

	m.openSet = false

	return nil
}

var _ BatchManager = (*FileBatchManager)(nil)
