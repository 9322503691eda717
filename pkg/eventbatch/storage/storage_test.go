package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/batchmanager"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/kvstore"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"
)

func newTestStorage(maxPayloadSize int) *Storage {
	counter := kvstore.NewMemoryStore()
	batches := batchmanager.NewMemoryBatchManager("write-key", model.Server, counter, 1<<20)

	return New(batches, counter, maxPayloadSize)
}

func TestWriteEventRejectsOversizePayload(t *testing.T) {
	s := newTestStorage(10)

	err := s.WriteEvent(strings.Repeat("a", 10))
	assert.ErrorIs(t, err, model.ErrPayloadTooLarge)

	assert.NoError(t, s.Rollover())
	assert.Empty(t, s.ReadFileList(), "the open batch must stay untouched when the payload is rejected")
}

func TestWriteEventAcceptsUnderCap(t *testing.T) {
	s := newTestStorage(100)

	assert.NoError(t, s.WriteEvent(strings.Repeat("a", 50)))
	assert.NoError(t, s.Rollover())

	assert.Len(t, s.ReadFileList(), 1)
}

func TestReadEventAndParseEventIDsRoundTrip(t *testing.T) {
	s := newTestStorage(1000)

	for i := 0; i < 3; i++ {
		assert.NoError(t, s.WriteEvent(`{"event":"x"}`))
		assert.NoError(t, s.Rollover())
	}

	joined := s.ReadEvent()
	assert.Equal(t, "0, 1, 2", joined)

	ids := ParseEventIDs(joined)
	assert.Equal(t, []int64{0, 1, 2}, ids)
}

func TestParseEventIDsEmptyString(t *testing.T) {
	assert.Nil(t, ParseEventIDs(""))
}

func TestReadBatchContentAndRemove(t *testing.T) {
	s := newTestStorage(1000)

	require.NoError(t, s.WriteEvent(`{"event":"x"}`))
	require.NoError(t, s.Rollover())

	ids := s.ReadFileList()
	require.Len(t, ids, 1)

	content, ok := s.ReadBatchContent(ids[0])
	require.True(t, ok)
	assert.Contains(t, content, `{"event":"x"}`)

	assert.True(t, s.Remove(ids[0]))
	_, ok = s.ReadBatchContent(ids[0])
	assert.False(t, ok)
}

func TestCloseDropsOpenBatchWithoutFinalising(t *testing.T) {
	s := newTestStorage(1000)

	require.NoError(t, s.WriteEvent(`{"event":"x"}`))
	s.Close()

	assert.NoError(t, s.Rollover())
	assert.Empty(t, s.ReadFileList())
}

func TestDeleteClearsBatchesAndKeyValues(t *testing.T) {
	s := newTestStorage(1000)

	require.NoError(t, s.WriteEvent(`{"event":"x"}`))
	require.NoError(t, s.Rollover())
	require.NoError(t, s.WriteString("k", "v"))

	assert.NoError(t, s.Delete())

	assert.Empty(t, s.ReadFileList())
	assert.Equal(t, "", s.ReadString("k", ""))
}

func TestTypedKeyValuePassthroughs(t *testing.T) {
	s := newTestStorage(1000)

	assert.NoError(t, s.WriteInt("i", 5))
	assert.Equal(t, 5, s.ReadInt("i", 0))
	assert.NoError(t, s.RemoveInt("i"))
	assert.Equal(t, 0, s.ReadInt("i", 0))

	assert.NoError(t, s.WriteLong("l", int64(42)))
	assert.Equal(t, int64(42), s.ReadLong("l", 0))

	assert.NoError(t, s.WriteBool("b", true))
	assert.True(t, s.ReadBool("b", false))

	assert.NoError(t, s.WriteString("s", "x"))
	assert.Equal(t, "x", s.ReadString("s", ""))
}

func TestGetLibraryVersion(t *testing.T) {
	s := newTestStorage(1000)

	info := s.GetLibraryVersion()
	assert.Equal(t, model.LibraryName, info.Name)
	assert.Equal(t, model.LibraryVersion, info.Version)
}
