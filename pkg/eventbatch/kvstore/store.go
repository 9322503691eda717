// Package kvstore implements the typed key/value surface that backs
// Storage's non-event operations: the batch index counter, and whatever
// else a host stores alongside events (feature flags, last-seen
// timestamps, ...). Two in-process backends are provided (file, memory);
// rediskv and postgreskv add shared backends for multi-process Server
// deployments.
package kvstore

// KeyValueStore is a typed key/value surface for {int, long, bool,
// string}. A read for a key stored under a different type, or a key
// that does not exist, returns the caller-supplied default — it never
// returns an error.
type KeyValueStore interface {
	WriteInt(key string, value int) error
	ReadInt(key string, def int) int
	RemoveInt(key string) error

	WriteLong(key string, value int64) error
	ReadLong(key string, def int64) int64
	RemoveLong(key string) error

	WriteBool(key string, value bool) error
	ReadBool(key string, def bool) bool
	RemoveBool(key string) error

	WriteString(key string, value string) error
	ReadString(key string, def string) string
	RemoveString(key string) error

	// Delete clears every key. Destructive, mirrors Storage.delete().
	Delete() error
}
