// Package archive implements the optional post-upload archival sink: on
// Success, before a batch is removed from Storage, its raw bytes are
// mirrored into a Mongo collection for replay/debugging. Off by
// default; this is a supplemented feature that does not change core
// upload semantics (the batch is still removed from Storage on Success
// regardless of archival outcome).
//
// Grounded on the common/mmongo connection wrapper, adapted from a
// per-entity repository to a single capped-collection sink.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rudderlabs/rudder-go-batch-engine/internal/platform/mlog"
)

// Record is one archived batch.
type Record struct {
	WriteKey  string    `bson:"writeKey"`
	BatchID   int64     `bson:"batchId"`
	Payload   string    `bson:"payload"`
	ArchivedAt time.Time `bson:"archivedAt"`
}

// Connection wraps a lazily-established Mongo client, following the
// common MongoConnection.Connect/GetDB pattern.
type Connection struct {
	URI      string
	Database string

	client *mongo.Client
}

// GetClient returns the live client, connecting on first use.
func (c *Connection) GetClient(ctx context.Context) (*mongo.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.URI))
	if err != nil {
		return nil, fmt.Errorf("archive: connecting to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("archive: pinging mongo: %w", err)
	}

	c.client = client

	return client, nil
}

const collectionName = "archived_batches"

// maxCollectionBytes caps the capped collection so archival never grows
// without bound; oldest records are evicted first.
const maxCollectionBytes = 512 * 1024 * 1024

// Sink mirrors successfully uploaded batch bytes into Mongo.
type Sink struct {
	conn   *Connection
	logger mlog.Logger
}

// NewSink builds a Sink over conn.
func NewSink(conn *Connection, logger mlog.Logger) *Sink {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	return &Sink{conn: conn, logger: logger}
}

// EnsureCollection creates the capped collection if it does not already
// exist. Safe to call repeatedly.
func (s *Sink) EnsureCollection(ctx context.Context) error {
	client, err := s.conn.GetClient(ctx)
	if err != nil {
		return err
	}

	db := client.Database(s.conn.Database)

	capped := true
	opts := options.CreateCollection().SetCapped(capped).SetSizeInBytes(maxCollectionBytes)

	err = db.CreateCollection(ctx, collectionName, opts)
	if err != nil {
		// Already exists (NamespaceExists, code 48) is not an error for
		// this idempotent setup step.
		var serverErr mongo.ServerError
		if errors.As(err, &serverErr) && serverErr.HasErrorCode(48) {
			return nil
		}

		return fmt.Errorf("archive: creating collection: %w", err)
	}

	return nil
}

// Archive mirrors a single uploaded batch. Failures are logged and
// swallowed — archival is a side effect of Success, never a reason to
// fail or retry the upload itself.
func (s *Sink) Archive(ctx context.Context, writeKey string, batchID int64, payload string) {
	client, err := s.conn.GetClient(ctx)
	if err != nil {
		s.logger.Warnf("archive: skipping batch %d, mongo unavailable: %v", batchID, err)
		return
	}

	coll := client.Database(s.conn.Database).Collection(collectionName)

	record := Record{
		WriteKey:   writeKey,
		BatchID:    batchID,
		Payload:    payload,
		ArchivedAt: time.Now().UTC(),
	}

	if _, err := coll.InsertOne(ctx, record); err != nil {
		s.logger.Warnf("archive: inserting batch %d: %v", batchID, err)
	}
}

// Find looks up an archived batch by id, for operator replay/debugging
// tooling.
func (s *Sink) Find(ctx context.Context, writeKey string, batchID int64) (Record, bool) {
	client, err := s.conn.GetClient(ctx)
	if err != nil {
		return Record{}, false
	}

	coll := client.Database(s.conn.Database).Collection(collectionName)

	var record Record

	filter := bson.M{"writeKey": writeKey, "batchId": batchID}
	if err := coll.FindOne(ctx, filter).Decode(&record); err != nil {
		return Record{}, false
	}

	return record, true
}
