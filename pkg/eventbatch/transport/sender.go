// Package transport implements the HTTP boundary of the engine: sending
// a prepared batch to the data plane and classifying the response into
// the EventUploadResult taxonomy.
package transport

import (
	"context"

	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"
)

// HTTPSender is the seam Uploader drives. SetAnonymousID is called from
// the Uploader's single worker goroutine only, so implementations need
// no internal locking around it.
type HTTPSender interface {
	SetAnonymousID(id string)
	Send(ctx context.Context, payload string, retryHeaders map[string]string) model.UploadResult
}
