package uploader

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/anonid"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/retryheaders"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/storage"
)

var tracer = otel.Tracer("rudder-go-batch-engine/uploader")

const retryReasonHeader = retryheaders.HeaderRetryReason

// sentAtPlaceholder mirrors batchmanager's rollover placeholder; the
// worker rewrites it to the real send time immediately before upload.
const sentAtPlaceholder = "1970-01-01T00:00:00.000Z"

// uploadPass is one iteration of the worker loop: roll
// over, enumerate closed batches, and upload each in order. A closed
// batch whose content cannot be read is logged and skipped, and a
// failed anonymousId extraction falls back to a fresh UUID; neither is
// propagated — only context cancellation or a fatal-for-stream terminal
// error stops the pass early.
func (u *Uploader) uploadPass(ctx context.Context) {
	_, span := tracer.Start(ctx, "uploader.rollover")
	err := u.storage.Rollover()
	span.End()

	if err != nil {
		u.logger.Errorf("uploader: rollover failed: %v", err)
		return
	}

	ids := storage.ParseEventIDs(u.storage.ReadEvent())

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}

		if !u.uploadBatch(ctx, id) {
			return
		}
	}
}

// uploadBatch drives the retry loop for a single closed batch. It
// returns false when the worker must stop (context cancellation or a
// fatal-for-stream terminal error cancelled the uploader).
func (u *Uploader) uploadBatch(ctx context.Context, id int64) bool {
	content, ok := u.storage.ReadBatchContent(id)
	if !ok {
		u.logger.Warnf("uploader: batch %d has no readable content, skipping", id)
		return true
	}

	u.updateAnonymousID(content)

	for {
		if ctx.Err() != nil {
			return false
		}

		now := u.nowMs()
		headers := u.retryHdrs.GetHeaders(id, now)
		payload := replaceSentAt(content, now)

		sendCtx, span := tracer.Start(ctx, "uploader.http_send")
		span.SetAttributes(attribute.Int64("batch.id", id))

		if reason, retrying := headers[retryReasonHeader]; retrying {
			span.SetAttributes(attribute.String("rsa.retry_reason", reason))
		}

		result := u.sender.Send(sendCtx, payload, headers)
		span.End()

		switch {
		case result.IsSuccess():
			u.onSuccess(id, payload)
			return true

		default:
			if retryErr, isRetry := result.AsRetryable(); isRetry {
				u.onRetryable(id, now, retryErr)

				if err := u.backoffP.Delay(ctx); err != nil {
					return false
				}

				continue
			}

			nonRetryErr, _ := result.AsNonRetryable()

			return u.onNonRetryable(id, nonRetryErr)
		}
	}
}

func (u *Uploader) updateAnonymousID(content string) {
	id := anonid.Extract(content)
	if id == u.lastAnonymousID {
		return
	}

	u.lastAnonymousID = id
	u.sender.SetAnonymousID(id)
}

func (u *Uploader) onSuccess(id int64, payload string) {
	if err := u.retryHdrs.Clear(); err != nil {
		u.logger.Warnf("uploader: clearing retry metadata after success: %v", err)
	}

	u.backoffP.Reset()
	u.callbacks.archived(id, payload)
	u.storage.Remove(id)
}

func (u *Uploader) onRetryable(id int64, now int64, err *model.RetryAbleError) {
	reason := model.ReasonFor(err)
	if recErr := u.retryHdrs.RecordFailure(id, now, reason); recErr != nil {
		u.logger.Warnf("uploader: recording retry failure: %v", recErr)
	}
}

// onNonRetryable applies the terminal-handler table for non-retryable
// upload errors. Returns whether the worker should keep running.
func (u *Uploader) onNonRetryable(id int64, err *model.NonRetryAbleError) bool {
	if clearErr := u.retryHdrs.Clear(); clearErr != nil {
		u.logger.Warnf("uploader: clearing retry metadata after terminal error: %v", clearErr)
	}

	u.backoffP.Reset()

	if err == nil {
		u.storage.Remove(id)
		return true
	}

	switch err.Kind {
	case model.Error400:
		u.logger.Errorf("uploader: batch %d rejected as malformed (400), dropping", id)
		u.storage.Remove(id)

		return true

	case model.Error401:
		u.logger.Errorf("uploader: batch %d rejected, invalid write key (401), cancelling", id)
		u.callbacks.invalidWriteKey()
		u.terminalCancel()

		return false

	case model.Error404:
		u.logger.Errorf("uploader: batch %d rejected, source disabled (404), cancelling", id)
		u.callbacks.sourceDisabled()
		u.terminalCancel()

		return false

	case model.Error413:
		u.logger.Errorf("uploader: batch %d rejected, payload too large (413), dropping", id)
		u.storage.Remove(id)

		return true

	default:
		u.storage.Remove(id)
		return true
	}
}

// replaceSentAt rewrites the sentAt placeholder in a rolled-over batch
// to the real UTC send time, immediately before each attempt.
func replaceSentAt(batch string, nowMs int64) string {
	ts := time.UnixMilli(nowMs).UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.Replace(batch, sentAtPlaceholder, ts, 1)
}
