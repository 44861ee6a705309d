// Package outcomes records per-pipeline-run results in a capped Redis list.
// The webhook response is always 200, so this ring plus the log stream is the
// only place run results are observable.
package outcomes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// ringKey is the Redis list holding recent outcomes, newest first.
	ringKey = "pipeline:outcomes"
	// ringSize caps the list length.
	ringSize = 200
)

// Status classifies how a pipeline run ended.
type Status string

const (
	StatusNotified            Status = "notified"
	StatusNoTranscript        Status = "no_transcript"
	StatusNoLinks             Status = "no_links"
	StatusDeliverySoftFailure Status = "delivery_soft_failure"
	StatusAuthFailed          Status = "auth_failed"
	StatusMissingCredential   Status = "missing_credential"
	StatusStoreFailed         Status = "store_failed"
	StatusResolverFailed      Status = "resolver_failed"
	StatusDeliveryFailed      Status = "delivery_failed"
	StatusEnqueueFailed       Status = "enqueue_failed"
)

// Outcome is one recorded pipeline result.
type Outcome struct {
	MeetingID string    `json:"meeting_id"`
	Status    Status    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// Recorder writes outcomes to the ring.
type Recorder struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRecorder creates an outcome recorder.
func NewRecorder(client *redis.Client, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{client: client, logger: logger}
}

// Record pushes an outcome onto the ring, trimming it to ringSize. Recording
// is itself best-effort: a Redis failure is logged, not returned, so outcome
// bookkeeping never fails a pipeline run.
func (r *Recorder) Record(ctx context.Context, o Outcome) {
	if o.At.IsZero() {
		o.At = time.Now().UTC()
	}
	raw, err := json.Marshal(o)
	if err != nil {
		r.logger.Error("marshal outcome", zap.Error(err))
		return
	}
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, ringKey, raw)
	pipe.LTrim(ctx, ringKey, 0, ringSize-1)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("record outcome failed", zap.Error(err), zap.String("meeting_id", o.MeetingID))
	}
}

// Recent returns up to n outcomes, newest first.
func (r *Recorder) Recent(ctx context.Context, n int) ([]Outcome, error) {
	if n <= 0 || n > ringSize {
		n = ringSize
	}
	raws, err := r.client.LRange(ctx, ringKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange outcomes: %w", err)
	}
	out := make([]Outcome, 0, len(raws))
	for _, raw := range raws {
		var o Outcome
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			r.logger.Warn("invalid outcome entry", zap.Error(err))
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
