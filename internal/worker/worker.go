// Package worker runs the meeting-ended pipeline off the job queue.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/linkrelay/backend/internal/pipeline"
	"github.com/linkrelay/backend/pkg/queue"
)

// dequeueBackoff is the pause after a dequeue error before polling again.
const dequeueBackoff = 5 * time.Second

// Runner executes one pipeline invocation.
type Runner interface {
	Run(ctx context.Context, ev pipeline.MeetingEnded) error
}

// Processor dequeues meeting-ended jobs and runs the pipeline. Failed jobs
// are logged and dropped; the outcome ring carries the failure detail.
type Processor struct {
	queue      *queue.Queue
	dispatcher Runner
	logger     *zap.Logger
}

// NewProcessor creates a pipeline processor.
func NewProcessor(q *queue.Queue, dispatcher Runner, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{queue: q, dispatcher: dispatcher, logger: logger}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeMeetingEnded {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.MeetingEndedPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return p.dispatcher.Run(ctx, pipeline.MeetingEnded{
		MeetingID:         payload.MeetingID,
		HostID:            payload.HostID,
		AuthorizationCode: payload.AuthorizationCode,
	})
}

// Run starts the worker loop: dequeue, process, drop on failure. Each job
// runs independently; ordering across jobs is not needed since every job
// carries its own meeting ID.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline worker stopping")
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(dequeueBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}
