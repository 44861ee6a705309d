// Package webhook receives Zoom event notifications. The handler only parses
// and enqueues; all provider calls happen in the background worker, and the
// response is always 200 so Zoom never retries the event into the pipeline.
package webhook

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/linkrelay/backend/internal/outcomes"
	"github.com/linkrelay/backend/pkg/queue"
)

// EventMeetingEnded is the only event type that triggers the pipeline.
const EventMeetingEnded = "meeting.ended"

// Event is the inbound Zoom webhook body.
type Event struct {
	Event   string `json:"event"`
	Payload struct {
		AccountID string `json:"account_id"`
		Object    struct {
			ID                string `json:"id"`
			UUID              string `json:"uuid"`
			Topic             string `json:"topic"`
			HostID            string `json:"host_id"`
			AuthorizationCode string `json:"authorization_code"`
		} `json:"object"`
	} `json:"payload"`
}

// Enqueuer hands meeting-ended jobs to the background worker.
type Enqueuer interface {
	EnqueueMeetingEnded(ctx context.Context, payload queue.MeetingEndedPayload) error
}

// OutcomeRecorder receives the outcome of events that never reach the queue.
type OutcomeRecorder interface {
	Record(ctx context.Context, o outcomes.Outcome)
}

// Handler handles POST /webhook.
type Handler struct {
	queue    Enqueuer
	recorder OutcomeRecorder
	logger   *zap.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(q Enqueuer, recorder OutcomeRecorder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{queue: q, recorder: recorder, logger: logger}
}

// Receive acknowledges a Zoom event. Events other than meeting.ended are
// acknowledged and ignored. The response is 200 regardless of internal
// outcome; failures show up in the log stream and the outcome ring only.
func (h *Handler) Receive(c *gin.Context) {
	var ev Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		h.logger.Warn("unparseable webhook body", zap.Error(err))
		c.String(http.StatusOK, "OK")
		return
	}

	if ev.Event != EventMeetingEnded {
		h.logger.Debug("event ignored", zap.String("event", ev.Event))
		c.String(http.StatusOK, "OK")
		return
	}

	payload := queue.MeetingEndedPayload{
		MeetingID:         ev.Payload.Object.ID,
		HostID:            ev.Payload.Object.HostID,
		AuthorizationCode: ev.Payload.Object.AuthorizationCode,
	}
	if err := h.queue.EnqueueMeetingEnded(c.Request.Context(), payload); err != nil {
		h.logger.Error("enqueue meeting-ended job failed", zap.Error(err), zap.String("meeting_id", payload.MeetingID))
		if h.recorder != nil {
			h.recorder.Record(c.Request.Context(), outcomes.Outcome{
				MeetingID: payload.MeetingID,
				Status:    outcomes.StatusEnqueueFailed,
				Detail:    err.Error(),
			})
		}
		c.String(http.StatusOK, "OK")
		return
	}

	h.logger.Info("meeting-ended event enqueued",
		zap.String("meeting_id", payload.MeetingID),
		zap.String("host_id", payload.HostID),
	)
	c.String(http.StatusOK, "OK")
}
