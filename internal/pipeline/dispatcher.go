// Package pipeline runs the meeting-ended event pipeline: obtain a Zoom
// credential, fetch the meeting's chat transcript, extract the links shared
// in it, and post them to Slack.
package pipeline

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/linkrelay/backend/config"
	"github.com/linkrelay/backend/internal/links"
	"github.com/linkrelay/backend/internal/outcomes"
)

// messageHeader prefixes every relayed link list.
const messageHeader = "Here are the links shared during the Zoom meeting:"

// MeetingEnded is one inbound meeting-ended event, consumed once.
type MeetingEnded struct {
	MeetingID         string
	HostID            string
	AuthorizationCode string
}

// CredentialSource reads stored credentials for the cached profile.
type CredentialSource interface {
	Get(ctx context.Context, hostID string) (token string, found bool, err error)
}

// ZoomAPI covers the two Zoom operations the pipeline needs.
type ZoomAPI interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchTranscript(ctx context.Context, meetingID, token string) (text string, ok bool, err error)
}

// Notifier delivers the composed message. delivered=false with a nil error
// is a soft failure reported by the provider.
type Notifier interface {
	PostMessage(ctx context.Context, channel, text string) (delivered bool, err error)
}

// OutcomeRecorder receives the result of every pipeline run.
type OutcomeRecorder interface {
	Record(ctx context.Context, o outcomes.Outcome)
}

// Dispatcher sequences the pipeline stages for one event. Concurrent Run
// calls are independent; no state is shared between them beyond the
// credential store.
type Dispatcher struct {
	zoom     ZoomAPI
	notifier Notifier
	creds    CredentialSource
	recorder OutcomeRecorder
	channel  string
	authMode config.AuthMode
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. authMode selects how credentials are
// obtained: AuthModeCached reads the store by host ID, AuthModeEmbedded
// exchanges the event's authorization code.
func NewDispatcher(zoomAPI ZoomAPI, notifier Notifier, creds CredentialSource, recorder OutcomeRecorder, channel string, authMode config.AuthMode, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		zoom:     zoomAPI,
		notifier: notifier,
		creds:    creds,
		recorder: recorder,
		channel:  channel,
		authMode: authMode,
		logger:   logger,
	}
}

// Run executes the pipeline for one event: credential, transcript, links,
// notification, strictly in that order. An absent transcript or an empty
// link set ends the run successfully with nothing posted. Every run records
// an outcome; the returned error, if any, carries the failing stage's type.
func (d *Dispatcher) Run(ctx context.Context, ev MeetingEnded) error {
	log := d.logger.With(zap.String("meeting_id", ev.MeetingID))

	token, err := d.credential(ctx, ev)
	if err != nil {
		d.record(ctx, ev, statusForError(err), err.Error())
		return err
	}

	text, ok, err := d.zoom.FetchTranscript(ctx, ev.MeetingID, token)
	if err != nil {
		d.record(ctx, ev, outcomes.StatusResolverFailed, err.Error())
		return err
	}
	if !ok {
		log.Info("no chat transcript for meeting")
		d.record(ctx, ev, outcomes.StatusNoTranscript, "")
		return nil
	}

	found := links.Extract(text)
	if len(found) == 0 {
		log.Info("no links in transcript")
		d.record(ctx, ev, outcomes.StatusNoLinks, "")
		return nil
	}

	message := messageHeader + "\n" + strings.Join(found, "\n")
	delivered, err := d.notifier.PostMessage(ctx, d.channel, message)
	if err != nil {
		d.record(ctx, ev, outcomes.StatusDeliveryFailed, err.Error())
		return err
	}
	if !delivered {
		d.record(ctx, ev, outcomes.StatusDeliverySoftFailure, "")
		return nil
	}

	log.Info("links relayed", zap.Int("count", len(found)), zap.String("channel", d.channel))
	d.record(ctx, ev, outcomes.StatusNotified, "")
	return nil
}

// credential obtains the bearer token for this event per the configured
// profile. In cached mode a missing store entry aborts before any network
// call is made.
func (d *Dispatcher) credential(ctx context.Context, ev MeetingEnded) (string, error) {
	if d.authMode == config.AuthModeEmbedded {
		return d.zoom.ExchangeCode(ctx, ev.AuthorizationCode)
	}
	token, found, err := d.creds.Get(ctx, ev.HostID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrMissingCredential
	}
	return token, nil
}

func (d *Dispatcher) record(ctx context.Context, ev MeetingEnded, status outcomes.Status, detail string) {
	if d.recorder == nil {
		return
	}
	d.recorder.Record(ctx, outcomes.Outcome{
		MeetingID: ev.MeetingID,
		Status:    status,
		Detail:    detail,
	})
}

// statusForError classifies credential-stage failures. A store read error is
// recorded as store_failed so an outage is distinguishable from a host that
// never completed the OAuth flow.
func statusForError(err error) outcomes.Status {
	var authErr *AuthError
	switch {
	case errors.Is(err, ErrMissingCredential):
		return outcomes.StatusMissingCredential
	case errors.As(err, &authErr):
		return outcomes.StatusAuthFailed
	default:
		return outcomes.StatusStoreFailed
	}
}
