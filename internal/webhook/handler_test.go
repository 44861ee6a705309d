package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkrelay/backend/internal/outcomes"
	"github.com/linkrelay/backend/pkg/queue"
)

type fakeEnqueuer struct {
	calls    int
	payloads []queue.MeetingEndedPayload
	err      error
}

func (f *fakeEnqueuer) EnqueueMeetingEnded(_ context.Context, payload queue.MeetingEndedPayload) error {
	f.calls++
	f.payloads = append(f.payloads, payload)
	return f.err
}

type fakeRecorder struct {
	recorded []outcomes.Outcome
}

func (f *fakeRecorder) Record(_ context.Context, o outcomes.Outcome) {
	f.recorded = append(f.recorded, o)
}

func newTestRouter(q Enqueuer, rec OutcomeRecorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/webhook", NewHandler(q, rec, nil).Receive)
	return router
}

func post(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestReceiveMeetingEnded(t *testing.T) {
	q := &fakeEnqueuer{}
	router := newTestRouter(q, nil)

	w := post(router, `{
		"event": "meeting.ended",
		"payload": {"object": {"id": "m-42", "host_id": "host-7", "authorization_code": "code-1"}}
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, 1, q.calls)
	assert.Equal(t, queue.MeetingEndedPayload{
		MeetingID:         "m-42",
		HostID:            "host-7",
		AuthorizationCode: "code-1",
	}, q.payloads[0])
}

func TestReceiveIgnoresOtherEvents(t *testing.T) {
	q := &fakeEnqueuer{}
	router := newTestRouter(q, nil)

	w := post(router, `{"event": "meeting.started", "payload": {"object": {"id": "m-42"}}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, 0, q.calls)
}

func TestReceiveAcksDespiteEnqueueFailure(t *testing.T) {
	q := &fakeEnqueuer{err: errors.New("redis down")}
	rec := &fakeRecorder{}
	router := newTestRouter(q, rec)

	w := post(router, `{"event": "meeting.ended", "payload": {"object": {"id": "m-42"}}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	// the failure is visible in the outcome ring, not the response
	require.Len(t, rec.recorded, 1)
	assert.Equal(t, outcomes.StatusEnqueueFailed, rec.recorded[0].Status)
	assert.Equal(t, "m-42", rec.recorded[0].MeetingID)
	assert.Contains(t, rec.recorded[0].Detail, "redis down")
}

func TestReceiveAcksUnparseableBody(t *testing.T) {
	q := &fakeEnqueuer{}
	router := newTestRouter(q, nil)

	w := post(router, `not json`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, q.calls)
}
