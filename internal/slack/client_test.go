package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkrelay/backend/internal/pipeline"
)

func TestPostMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat.postMessage", r.URL.Path)
		assert.Equal(t, "Bearer xoxb-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body postMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "#testing", body.Channel)
		assert.Equal(t, "hello", body.Text)

		json.NewEncoder(w).Encode(postMessageResponse{OK: true})
	}))
	defer srv.Close()

	c := NewClient("xoxb-token", srv.URL, nil)
	delivered, err := c.PostMessage(context.Background(), "#testing", "hello")
	require.NoError(t, err)
	assert.True(t, delivered)
}

func TestPostMessageSoftFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(postMessageResponse{OK: false, Error: "channel_not_found"})
	}))
	defer srv.Close()

	c := NewClient("xoxb-token", srv.URL, nil)
	delivered, err := c.PostMessage(context.Background(), "#missing", "hello")
	require.NoError(t, err)
	assert.False(t, delivered)
}

func TestPostMessageTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient("xoxb-token", srv.URL, nil)
	_, err := c.PostMessage(context.Background(), "#testing", "hello")
	var delErr *pipeline.DeliveryError
	require.ErrorAs(t, err, &delErr)
}
