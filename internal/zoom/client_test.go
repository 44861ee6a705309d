package zoom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkrelay/backend/internal/pipeline"
)

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "one-time-code", r.PostForm.Get("code"))
		assert.Equal(t, "https://relay.test/oauth/callback", r.PostForm.Get("redirect_uri"))

		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	}))
	defer srv.Close()

	c := NewClient(Config{
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		RedirectURI:   "https://relay.test/oauth/callback",
		OAuthTokenURL: srv.URL,
	}, nil)

	token, err := c.ExchangeCode(context.Background(), "one-time-code")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestExchangeCodeFailure(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		c := NewClient(Config{OAuthTokenURL: srv.URL}, nil)
		_, err := c.ExchangeCode(context.Background(), "bad-code")
		var authErr *pipeline.AuthError
		require.ErrorAs(t, err, &authErr)
	})

	t.Run("missing access_token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"token_type": "bearer"})
		}))
		defer srv.Close()

		c := NewClient(Config{OAuthTokenURL: srv.URL}, nil)
		_, err := c.ExchangeCode(context.Background(), "code")
		var authErr *pipeline.AuthError
		require.ErrorAs(t, err, &authErr)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := NewClient(Config{OAuthTokenURL: srv.URL}, nil)
		_, err := c.ExchangeCode(context.Background(), "code")
		var authErr *pipeline.AuthError
		require.ErrorAs(t, err, &authErr)
	})
}

func TestFetchTranscript(t *testing.T) {
	var downloads atomic.Int32
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/v2/meetings/m-1/recordings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(recordingsResponse{RecordingFiles: []RecordingFile{
			{FileExtension: "MP4", DownloadURL: srv.URL + "/video"},
			{FileExtension: "TXT", DownloadURL: srv.URL + "/chat"},
			{FileExtension: "TXT", DownloadURL: srv.URL + "/other-chat"},
		}})
	})
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		downloads.Add(1)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte("visit https://x.test"))
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(Config{APIBaseURL: srv.URL}, nil)
	text, ok, err := c.FetchTranscript(context.Background(), "m-1", "tok")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "visit https://x.test", text)
	// first TXT entry wins; /other-chat and /video are never fetched
	assert.Equal(t, int32(1), downloads.Load())
}

func TestFetchTranscriptAbsent(t *testing.T) {
	t.Run("no TXT entry", func(t *testing.T) {
		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			json.NewEncoder(w).Encode(recordingsResponse{RecordingFiles: []RecordingFile{
				{FileExtension: "MP4", DownloadURL: "https://provider.test/video"},
				{FileExtension: "txt", DownloadURL: "https://provider.test/lowercase"},
			}})
		}))
		defer srv.Close()

		c := NewClient(Config{APIBaseURL: srv.URL}, nil)
		_, ok, err := c.FetchTranscript(context.Background(), "m-1", "tok")
		require.NoError(t, err)
		assert.False(t, ok)
		// only the listing call; no download attempted
		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("listing not available", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := NewClient(Config{APIBaseURL: srv.URL}, nil)
		_, ok, err := c.FetchTranscript(context.Background(), "m-1", "tok")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestFetchTranscriptTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(Config{APIBaseURL: srv.URL}, nil)
	_, _, err := c.FetchTranscript(context.Background(), "m-1", "tok")
	var resErr *pipeline.ResolverError
	require.ErrorAs(t, err, &resErr)
}
