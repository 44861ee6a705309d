// Package zoom talks to the Zoom OAuth and recordings APIs.
package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linkrelay/backend/internal/pipeline"
)

// transcriptExtension is the recording file type carrying the in-meeting
// chat log. The comparison is case-sensitive: Zoom reports "TXT" exactly.
const transcriptExtension = "TXT"

// Client calls Zoom's OAuth token endpoint and recordings API.
type Client struct {
	httpClient    *http.Client
	clientID      string
	clientSecret  string
	redirectURI   string
	oauthTokenURL string
	apiBaseURL    string
	logger        *zap.Logger
}

// Config holds the Zoom app credentials and endpoints for a Client.
type Config struct {
	ClientID      string
	ClientSecret  string
	RedirectURI   string
	OAuthTokenURL string
	APIBaseURL    string
}

// NewClient creates a Zoom API client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		clientID:      cfg.ClientID,
		clientSecret:  cfg.ClientSecret,
		redirectURI:   cfg.RedirectURI,
		oauthTokenURL: cfg.OAuthTokenURL,
		apiBaseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		logger:        logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// ExchangeCode trades a one-time authorization code for a bearer access
// token. The redirect URI must exactly match the one registered with Zoom.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &pipeline.AuthError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &pipeline.AuthError{Err: fmt.Errorf("token request: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &pipeline.AuthError{Err: fmt.Errorf("token status: %d", resp.StatusCode)}
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &pipeline.AuthError{Err: fmt.Errorf("decode token response: %w", err)}
	}
	if body.AccessToken == "" {
		return "", &pipeline.AuthError{Err: fmt.Errorf("token response missing access_token")}
	}
	return body.AccessToken, nil
}

// RecordingFile is one entry in a meeting's recording list.
type RecordingFile struct {
	FileExtension string `json:"file_extension"`
	DownloadURL   string `json:"download_url"`
}

type recordingsResponse struct {
	RecordingFiles []RecordingFile `json:"recording_files"`
}

// FetchTranscript locates and downloads the chat transcript for a meeting.
// It lists the meeting's recordings and selects the first entry tagged TXT in
// provider order; remaining entries are ignored. Returns ok=false when the
// listing does not succeed or no TXT entry exists (no transcript is not an
// error). Transport failures return a ResolverError.
func (c *Client) FetchTranscript(ctx context.Context, meetingID, token string) (string, bool, error) {
	listURL := fmt.Sprintf("%s/v2/meetings/%s/recordings", c.apiBaseURL, url.PathEscape(meetingID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return "", false, &pipeline.ResolverError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, &pipeline.ResolverError{Err: fmt.Errorf("list recordings: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("recording list not available",
			zap.String("meeting_id", meetingID),
			zap.Int("status", resp.StatusCode),
		)
		return "", false, nil
	}

	var body recordingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false, &pipeline.ResolverError{Err: fmt.Errorf("decode recording list: %w", err)}
	}

	var downloadURL string
	for _, f := range body.RecordingFiles {
		if f.FileExtension == transcriptExtension {
			downloadURL = f.DownloadURL
			break
		}
	}
	if downloadURL == "" {
		return "", false, nil
	}

	text, err := c.download(ctx, downloadURL, token)
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (c *Client) download(ctx context.Context, downloadURL, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", &pipeline.ResolverError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &pipeline.ResolverError{Err: fmt.Errorf("download transcript: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &pipeline.ResolverError{Err: fmt.Errorf("download status: %d", resp.StatusCode)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &pipeline.ResolverError{Err: fmt.Errorf("read transcript: %w", err)}
	}
	return string(raw), nil
}
