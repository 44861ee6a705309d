// Package slack posts messages via the Slack Web API.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linkrelay/backend/internal/pipeline"
)

// Client posts messages with a static bot token.
type Client struct {
	httpClient *http.Client
	token      string
	apiBaseURL string
	logger     *zap.Logger
}

// NewClient creates a Slack client.
func NewClient(token, apiBaseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      token,
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		logger:     logger,
	}
}

type postMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// PostMessage sends text to a channel via chat.postMessage. Delivery is
// best-effort: a transport failure returns a DeliveryError, but a response
// with ok=false is a soft failure: logged with the provider's reason and
// reported as delivered=false with a nil error.
func (c *Client) PostMessage(ctx context.Context, channel, text string) (bool, error) {
	payload, err := json.Marshal(postMessageRequest{Channel: channel, Text: text})
	if err != nil {
		return false, &pipeline.DeliveryError{Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/api/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return false, &pipeline.DeliveryError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, &pipeline.DeliveryError{Err: fmt.Errorf("post message: %w", err)}
	}
	defer resp.Body.Close()

	var body postMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, &pipeline.DeliveryError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if !body.OK {
		c.logger.Warn("slack rejected message",
			zap.String("channel", channel),
			zap.String("reason", body.Error),
		)
		return false, nil
	}
	return true, nil
}
