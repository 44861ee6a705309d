package zoom

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CredentialWriter stores an exchanged credential under a host/user key.
type CredentialWriter interface {
	Put(ctx context.Context, hostID, token string) error
}

// OAuthHandler completes the Zoom OAuth flow for the cached-credential
// profile: it exchanges the callback code and stores the resulting token.
type OAuthHandler struct {
	client *Client
	store  CredentialWriter
	logger *zap.Logger
}

// NewOAuthHandler creates an OAuth callback handler.
func NewOAuthHandler(client *Client, store CredentialWriter, logger *zap.Logger) *OAuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OAuthHandler{client: client, store: store, logger: logger}
}

// Callback handles GET /oauth/callback. Zoom redirects here with a one-time
// code; the client_id query parameter identifies the installing user.
func (h *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	hostID := c.Query("client_id")
	if code == "" {
		c.String(http.StatusBadRequest, "missing code")
		return
	}

	token, err := h.client.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("oauth code exchange failed", zap.Error(err), zap.String("host_id", hostID))
		c.String(http.StatusInternalServerError, "OAuth flow failed.")
		return
	}
	if err := h.store.Put(c.Request.Context(), hostID, token); err != nil {
		h.logger.Error("store credential failed", zap.Error(err), zap.String("host_id", hostID))
		c.String(http.StatusInternalServerError, "OAuth flow failed.")
		return
	}

	h.logger.Info("oauth flow completed", zap.String("host_id", hostID))
	c.String(http.StatusOK, "OAuth flow completed. You can close this window.")
}
