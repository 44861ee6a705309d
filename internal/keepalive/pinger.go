// Package keepalive issues a periodic liveness GET so free-tier hosts do not
// idle the process. It shares no state with the pipeline.
package keepalive

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger GETs a fixed URL on a fixed interval. Failures are logged and
// ignored.
type Pinger struct {
	httpClient *http.Client
	url        string
	interval   time.Duration
	logger     *zap.Logger
}

// NewPinger creates a pinger.
func NewPinger(url string, interval time.Duration, logger *zap.Logger) *Pinger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pinger{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
		interval:   interval,
		logger:     logger,
	}
}

// Run pings until ctx is cancelled.
func (p *Pinger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("keepalive stopping")
			return
		case <-ticker.C:
			p.ping(ctx)
		}
	}
}

func (p *Pinger) ping(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.logger.Warn("keepalive request", zap.Error(err))
		return
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("keepalive ping failed", zap.Error(err))
		return
	}
	resp.Body.Close()
	p.logger.Debug("keepalive ping", zap.Int("status", resp.StatusCode))
}
