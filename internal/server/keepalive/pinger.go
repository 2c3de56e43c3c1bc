// Package keepalive periodically requests a URL so that hosting platforms
// which idle out quiet processes keep the gateway running.
package keepalive

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/netx"
)

const requestTimeout = 30 * time.Second

// Pinger issues a GET against a fixed URL on a fixed interval.
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   logging.Logger
}

// NewPinger returns a Pinger for url. Each request is bounded by a 30 second
// timeout so a hung endpoint cannot stall the next tick.
func NewPinger(url string, interval time.Duration, l logging.Logger) *Pinger {
	return &Pinger{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   l.With("module", "keepalive"),
	}
}

// Run pings immediately and then once per interval until ctx is done.
// An empty URL or non-positive interval disables the pinger.
func (p *Pinger) Run(ctx context.Context) {
	if p.url == "" || p.interval <= 0 {
		p.logger.Debug(ctx, "keep-alive disabled")
		return
	}

	p.logger.Info(ctx, "Starting keep-alive pinger", "url", p.url, "interval", p.interval.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.ping(ctx); err != nil {
			p.logger.Debug(ctx, "keep-alive ping failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Pinger) ping(ctx context.Context) error {
	return netx.Get(ctx, p.client, p.url)
}
