// Package probe issues HTTP health checks against the target service.
package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/ports"
)

// HTTPProber implements the Prober port with a plain http.Client.
type HTTPProber struct {
	client   *http.Client
	interval time.Duration
}

// NewHTTPProber builds a prober with sane per-request timeouts.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{
		client:   &http.Client{Timeout: 5 * time.Second},
		interval: 400 * time.Millisecond,
	}
}

// Check performs a single GET and returns the observed status. Connection
// errors surface as the error return; the caller decides whether refusal is
// itself the expected symptom (port_mismatch).
func (p *HTTPProber) Check(ctx context.Context, url string) (domain.ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.ProbeResult{URL: url}, err
	}
	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return domain.ProbeResult{URL: url, Latency: time.Since(start)}, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return domain.ProbeResult{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Latency:    time.Since(start),
	}, nil
}

// WaitSettled polls until the target answers with a settled status (200, 500
// or 403) or the context expires. The last observation is returned either way.
func (p *HTTPProber) WaitSettled(ctx context.Context, url string) (domain.ProbeResult, error) {
	var last domain.ProbeResult
	var lastErr error
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		last, lastErr = p.Check(ctx, url)
		if lastErr == nil && last.Settled() {
			return last, nil
		}
		select {
		case <-ctx.Done():
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			return last, lastErr
		case <-ticker.C:
		}
	}
}

var _ ports.Prober = (*HTTPProber)(nil)
