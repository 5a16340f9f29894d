package httpprobe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/ports"
)

// maxBodyBytes caps how much of a response body is kept.
const maxBodyBytes = 4 << 20

// Prober issues GET requests over one pooled client shared by every probe.
type Prober struct {
	client *http.Client
}

// NewProber builds a prober on a pooled cleanhttp client.
func NewProber() *Prober {
	return &Prober{client: cleanhttp.DefaultPooledClient()}
}

// NewProberWithClient is used by tests.
func NewProberWithClient(client *http.Client) *Prober {
	return &Prober{client: client}
}

// Get implements ports.HTTPProber. The timeout covers the whole exchange,
// body included; timeout <= 0 leaves only the context deadline.
func (p *Prober) Get(ctx context.Context, url string, timeout time.Duration) (ports.HTTPResponse, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ports.HTTPResponse{}, fmt.Errorf("%w: %v", domain.ErrProbeTransport, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return ports.HTTPResponse{Latency: time.Since(start)}, classify(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	latency := time.Since(start)
	if err != nil {
		return ports.HTTPResponse{StatusCode: resp.StatusCode, Latency: latency}, classify(ctx, err)
	}

	return ports.HTTPResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		Latency:    latency,
	}, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrProbeTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrProbeTransport, err)
}

var _ ports.HTTPProber = (*Prober)(nil)
