package httpprobe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuniesmith/fks-main/internal/domain"
)

func TestProber_ReturnsAnyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			_, _ = w.Write([]byte("ok"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewProber()

	resp, err := p.Get(context.Background(), srv.URL+"/health", time.Second)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "ok", string(resp.Body))

	resp, err = p.Get(context.Background(), srv.URL+"/other", time.Second)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestProber_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewProber().Get(context.Background(), srv.URL, 50*time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrProbeTimeout)
}

func TestProber_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewProber().Get(context.Background(), url, time.Second)
	assert.ErrorIs(t, err, domain.ErrProbeTransport)
}

func TestProber_InvalidURL(t *testing.T) {
	_, err := NewProber().Get(context.Background(), "://nope", time.Second)
	assert.ErrorIs(t, err, domain.ErrProbeTransport)
}
