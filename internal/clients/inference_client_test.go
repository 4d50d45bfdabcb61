package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestInferenceClient_Analyze(t *testing.T) {
	var gotAuth, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"Happy": 0.9}`))
	}))
	defer srv.Close()

	c := NewInferenceClient(InferenceConfig{Endpoint: srv.URL, Token: "hf_secret"})

	raw, err := c.Analyze(context.Background(), pngHeader, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Happy": 0.9}`, string(raw))
	assert.Equal(t, "Bearer hf_secret", gotAuth)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, pngHeader, gotBody)
}

func TestInferenceClient_AnalyzeWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewInferenceClient(InferenceConfig{Endpoint: srv.URL})
	_, err := c.Analyze(context.Background(), pngHeader, "image/png")

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestInferenceClient_AnalyzeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model is loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewInferenceClient(InferenceConfig{Endpoint: srv.URL})
	_, err := c.Analyze(context.Background(), pngHeader, "image/png")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
	assert.Contains(t, upstream.Preview, "model is loading")
}

func TestInferenceClient_AnalyzeRejectsBadMedia(t *testing.T) {
	c := NewInferenceClient(InferenceConfig{Endpoint: "http://127.0.0.1:0", MaxMediaBytes: 4})

	_, err := c.Analyze(context.Background(), nil, "image/png")
	assert.ErrorIs(t, err, ErrEmptyMedia)

	_, err = c.Analyze(context.Background(), []byte("too large"), "image/png")
	assert.ErrorIs(t, err, ErrMediaTooLarge)
}

func TestInferenceClient_FetchMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/face.png":
			assert.Empty(t, r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(pngHeader)
		case "/big":
			_, _ = w.Write(make([]byte, 64))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewInferenceClient(InferenceConfig{
		Endpoint:          srv.URL,
		Token:             "hf_secret",
		MaxMediaBytes:     32,
		AllowPrivateMedia: true,
	})

	data, contentType, err := c.FetchMedia(context.Background(), srv.URL+"/face.png")
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", contentType)

	_, _, err = c.FetchMedia(context.Background(), srv.URL+"/big")
	assert.ErrorIs(t, err, ErrMediaTooLarge)

	_, _, err = c.FetchMedia(context.Background(), srv.URL+"/missing")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
}

func TestInferenceClient_FetchMediaBlocksLoopback(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	c := NewInferenceClient(InferenceConfig{Endpoint: "http://inference.invalid"})

	_, _, err := c.FetchMedia(context.Background(), srv.URL+"/face.png")
	require.ErrorIs(t, err, ErrForbiddenMediaHost)
	assert.Zero(t, hits.Load())
}

func TestGuardMediaDial(t *testing.T) {
	tests := []struct {
		address string
		allowed bool
	}{
		{address: "127.0.0.1:80"},
		{address: "[::1]:443"},
		{address: "10.0.0.1:80"},
		{address: "172.16.4.2:8080"},
		{address: "192.168.1.20:80"},
		{address: "169.254.169.254:80"},
		{address: "[fe80::1]:80"},
		{address: "[fd00::1]:80"},
		{address: "[::ffff:127.0.0.1]:80"},
		{address: "0.0.0.0:80"},
		{address: "8.8.8.8:443", allowed: true},
		{address: "[2606:4700::1111]:443", allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			err := guardMediaDial("tcp", tt.address, nil)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrForbiddenMediaHost)
		})
	}
}

func TestInferenceClient_HealthCheck(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusMethodNotAllowed)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	c := NewInferenceClient(InferenceConfig{Endpoint: srv.URL})
	assert.True(t, c.HealthCheck(context.Background()))

	status.Store(http.StatusBadGateway)
	assert.False(t, c.HealthCheck(context.Background()))

	down := NewInferenceClient(InferenceConfig{Endpoint: "http://127.0.0.1:1"})
	assert.False(t, down.HealthCheck(context.Background()))
}
