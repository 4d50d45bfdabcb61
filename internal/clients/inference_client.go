package clients

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"

	"golang.org/x/oauth2"
)

type InferenceConfig struct {
	Endpoint string
	// HealthURL defaults to Endpoint.
	HealthURL string
	// Token is sent as a bearer token when set.
	Token         string
	Timeout       time.Duration
	MaxMediaBytes int64
	// AllowPrivateMedia lets FetchMedia reach loopback, private and link-local hosts.
	AllowPrivateMedia bool
}

// InferenceClient talks to the hosted emotion model. It posts raw media and returns the
// reply body untouched; shaping the reply is the normalizer's job.
type InferenceClient struct {
	Client *http.Client
	// mediaClient downloads user-supplied URLs. It never carries the inference token.
	mediaClient   *http.Client
	endpoint      string
	healthURL     string
	maxMediaBytes int64
}

func NewInferenceClient(cfg InferenceConfig) *InferenceClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DEFAULT_INFERENCE_TIMEOUT
	}
	maxMedia := cfg.MaxMediaBytes
	if maxMedia <= 0 {
		maxMedia = MAX_MEDIA_BYTES
	}
	healthURL := cfg.HealthURL
	if healthURL == "" {
		healthURL = cfg.Endpoint
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
		httpClient.Timeout = timeout
	}

	slog.Info("[InferenceClient] Initializing Client",
		slog.String("endpoint", cfg.Endpoint),
		slog.Duration("timeout", timeout),
		slog.Bool("authenticated", cfg.Token != ""))

	return &InferenceClient{
		Client:        httpClient,
		mediaClient:   newMediaClient(timeout, cfg.AllowPrivateMedia),
		endpoint:      cfg.Endpoint,
		healthURL:     healthURL,
		maxMediaBytes: maxMedia,
	}
}

// Analyze sends one image or video to the model and returns the raw reply.
func (c *InferenceClient) Analyze(ctx context.Context, media []byte, contentType string) ([]byte, error) {
	if len(media) == 0 {
		return nil, ErrEmptyMedia
	}
	if int64(len(media)) > c.maxMediaBytes {
		return nil, ErrMediaTooLarge
	}
	if contentType == "" {
		contentType = SniffContentType(media)
	}

	slog.Info("[InferenceClient] Requesting emotion analysis",
		slog.String("content_type", contentType),
		slog.Int("bytes", len(media)))
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(media))
	if err != nil {
		slog.Error("[InferenceClient] Failed to build request",
			slog.String("endpoint", c.endpoint),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := c.Client.Do(req)
	if err != nil {
		slog.Error("[InferenceClient] Request failed",
			slog.String("endpoint", c.endpoint),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MAX_INFERENCE_RESPONSE_BYTES))
	if err != nil {
		slog.Error("[InferenceClient] Failed to read response",
			slog.String("endpoint", c.endpoint),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("[InferenceClient] Non-2xx response",
			slog.String("endpoint", c.endpoint),
			slog.Int("status", resp.StatusCode),
			getPreview(body))
		return nil, &UpstreamError{
			Endpoint:   c.endpoint,
			StatusCode: resp.StatusCode,
			Preview:    preview(body),
		}
	}

	slog.Info("[InferenceClient] Emotion analysis request successful",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("raw_response_length", len(body)))
	return body, nil
}

// FetchMedia downloads remote media for analysis. The content type comes from the
// response header when present and is sniffed otherwise.
func (c *InferenceClient) FetchMedia(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build media request: %w", err)
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := c.mediaClient.Do(req)
	if err != nil {
		slog.Warn("[InferenceClient] Media download failed",
			slog.String("url", url),
			slog.String("error", err.Error()))
		return nil, "", fmt.Errorf("media download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &UpstreamError{Endpoint: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxMediaBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read media: %w", err)
	}
	if int64(len(data)) > c.maxMediaBytes {
		return nil, "", ErrMediaTooLarge
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyMedia
	}

	contentType := resp.Header.Get("Content-Type")
	if !IsAnalyzableMedia(contentType) {
		contentType = SniffContentType(data)
	}
	return data, contentType, nil
}

func newMediaClient(timeout time.Duration, allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: MEDIA_DIAL_TIMEOUT}
	if !allowPrivate {
		dialer.Control = guardMediaDial
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// A proxy would do the dialing itself and the guard would only ever see its address.
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// guardMediaDial runs after DNS resolution, once per dialed address, so redirects and
// rebinding hostnames are checked against the address actually connected to.
func guardMediaDial(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenMediaHost, address)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrForbiddenMediaHost, address)
	}
	ip = ip.Unmap()
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("%w: %s", ErrForbiddenMediaHost, ip)
	}
	return nil
}

func (c *InferenceClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := c.Client.Do(req)
	if err != nil {
		slog.Warn("[InferenceClient] Health check failed",
			slog.String("error", errMsg(err, resp)))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// A model endpoint that only accepts POST still proves it is up with a 405.
	return resp.StatusCode < 500
}

func getPreview(respBody []byte) slog.Attr {
	return slog.String("raw_response", preview(respBody))
}

func preview(respBody []byte) string {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return raw
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
