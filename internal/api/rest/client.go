package rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ameyamatmk/voice-diary/internal/logger"
	"github.com/ameyamatmk/voice-diary/internal/model"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodySize     = 1 << 20
)

var _ model.RelyingParty = (*Client)(nil)

// Client talks to the relying-party service over JSON/HTTP. The session
// credential is a cookie kept by the client's jar and is never read here.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *logger.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	tlsConfig *tls.Config
}

// WithTLSConfig sets the TLS settings used to reach the relying party.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = cfg
	}
}

// NewClient creates a Client for the service rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *logger.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse relying party url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("relying party url must be http or https, got %q", baseURL)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	if o.tlsConfig != nil {
		base.TLSClientConfig = o.tlsConfig
	}
	transport := otelhttp.NewTransport(NewLoggingTransport(base, logger))

	return &Client{
		baseURL: u,
		http: &http.Client{
			Jar:       jar,
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}, nil
}

func (c *Client) endpoint(elem ...string) string {
	return c.baseURL.JoinPath(append([]string{"api", "auth"}, elem...)...).String()
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", model.ErrNetworkFailure, method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil
	}

	err = json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response of %s %s: %w", method, req.URL.Path, err)
	}

	return nil
}

// decodeEnvelope decodes raw into out, unwrapping {key: ...} when present.
func decodeEnvelope(raw json.RawMessage, key string, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return fmt.Errorf("failed to decode %s envelope: %w", key, err)
		}
		if inner, ok := envelope[key]; ok {
			trimmed = inner
		}
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}
