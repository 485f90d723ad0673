package lms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yungbote/qubitgyan-student/internal/platform/ctxutil"
	"github.com/yungbote/qubitgyan-student/internal/platform/envutil"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

const (
	DefaultBaseURL = "https://qubitgyan-api.onrender.com/api/v1"

	maxResponseBytes = 8 << 20
	headerRequestID  = "X-Request-Id"
)

// TokenSource supplies a bearer token when the request context carries none.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Observer is told about every upstream round trip. status is 0 when the
// request never got a response.
type Observer interface {
	ObserveUpstream(method string, status int, dur time.Duration)
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Tokens     TokenSource
	HTTPClient *http.Client
	Log        *logger.Logger
	Observer   Observer
}

// Client talks to the LMS REST API. It is safe for concurrent use.
type Client struct {
	log        *logger.Logger
	baseURL    string
	timeout    time.Duration
	maxRetries int
	tokens     TokenSource
	httpClient *http.Client
	observer   Observer
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("lms base url required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		log:        log.With("client", "LMSClient"),
		baseURL:    baseURL,
		timeout:    timeout,
		maxRetries: maxRetries,
		tokens:     opts.Tokens,
		httpClient: hc,
		observer:   opts.Observer,
	}, nil
}

func NewFromEnv(log *logger.Logger, tokens TokenSource) (*Client, error) {
	return New(OptionsFromEnv(log, tokens))
}

// OptionsFromEnv reads LMS_API_URL, LMS_TIMEOUT_SECONDS and LMS_MAX_RETRIES.
func OptionsFromEnv(log *logger.Logger, tokens TokenSource) Options {
	return Options{
		BaseURL:    envutil.String("LMS_API_URL", DefaultBaseURL),
		Timeout:    envutil.Seconds("LMS_TIMEOUT_SECONDS", 15*time.Second),
		MaxRetries: envutil.Int("LMS_MAX_RETRIES", 2),
		Tokens:     tokens,
		Log:        log,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) bearer(ctx context.Context) string {
	if tok := strings.TrimSpace(ctxutil.AccessToken(ctx)); tok != "" {
		return tok
	}
	if c.tokens == nil {
		return ""
	}
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		c.log.Debug("token source returned no token", "error", err)
		return ""
	}
	return strings.TrimSpace(tok)
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := c.bearer(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if id := ctxutil.RequestID(ctx); id != "" {
		req.Header.Set(headerRequestID, id)
	}
}

// getRaw returns the undecoded body so list endpoints can branch on the envelope.
func (c *Client) getRaw(ctx context.Context, path string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) doJSON(ctx context.Context, method string, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}

	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	attempts := 1
	if method != http.MethodPost {
		attempts += c.maxRetries
	}

	var lastErr error
	backoff := 200 * time.Millisecond
	for attempt := 0; attempt < attempts; attempt++ {
		if ctx2.Err() != nil {
			return ctx2.Err()
		}
		req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return err
		}
		c.setHeaders(ctx, req)

		started := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.observe(method, 0, started)
			lastErr = err
		} else {
			c.observe(method, resp.StatusCode, started)
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
			_ = resp.Body.Close()
			if readErr != nil {
				return readErr
			}
			if len(raw) > maxResponseBytes {
				return fmt.Errorf("%s %s: %w", method, path, ErrResponseTooLarge)
			}
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				if out == nil || len(bytes.TrimSpace(raw)) == 0 {
					return nil
				}
				// List endpoints branch on the envelope themselves and treat
				// malformed bodies as empty.
				if rm, ok := out.(*json.RawMessage); ok {
					*rm = append((*rm)[:0], raw...)
					return nil
				}
				if err := json.Unmarshal(raw, out); err != nil {
					return fmt.Errorf("decode %s %s: %w", method, path, err)
				}
				return nil
			}
			lastErr = parseHTTPError(resp.StatusCode, raw)
			if !retryable(resp.StatusCode) {
				return lastErr
			}
		}

		if attempt < attempts-1 {
			c.log.Debug("retrying lms request", "method", method, "path", path, "attempt", attempt+1, "error", lastErr)
			select {
			case <-ctx2.Done():
				return ctx2.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	if lastErr == nil {
		lastErr = errors.New("request failed")
	}
	return lastErr
}

func (c *Client) observe(method string, status int, started time.Time) {
	if c.observer != nil {
		c.observer.ObserveUpstream(method, status, time.Since(started))
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
