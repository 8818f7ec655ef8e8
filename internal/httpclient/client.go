package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fluxload/flux/internal/config"
)

// Request describes one HTTP request to execute: either a plain body string
// or a multipart part list, never both.
type Request struct {
	Method    string
	URL       string
	Headers   map[string]string
	Body      string
	Multipart []config.MultipartPart
}

// Response carries the status code and the full body text of a completed
// request. Any HTTP status, including 4xx/5xx, is a successful execution;
// only transport-level failures surface as errors.
type Response struct {
	StatusCode int
	Body       string
}

// Client executes requests over a shared, tuned http.Client. Each worker
// owns one Client instance for its whole lifetime.
type Client struct {
	http *http.Client
}

// NewClient creates a Client with connection pooling sized for sustained
// concurrent load.
func NewClient(timeout time.Duration) *Client {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Execute sends the request and reads the whole response body. Multipart
// bodies are assembled before any network activity, so a missing upload file
// fails without touching the target.
func (c *Client) Execute(ctx context.Context, req Request) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	var reader io.Reader
	contentType := ""
	if len(req.Multipart) > 0 {
		body, ctype, err := buildMultipartBody(req.Multipart)
		if err != nil {
			return nil, err
		}
		reader = body
		contentType = ctype
	} else if req.Body != "" {
		reader = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, reader)
	if err != nil {
		return nil, err
	}

	for key, value := range req.Headers {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" || strings.ContainsAny(trimmedKey, "\r\n") {
			return nil, fmt.Errorf("invalid header key %q", key)
		}
		if strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("invalid header value for %s", trimmedKey)
		}
		httpReq.Header.Set(http.CanonicalHeaderKey(trimmedKey), value)
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}

// ErrUnknownPartType signals a multipart part whose type is neither "file"
// nor "field". It indicates a configuration defect discovered lazily per
// call and fails that request only.
var ErrUnknownPartType = errors.New("unknown multipart part type")
