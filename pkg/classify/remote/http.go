package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/designtree/pkg/cache"
	"github.com/matzehuels/designtree/pkg/classify"
	"github.com/matzehuels/designtree/pkg/design"
	"github.com/matzehuels/designtree/pkg/observability"
)

// DefaultTimeout bounds a single HTTP classification request.
const DefaultTimeout = 10 * time.Second

// HTTPClassifier posts a [classify.Summary] as JSON to an endpoint and
// parses the response with [ParseAnswer]. It performs no retries.
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
	headers  map[string]string
}

// HTTPOption configures an [HTTPClassifier].
type HTTPOption func(*HTTPClassifier)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClassifier) {
		if c != nil {
			h.client = c
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) HTTPOption {
	return func(h *HTTPClassifier) { h.headers[key] = value }
}

// WithBearerToken authenticates requests with a bearer token.
func WithBearerToken(token string) HTTPOption {
	return WithHeader("Authorization", "Bearer "+token)
}

// NewHTTPClassifier creates a classifier posting to endpoint.
func NewHTTPClassifier(endpoint string, opts ...HTTPOption) *HTTPClassifier {
	h := &HTTPClassifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		headers:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name implements [classify.External].
func (h *HTTPClassifier) Name() string { return "http" }

// CacheKey implements [classify.CacheKeyer]. Answers are scoped to the
// endpoint, so switching endpoints does not reuse cached answers.
func (h *HTTPClassifier) CacheKey() string {
	return "http-" + cache.Hash([]byte(h.endpoint))[:16]
}

// Classify implements [classify.External].
func (h *HTTPClassifier) Classify(ctx context.Context, s classify.Summary) (design.Classification, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return design.Classification{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return design.Classification{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain")
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := h.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return design.Classification{}, err
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return design.Classification{}, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxAnswerBytes))
	if err != nil {
		return design.Classification{}, err
	}
	return ParseAnswer(body)
}

var _ classify.External = (*HTTPClassifier)(nil)
