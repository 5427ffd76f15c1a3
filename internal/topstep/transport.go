package topstep

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	pathLogin          = "/api/Auth/loginKey"
	pathValidate       = "/api/Auth/validate"
	pathContractSearch = "/api/Contract/search"
	pathRetrieveBars   = "/api/History/retrieveBars"

	loginTimeout    = 30 * time.Second
	validateTimeout = 15 * time.Second
	queryTimeout    = 30 * time.Second

	defaultClientTimeout = 30 * time.Second
	maxResponseBytes     = 10 << 20
	maxErrorBodyExcerpt  = 512
)

// HTTPDoer is the subset of *http.Client used to reach the provider.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient creates the pooled client shared by every component of a
// Client, with optional proxy support.
func NewHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   defaultClientTimeout,
		Transport: transport,
	}
}

// requester posts JSON to the provider and decodes JSON replies.
type requester struct {
	baseURL string
	client  HTTPDoer
}

type postOptions struct {
	token   string
	accept  string
	timeout time.Duration
}

func (r *requester) post(ctx context.Context, path string, body any, out any, opts postOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := r.baseURL + path
	meta := map[string]any{"path": path}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return transportWrapError(err, "topstep: encode request body", meta)
		}
		reader = bytes.NewReader(payload)
	}

	requestCtx := ctx
	cancel := func() {}
	if opts.timeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, opts.timeout)
	}
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, reader)
	if err != nil {
		return transportWrapError(err, "topstep: create request", meta)
	}
	accept := opts.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return transportWrapError(err, "topstep: execute request", meta)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportWrapError(err, "topstep: read response body", meta)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		meta["status"] = resp.StatusCode
		meta["body"] = excerpt(raw)
		return transportError("topstep: unexpected status "+resp.Status, resp.StatusCode, meta)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		meta["body"] = excerpt(raw)
		return decodeError(err, "topstep: decode response", meta)
	}
	if v, ok := out.(validator); ok {
		if err := v.validate(); err != nil {
			meta["body"] = excerpt(raw)
			return decodeError(err, "topstep: malformed response", meta)
		}
	}
	return nil
}

func excerpt(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBodyExcerpt {
		return s[:maxErrorBodyExcerpt] + "..."
	}
	return s
}
