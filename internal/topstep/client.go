// Package topstep talks to the TopstepX gateway: it keeps a bearer token
// alive, resolves symbol roots to active contracts and fetches daily bars.
package topstep

import (
	"context"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"TopstepSentinel/internal/model"
)

// DefaultBaseURL is the production gateway host.
const DefaultBaseURL = "https://api.topstepx.com"

// Config holds the settings needed to build a Client.
type Config struct {
	BaseURL  string
	UserName string
	APIKey   string
	Proxy    string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithLogger sets the logger used by every component.
func WithLogger(logger glog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client composes the contract resolver and bar fetcher behind one call.
type Client struct {
	Auth      *Authenticator
	Contracts *ContractResolver
	History   *BarFetcher

	httpClient HTTPDoer
	logger     glog.Logger
	now        func() time.Time
}

// NewClient validates cfg and wires the components. Missing credentials fail
// here, before any network call.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	userName := strings.TrimSpace(cfg.UserName)
	apiKey := strings.TrimSpace(cfg.APIKey)
	if userName == "" || apiKey == "" {
		return nil, configError("topstep: username or api key is missing")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		logger: glog.Nop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(cfg.Proxy)
	}

	req := &requester{baseURL: baseURL, client: c.httpClient}
	c.Auth = newAuthenticator(req, userName, apiKey, c.now, c.logger)
	c.Contracts = &ContractResolver{auth: c.Auth, req: req, logger: c.logger}
	c.History = &BarFetcher{auth: c.Auth, req: req, now: c.now, logger: c.logger}
	return c, nil
}

// Name identifies the data source in logs and reports.
func (c *Client) Name() string { return "topstepx" }

// Snapshot resolves symbolRoot and fetches the latest closed daily bar of its
// active contract. When no contract is found the bar request is skipped.
func (c *Client) Snapshot(ctx context.Context, symbolRoot string, live bool) (*model.Snapshot, error) {
	snap := &model.Snapshot{Symbol: strings.TrimSpace(symbolRoot)}

	contractID, found, err := c.Contracts.Resolve(ctx, symbolRoot, live)
	if err != nil {
		return nil, err
	}
	if !found {
		c.logger.Info("topstep: could not resolve active contract", "symbol", snap.Symbol)
		snap.FetchedAt = c.now()
		return snap, nil
	}
	snap.ContractID = contractID

	bar, err := c.History.LatestClosedBar(ctx, contractID, live)
	if err != nil {
		return nil, err
	}
	snap.Bar = bar
	snap.FetchedAt = c.now()
	return snap, nil
}

// YesterdaysDailyBar returns the most recent closed daily bar for the active
// contract of symbolRoot, or nil when there is no contract or no bar.
func (c *Client) YesterdaysDailyBar(ctx context.Context, symbolRoot string, live bool) (*model.Bar, error) {
	snap, err := c.Snapshot(ctx, symbolRoot, live)
	if err != nil {
		return nil, err
	}
	return snap.Bar, nil
}
