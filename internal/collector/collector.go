package collector

import (
	"context"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"TopstepSentinel/internal/model"
	"TopstepSentinel/internal/recorder"
	"TopstepSentinel/internal/topstep"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	ContractID string
	Bar        *model.Bar
	Err        error

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Snapshot(_ context.Context, symbol string, _ bool) (*model.Snapshot, error) {
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	snap := &model.Snapshot{Symbol: symbol, ContractID: m.ContractID, FetchedAt: time.Now().UTC()}
	if m.ContractID != "" && m.Bar != nil {
		bar := *m.Bar
		snap.Bar = &bar
	}
	return snap, nil
}

// Calls returns the symbols requested so far.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Collector runs a lookup and records what happened.
type Collector struct {
	Fetcher  Fetcher
	Recorder recorder.Recorder
	Symbol   string
	Live     bool

	logger glog.Logger
}

// NewCollector creates a new Collector. A nil recorder disables persistence.
func NewCollector(fetcher Fetcher, rec recorder.Recorder, symbol string, live bool, logger glog.Logger) *Collector {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = glog.Nop()
	}
	return &Collector{
		Fetcher:  fetcher,
		Recorder: rec,
		Symbol:   strings.ToUpper(strings.TrimSpace(symbol)),
		Live:     live,
		logger:   logger,
	}
}

// Collect fetches the snapshot for symbol, or the default symbol when empty.
// Recorder failures are logged and never hide the lookup result.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.Snapshot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		symbol = c.Symbol
	}

	start := time.Now()
	snap, err := c.Fetcher.Snapshot(ctx, symbol, c.Live)
	evt := &recorder.FetchEvent{
		Symbol:    symbol,
		Live:      c.Live,
		Duration:  time.Since(start),
		FetchedAt: time.Now().UTC(),
	}

	switch {
	case err != nil:
		evt.Outcome = recorder.OutcomeError
		evt.ErrorCode = topstep.TextCode(err)
		evt.Error = err.Error()
	case snap.ContractID == "":
		evt.Outcome = recorder.OutcomeNoContract
	case snap.Bar == nil:
		evt.Outcome = recorder.OutcomeNoBar
		evt.ContractID = snap.ContractID
	default:
		evt.Outcome = recorder.OutcomeBar
		evt.ContractID = snap.ContractID
		if recErr := c.Recorder.RecordBar(&recorder.BarRecord{
			Symbol:     symbol,
			ContractID: snap.ContractID,
			Live:       c.Live,
			Bar:        *snap.Bar,
		}); recErr != nil {
			c.logger.Error("record bar failed", "symbol", symbol, "error", recErr)
		}
	}

	fetchID, recErr := c.Recorder.RecordFetch(evt)
	if recErr != nil {
		c.logger.Error("record fetch failed", "symbol", symbol, "error", recErr)
	}

	if err != nil {
		c.logger.Warn("collect failed", "source", c.Fetcher.Name(), "symbol", symbol, "fetch_id", fetchID, "error", err)
		return nil, err
	}
	c.logger.Info("collect finished", "source", c.Fetcher.Name(), "symbol", symbol,
		"outcome", evt.Outcome, "fetch_id", fetchID)
	return snap, nil
}
