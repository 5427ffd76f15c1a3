package recorder

import (
	"time"

	"TopstepSentinel/internal/model"
)

// Fetch outcomes stored with every FetchEvent.
const (
	OutcomeBar        = "BAR"
	OutcomeNoContract = "NO_CONTRACT"
	OutcomeNoBar      = "NO_BAR"
	OutcomeError      = "ERROR"
)

// BarRecord is one closed daily bar of a resolved contract.
type BarRecord struct {
	Symbol     string
	ContractID string
	Live       bool
	Bar        model.Bar
}

// FetchEvent records a single lookup attempt, successful or not.
type FetchEvent struct {
	FetchID    string
	Symbol     string
	ContractID string
	Live       bool
	Outcome    string // one of the Outcome* constants
	ErrorCode  string
	Error      string
	Duration   time.Duration
	FetchedAt  time.Time
}

// Recorder persists fetched bars and lookup history.
type Recorder interface {
	RecordBar(rec *BarRecord) error
	RecordFetch(evt *FetchEvent) (string, error)
	LatestBar(symbol string) (*BarRecord, error)
	Close() error
}
