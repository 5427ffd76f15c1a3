package model

import "time"

// Bar represents one fully closed trading session.
type Bar struct {
	Timestamp time.Time `json:"t"`
	Open      float64   `json:"o"`
	High      float64   `json:"h"`
	Low       float64   `json:"l"`
	Close     float64   `json:"c"`
	Volume    int64     `json:"v"`
}

// BarUnit is the aggregation unit understood by the history endpoint.
type BarUnit int

const (
	UnitSecond BarUnit = 1
	UnitMinute BarUnit = 2
	UnitHour   BarUnit = 3
	UnitDay    BarUnit = 4
	UnitWeek   BarUnit = 5
	UnitMonth  BarUnit = 6
)

func (u BarUnit) String() string {
	switch u {
	case UnitSecond:
		return "second"
	case UnitMinute:
		return "minute"
	case UnitHour:
		return "hour"
	case UnitDay:
		return "day"
	case UnitWeek:
		return "week"
	case UnitMonth:
		return "month"
	default:
		return "unknown"
	}
}

// BarWindow describes a single history request.
type BarWindow struct {
	ContractID     string
	Live           bool
	StartTime      time.Time
	EndTime        time.Time
	Unit           BarUnit
	UnitCount      int
	Limit          int
	IncludePartial bool
}

// Snapshot is the outcome of one symbol lookup.
// An empty ContractID means no active contract was found; a nil Bar means
// the contract had no closed bar in the window.
type Snapshot struct {
	Symbol     string
	ContractID string
	Bar        *Bar
	FetchedAt  time.Time
}

// Found reports whether the lookup produced a bar.
func (s *Snapshot) Found() bool {
	return s != nil && s.Bar != nil
}
