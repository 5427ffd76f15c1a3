// Package saver exports bars to files.
package saver

import (
	"strings"

	"TopstepSentinel/internal/model"
)

// BarRow is the flat export shape shared by every format.
type BarRow struct {
	Symbol     string  `json:"symbol" parquet:"symbol"`
	ContractID string  `json:"contract_id" parquet:"contract_id"`
	Timestamp  int64   `json:"t" parquet:"t"`
	Open       float64 `json:"o" parquet:"o"`
	High       float64 `json:"h" parquet:"h"`
	Low        float64 `json:"l" parquet:"l"`
	Close      float64 `json:"c" parquet:"c"`
	Volume     int64   `json:"v" parquet:"v"`
}

// BarSaver writes rows to path in a single format.
type BarSaver interface {
	Save(rows []BarRow, path string) error
	Extension() string
}

// New returns the saver for format (csv, parquet, json), or nil when the
// format is not supported.
func New(format string) BarSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}

// FromSnapshot flattens a found snapshot; it returns no rows otherwise.
func FromSnapshot(snap *model.Snapshot) []BarRow {
	if !snap.Found() {
		return nil
	}
	b := snap.Bar
	return []BarRow{{
		Symbol:     snap.Symbol,
		ContractID: snap.ContractID,
		Timestamp:  b.Timestamp.Unix(),
		Open:       b.Open,
		High:       b.High,
		Low:        b.Low,
		Close:      b.Close,
		Volume:     b.Volume,
	}}
}
