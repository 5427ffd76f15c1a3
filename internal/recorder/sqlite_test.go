package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TopstepSentinel/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "nested", "bars.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func (r *SQLiteRecorder) countFetches(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	_ = r.db.QueryRow(`SELECT COUNT(*) FROM fetch_events WHERE outcome = ?`, outcome).Scan(&n)
	return n
}

func TestSQLiteRecorder_LatestBarEmpty(t *testing.T) {
	r := openTestRecorder(t)

	rec, err := r.LatestBar("MGC")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSQLiteRecorder_RecordBarUpsert(t *testing.T) {
	r := openTestRecorder(t)
	day := time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC)

	first := &BarRecord{Symbol: "mgc", ContractID: "CON.F.US.MGC.Z25", Bar: model.Bar{
		Timestamp: day, Open: 4075, High: 4101.1, Low: 4019, Close: 4050, Volume: 1000,
	}}
	require.NoError(t, r.RecordBar(first))

	second := *first
	second.Bar.Close = 4062.8
	second.Bar.Volume = 455342
	require.NoError(t, r.RecordBar(&second))

	var rows int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM daily_bars`).Scan(&rows))
	assert.Equal(t, 1, rows)

	got, err := r.LatestBar("MGC")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "MGC", got.Symbol)
	assert.Equal(t, "CON.F.US.MGC.Z25", got.ContractID)
	assert.Equal(t, 4062.8, got.Bar.Close)
	assert.Equal(t, int64(455342), got.Bar.Volume)
	assert.True(t, got.Bar.Timestamp.Equal(day))
}

func TestSQLiteRecorder_LatestBarPicksNewest(t *testing.T) {
	r := openTestRecorder(t)
	base := time.Date(2025, 11, 19, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.RecordBar(&BarRecord{
			Symbol: "MGC", ContractID: "CON.F.US.MGC.Z25",
			Bar: model.Bar{Timestamp: base.AddDate(0, 0, 2-i), Close: float64(100 + i)},
		}))
	}

	got, err := r.LatestBar("MGC")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, float64(100), got.Bar.Close)
}

func TestSQLiteRecorder_RecordFetch(t *testing.T) {
	r := openTestRecorder(t)

	id, err := r.RecordFetch(&FetchEvent{Symbol: "MGC", Outcome: OutcomeNoContract})
	require.NoError(t, err)
	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr)

	fixed := uuid.NewString()
	id2, err := r.RecordFetch(&FetchEvent{
		FetchID: fixed, Symbol: "MGC", Outcome: OutcomeError,
		ErrorCode: "TOPSTEP_TRANSPORT", Error: "boom", Duration: 1500 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, fixed, id2)

	_, err = r.RecordFetch(&FetchEvent{FetchID: fixed, Symbol: "MGC", Outcome: OutcomeError})
	assert.Error(t, err, "fetch ids are unique")

	assert.Equal(t, 1, r.countFetches(OutcomeNoContract))
	assert.Equal(t, 1, r.countFetches(OutcomeError))
}

func TestSQLiteRecorder_NilInputs(t *testing.T) {
	r := openTestRecorder(t)
	assert.Error(t, r.RecordBar(nil))
	_, err := r.RecordFetch(nil)
	assert.Error(t, err)
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.RecordBar(&BarRecord{}))
	id, err := rec.RecordFetch(&FetchEvent{FetchID: "abc"})
	assert.NoError(t, err)
	assert.Equal(t, "abc", id)
	got, err := rec.LatestBar("MGC")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, rec.Close())
}
