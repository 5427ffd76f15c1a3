package topstep

import (
	"context"
	"sort"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"TopstepSentinel/internal/model"
)

// DailyLookback is wide enough to cover weekends and exchange holidays.
const DailyLookback = 7 * 24 * time.Hour

// BarFetcher retrieves historical bars for a resolved contract.
type BarFetcher struct {
	auth   *Authenticator
	req    *requester
	now    func() time.Time
	logger glog.Logger
}

// DailyWindow builds the request for the most recent closed daily bar,
// ending at now truncated to whole seconds.
func DailyWindow(contractID string, live bool, now time.Time) model.BarWindow {
	end := now.UTC().Truncate(time.Second)
	return model.BarWindow{
		ContractID:     contractID,
		Live:           live,
		StartTime:      end.Add(-DailyLookback),
		EndTime:        end,
		Unit:           model.UnitDay,
		UnitCount:      1,
		Limit:          1,
		IncludePartial: false,
	}
}

// Bars runs one history request and returns the bars in chronological order.
func (f *BarFetcher) Bars(ctx context.Context, window model.BarWindow) ([]model.Bar, error) {
	if strings.TrimSpace(window.ContractID) == "" {
		return nil, badInputError("topstep: contract id is required")
	}

	token, err := f.auth.EnsureValid(ctx)
	if err != nil {
		return nil, err
	}

	var resp retrieveBarsResponse
	err = f.req.post(ctx, pathRetrieveBars, newRetrieveBarsRequest(window), &resp, postOptions{
		token:   token,
		timeout: queryTimeout,
	})
	if err != nil {
		return nil, err
	}
	if resp.failed() {
		f.logger.Error("topstep: bar retrieval failed", "contract_id", window.ContractID,
			"error", resp.message(""), "error_code", resp.ErrorCode)
		return nil, providerError("bar retrieval", resp.replyStatus)
	}

	bars := make([]model.Bar, 0, len(*resp.Bars))
	for _, b := range *resp.Bars {
		bars = append(bars, b.toBar())
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}

// LatestClosedBar returns the most recent fully closed daily bar for
// contractID, or nil when the provider returns none.
func (f *BarFetcher) LatestClosedBar(ctx context.Context, contractID string, live bool) (*model.Bar, error) {
	f.logger.Info("topstep: fetching most recent closed daily bar", "contract_id", contractID)

	bars, err := f.Bars(ctx, DailyWindow(contractID, live, f.now()))
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		f.logger.Info("topstep: no daily bars returned", "contract_id", contractID)
		return nil, nil
	}

	bar := bars[len(bars)-1]
	return &bar, nil
}
