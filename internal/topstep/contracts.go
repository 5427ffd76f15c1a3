package topstep

import (
	"context"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"TopstepSentinel/internal/model"
)

// ContractResolver maps a symbol root such as "MGC" to the contract that is
// currently active for it.
type ContractResolver struct {
	auth   *Authenticator
	req    *requester
	logger glog.Logger
}

// Search returns every contract the provider lists for symbolRoot, in
// provider order.
func (r *ContractResolver) Search(ctx context.Context, symbolRoot string, live bool) ([]model.Contract, error) {
	symbolRoot = strings.TrimSpace(symbolRoot)
	if symbolRoot == "" {
		return nil, badInputError("topstep: symbol root is required")
	}

	token, err := r.auth.EnsureValid(ctx)
	if err != nil {
		return nil, err
	}

	var resp contractSearchResponse
	err = r.req.post(ctx, pathContractSearch, contractSearchRequest{
		Live:       live,
		SearchText: symbolRoot,
	}, &resp, postOptions{token: token, timeout: queryTimeout})
	if err != nil {
		return nil, err
	}
	if resp.failed() {
		r.logger.Error("topstep: contract search failed", "search_text", symbolRoot,
			"error", resp.message(""), "error_code", resp.ErrorCode)
		return nil, providerError("contract search", resp.replyStatus)
	}

	out := make([]model.Contract, 0, len(*resp.Contracts))
	for _, c := range *resp.Contracts {
		out = append(out, c.toContract())
	}
	return out, nil
}

// Resolve returns the active contract id for symbolRoot. found is false when
// the provider lists no contract, which is not an error.
func (r *ContractResolver) Resolve(ctx context.Context, symbolRoot string, live bool) (string, bool, error) {
	contracts, err := r.Search(ctx, symbolRoot, live)
	if err != nil {
		return "", false, err
	}
	if len(contracts) == 0 {
		r.logger.Info("topstep: no contracts returned", "search_text", symbolRoot, "live", live)
		return "", false, nil
	}

	contract := pickActive(contracts)
	r.logger.Info("topstep: active contract resolved", "search_text", symbolRoot, "contract_id", contract.ID)
	return contract.ID, true, nil
}

// pickActive prefers the first contract flagged active and otherwise falls
// back to the provider's first entry.
func pickActive(contracts []model.Contract) model.Contract {
	for _, c := range contracts {
		if c.Active {
			return c
		}
	}
	return contracts[0]
}
