package topstep

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"TopstepSentinel/internal/model"
)

// wireTimeLayout is the ISO-8601 UTC form the history endpoint expects.
const wireTimeLayout = "2006-01-02T15:04:05Z"

// validator is implemented by response bodies that check their own shape
// after decoding.
type validator interface {
	validate() error
}

type loginRequest struct {
	UserName string `json:"userName"`
	APIKey   string `json:"apiKey"`
}

// replyStatus is the envelope every gateway reply carries.
type replyStatus struct {
	Success      *bool  `json:"success"`
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// ok reports an explicit success; a missing flag counts as failure.
func (s replyStatus) ok() bool {
	return s.Success != nil && *s.Success
}

// failed reports an explicit success:false.
func (s replyStatus) failed() bool {
	return s.Success != nil && !*s.Success
}

func (s replyStatus) message(fallback string) string {
	if m := strings.TrimSpace(s.ErrorMessage); m != "" {
		return m
	}
	return fallback
}

type authResponse struct {
	replyStatus
	Token    string `json:"token"`
	NewToken string `json:"newToken"`
}

// issuedToken prefers the rotated token field when both are present.
func (r *authResponse) issuedToken() string {
	if t := strings.TrimSpace(r.NewToken); t != "" {
		return t
	}
	return strings.TrimSpace(r.Token)
}

type contractSearchRequest struct {
	Live       bool   `json:"live"`
	SearchText string `json:"searchText"`
}

type contractDTO struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	TickSize       float64 `json:"tickSize"`
	TickValue      float64 `json:"tickValue"`
	ActiveContract *bool   `json:"activeContract"`
	SymbolID       string  `json:"symbolId"`
}

func (c contractDTO) toContract() model.Contract {
	return model.Contract{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		TickSize:    c.TickSize,
		TickValue:   c.TickValue,
		Active:      c.ActiveContract != nil && *c.ActiveContract,
		SymbolID:    c.SymbolID,
	}
}

type contractSearchResponse struct {
	replyStatus
	Contracts *[]contractDTO `json:"contracts"`
}

// validate checks the shape of a successful reply only; a reported failure
// is classified by the caller.
func (r *contractSearchResponse) validate() error {
	if r.failed() {
		return nil
	}
	if r.Contracts == nil {
		return fmt.Errorf("missing field %q", "contracts")
	}
	for i, c := range *r.Contracts {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("contracts[%d]: missing field %q", i, "id")
		}
	}
	return nil
}

type retrieveBarsRequest struct {
	ContractID        string `json:"contractId"`
	Live              bool   `json:"live"`
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
	Unit              int    `json:"unit"`
	UnitNumber        int    `json:"unitNumber"`
	Limit             int    `json:"limit"`
	IncludePartialBar bool   `json:"includePartialBar"`
}

func newRetrieveBarsRequest(w model.BarWindow) retrieveBarsRequest {
	return retrieveBarsRequest{
		ContractID:        w.ContractID,
		Live:              w.Live,
		StartTime:         w.StartTime.UTC().Format(wireTimeLayout),
		EndTime:           w.EndTime.UTC().Format(wireTimeLayout),
		Unit:              int(w.Unit),
		UnitNumber:        w.UnitCount,
		Limit:             w.Limit,
		IncludePartialBar: w.IncludePartial,
	}
}

type barDTO struct {
	T *time.Time    `json:"t"`
	O float64       `json:"o"`
	H float64       `json:"h"`
	L float64       `json:"l"`
	C float64       `json:"c"`
	V FlexibleInt64 `json:"v"`
}

func (b barDTO) toBar() model.Bar {
	return model.Bar{
		Timestamp: b.T.UTC(),
		Open:      b.O,
		High:      b.H,
		Low:       b.L,
		Close:     b.C,
		Volume:    b.V.Int64(),
	}
}

type retrieveBarsResponse struct {
	replyStatus
	Bars *[]barDTO `json:"bars"`
}

func (r *retrieveBarsResponse) validate() error {
	if r.failed() {
		return nil
	}
	if r.Bars == nil {
		return fmt.Errorf("missing field %q", "bars")
	}
	for i, b := range *r.Bars {
		if b.T == nil || b.T.IsZero() {
			return fmt.Errorf("bars[%d]: missing field %q", i, "t")
		}
	}
	return nil
}

// FlexibleInt64 accepts volumes encoded as integers, floats or numeric strings.
type FlexibleInt64 int64

// UnmarshalJSON parses int, float or string.
func (f *FlexibleInt64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		val, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*f = FlexibleInt64(int64(val))
		return nil
	}

	var intVal int64
	if err := json.Unmarshal(data, &intVal); err == nil {
		*f = FlexibleInt64(intVal)
		return nil
	}

	var floatVal float64
	if err := json.Unmarshal(data, &floatVal); err == nil {
		*f = FlexibleInt64(int64(floatVal))
		return nil
	}

	return fmt.Errorf("cannot parse as int64: %s", string(data))
}

// Int64 returns the decoded value.
func (f FlexibleInt64) Int64() int64 {
	return int64(f)
}
