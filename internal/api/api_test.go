package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"TopstepSentinel/internal/model"
	"TopstepSentinel/internal/recorder"
)

type MockSnapshotService struct {
	mock.Mock
}

func (m *MockSnapshotService) Snapshot(ctx context.Context, symbol string, live bool) (*model.Snapshot, error) {
	args := m.Called(ctx, symbol, live)
	snap, _ := args.Get(0).(*model.Snapshot)
	return snap, args.Error(1)
}

type MockBarStore struct {
	mock.Mock
}

func (m *MockBarStore) LatestBar(symbol string) (*recorder.BarRecord, error) {
	args := m.Called(symbol)
	rec, _ := args.Get(0).(*recorder.BarRecord)
	return rec, args.Error(1)
}

func setupTestRouter(svc SnapshotService, store BarStore) *gin.Engine {
	r := NewHandler(svc, store, nil).Routes()
	gin.SetMode(gin.TestMode)
	return r
}

func sampleBar() *model.Bar {
	return &model.Bar{
		Timestamp: time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC),
		Open:      4075, High: 4101.1, Low: 4019, Close: 4062.8, Volume: 455342,
	}
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := get(setupTestRouter(&MockSnapshotService{}, nil), "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeaderKey))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ServiceName, body["service"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := setupTestRouter(&MockSnapshotService{}, nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeaderKey, "req-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeaderKey))
}

func TestLatestBar_OK(t *testing.T) {
	svc := &MockSnapshotService{}
	svc.On("Snapshot", mock.Anything, "MGC", true).Return(&model.Snapshot{
		Symbol: "MGC", ContractID: "CON.F.US.MGC.Z25", Bar: sampleBar(), FetchedAt: time.Now(),
	}, nil)

	w := get(setupTestRouter(svc, nil), "/api/v1/bars/mgc/latest?live=true")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Symbol     string    `json:"symbol"`
		ContractID string    `json:"contract_id"`
		Live       bool      `json:"live"`
		Bar        model.Bar `json:"bar"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "MGC", body.Symbol)
	assert.Equal(t, "CON.F.US.MGC.Z25", body.ContractID)
	assert.True(t, body.Live)
	assert.Equal(t, *sampleBar(), body.Bar)
	svc.AssertExpectations(t)
}

func TestLatestBar_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		snap       *model.Snapshot
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no contract",
			path:       "/api/v1/bars/XYZ/latest",
			snap:       &model.Snapshot{Symbol: "XYZ"},
			wantStatus: http.StatusNotFound,
			wantCode:   "NO_CONTRACT",
		},
		{
			name:       "no bar",
			path:       "/api/v1/bars/XYZ/latest",
			snap:       &model.Snapshot{Symbol: "XYZ", ContractID: "CON.F.US.XYZ.Z25"},
			wantStatus: http.StatusNotFound,
			wantCode:   "NO_BAR",
		},
		{
			name:       "auth",
			path:       "/api/v1/bars/XYZ/latest",
			err:        goerrors.New("rejected", goerrors.CategoryAuth).WithTextCode("TOPSTEP_AUTH"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "TOPSTEP_AUTH",
		},
		{
			name:       "transport",
			path:       "/api/v1/bars/XYZ/latest",
			err:        goerrors.New("gateway down", goerrors.CategoryExternal).WithTextCode("TOPSTEP_TRANSPORT"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "TOPSTEP_TRANSPORT",
		},
		{
			name:       "unknown",
			path:       "/api/v1/bars/XYZ/latest",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockSnapshotService{}
			svc.On("Snapshot", mock.Anything, "XYZ", false).Return(tt.snap, tt.err)

			w := get(setupTestRouter(svc, nil), tt.path)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestLatestBar_InvalidLive(t *testing.T) {
	svc := &MockSnapshotService{}
	w := get(setupTestRouter(svc, nil), "/api/v1/bars/MGC/latest?live=maybe")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Snapshot", mock.Anything, mock.Anything, mock.Anything)
}

func TestStoredBar(t *testing.T) {
	store := &MockBarStore{}
	store.On("LatestBar", "MGC").Return(&recorder.BarRecord{
		Symbol: "MGC", ContractID: "CON.F.US.MGC.Z25", Bar: *sampleBar(),
	}, nil)
	store.On("LatestBar", "ES").Return(nil, nil)

	router := setupTestRouter(&MockSnapshotService{}, store)

	w := get(router, "/api/v1/bars/mgc/stored")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CON.F.US.MGC.Z25")

	w = get(router, "/api/v1/bars/ES/stored")
	assert.Equal(t, http.StatusNotFound, w.Code)
	store.AssertExpectations(t)
}

func TestStoredBar_DisabledWithoutStore(t *testing.T) {
	w := get(setupTestRouter(&MockSnapshotService{}, nil), "/api/v1/bars/MGC/stored")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
