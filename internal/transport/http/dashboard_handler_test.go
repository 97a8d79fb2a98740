package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pulseapi/internal/analytics"
	apierrors "pulseapi/internal/errors"
	"pulseapi/internal/services"
	"pulseapi/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Summary(ctx context.Context) (*services.SummaryStats, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SummaryStats), args.Error(1)
}

func (m *MockDashboardService) Filters(ctx context.Context) (*services.FilterOptions, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.FilterOptions), args.Error(1)
}

func (m *MockDashboardService) Overview(ctx context.Context, f analytics.Filter) (*services.OverviewResult, error) {
	args := m.Called(f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.OverviewResult), args.Error(1)
}

func (m *MockDashboardService) Transactions(ctx context.Context, f analytics.Filter, metric analytics.Metric) (*services.TransactionsResult, error) {
	args := m.Called(f, metric)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TransactionsResult), args.Error(1)
}

func (m *MockDashboardService) Users(ctx context.Context, f analytics.Filter) (*services.UsersResult, error) {
	args := m.Called(f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.UsersResult), args.Error(1)
}

func (m *MockDashboardService) Insurance(ctx context.Context, f analytics.Filter, metric analytics.Metric) (*services.InsuranceResult, error) {
	args := m.Called(f, metric)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.InsuranceResult), args.Error(1)
}

func (m *MockDashboardService) Trends(ctx context.Context, f analytics.Filter, metric analytics.Metric, last int) (*services.TrendsResult, error) {
	args := m.Called(f, metric, last)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TrendsResult), args.Error(1)
}

func (m *MockDashboardService) CompareStates(ctx context.Context, states []string, f analytics.Filter) ([]services.StateSeries, error) {
	args := m.Called(states, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.StateSeries), args.Error(1)
}

func (m *MockDashboardService) Dataset(ctx context.Context, id domain.DatasetID) (interface{}, int, error) {
	args := m.Called(id)
	return args.Get(0), args.Int(1), args.Error(2)
}

func (m *MockDashboardService) Refresh(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

func newTestHandler(svc DashboardServiceInterface) *DashboardHandler {
	logger := slog.Default()
	return NewDashboardHandler(svc, logger, apierrors.NewErrorHandler(logger))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetSummary(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Summary").Return(&services.SummaryStats{
		TotalTransactions: 380,
		StatesCovered:     2,
	}, nil)

	handler := newTestHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 380, data["total_transactions"])
	svc.AssertExpectations(t)
}

func TestGetSummaryServiceError(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Summary").Return(nil, apierrors.NewNotFoundError("dataset aggregated_transactions", nil))

	handler := newTestHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])

	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "DATASET_NOT_FOUND", errObj["error_code"])
}

func TestGetTransactionsPassesFilter(t *testing.T) {
	svc := new(MockDashboardService)
	want := analytics.Filter{State: "goa", YearFrom: 2022, YearTo: 2022, Quarter: 3, Type: "P2P"}
	svc.On("Transactions", want, analytics.MetricAmount).
		Return(&services.TransactionsResult{RowCount: 1}, nil)

	handler := newTestHandler(svc)
	req := httptest.NewRequest(http.MethodGet,
		"/transactions?state=goa&year=2022&quarter=3&type=P2P&metric=amount", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestQueryValidation(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "quarter out of range", url: "/transactions?quarter=5"},
		{name: "quarter not a number", url: "/transactions?quarter=abc"},
		{name: "year below floor", url: "/overview?year=1999"},
		{name: "unknown metric", url: "/transactions?metric=volume"},
		{name: "inverted year range", url: "/transactions?year_from=2023&year_to=2021"},
		{name: "last too large", url: "/trends?last=100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			handler := newTestHandler(svc)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			handler.Routes().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertNotCalled(t, "Transactions", mock.Anything, mock.Anything)
			svc.AssertNotCalled(t, "Overview", mock.Anything)
			svc.AssertNotCalled(t, "Trends", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGetDatasetUnknownID(t *testing.T) {
	svc := new(MockDashboardService)
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/datasets/not_a_dataset", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Dataset", mock.Anything)
}

func TestGetDataset(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Dataset", domain.DatasetUsers).
		Return([]domain.UserRecord{{State: "goa"}}, 1, nil)

	handler := newTestHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/datasets/aggregated_users", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["count"])
	svc.AssertExpectations(t)
}

func TestRefreshCache(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Refresh").Return(nil)

	handler := newTestHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/cache/refresh", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	svc.AssertExpectations(t)
}

func TestRefreshCacheFailure(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Refresh").Return(apierrors.NewNotFoundError("dataset aggregated_users", nil))

	handler := newTestHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/cache/refresh", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompareStates(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("CompareStates", []string{"goa", "karnataka"}, analytics.Filter{}).
		Return([]services.StateSeries{{State: "goa"}, {State: "karnataka"}}, nil)

	handler := newTestHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/trends/compare?states=goa,%20karnataka", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["count"])
	svc.AssertExpectations(t)
}

func TestCompareStatesRequiresStates(t *testing.T) {
	svc := new(MockDashboardService)
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/trends/compare", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "CompareStates", mock.Anything, mock.Anything)
}
