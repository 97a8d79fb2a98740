package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseapi/internal/analytics"
	apierrors "pulseapi/internal/errors"
	"pulseapi/internal/exporter"
	"pulseapi/internal/services"
)

func newTestExportHandler(svc DashboardServiceInterface) *ExportHandler {
	logger := slog.Default()
	return NewExportHandler(svc, exporter.NewExcelExporter(logger), logger, apierrors.NewErrorHandler(logger))
}

func TestExportStatesCSV(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Transactions", analytics.Filter{State: "goa"}, analytics.MetricCount).
		Return(&services.TransactionsResult{
			ByState: []analytics.StateTotal{{State: "goa", Count: 30, Amount: 700}},
		}, nil)

	handler := newTestExportHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/csv/states?state=goa", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "goa,30,700.00")
	svc.AssertExpectations(t)
}

func TestExportExcel(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Summary").Return(&services.SummaryStats{TotalTransactions: 1}, nil)
	svc.On("Transactions", analytics.Filter{}, analytics.MetricCount).
		Return(&services.TransactionsResult{}, nil)
	svc.On("Users", analytics.Filter{}).Return(&services.UsersResult{}, nil)
	svc.On("Insurance", analytics.Filter{}, analytics.MetricCount).
		Return(&services.InsuranceResult{}, nil)

	handler := newTestExportHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/excel", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.True(t, strings.HasSuffix(
		strings.TrimSuffix(rec.Header().Get("Content-Disposition"), `"`), ".xlsx"))
	assert.NotZero(t, rec.Body.Len())
	svc.AssertExpectations(t)
}

func TestExportExcelServiceError(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Summary").Return(nil, apierrors.NewNotFoundError("dataset aggregated_transactions", nil))

	handler := newTestExportHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/excel", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
