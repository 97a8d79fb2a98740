package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "pulseapi/internal/errors"
	"pulseapi/internal/exporter"
)

// ExportHandler serves the dashboard as downloadable files.
type ExportHandler struct {
	service      DashboardServiceInterface
	excel        *exporter.ExcelExporter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(service DashboardServiceInterface, excel *exporter.ExcelExporter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		excel:        excel,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/excel", h.ExportExcel)
	r.Get("/csv/states", h.ExportStatesCSV)
	return r
}

// ExportExcel handles GET /api/export/excel. The workbook carries the
// summary, transactions, users, and insurance pages.
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.service.Summary(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	transactions, err := h.service.Transactions(ctx, filterFromQuery(r), metricFromQuery(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	users, err := h.service.Users(ctx, filterFromQuery(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	insurance, err := h.service.Insurance(ctx, filterFromQuery(r), metricFromQuery(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("pulse-dashboard-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	report := &exporter.Report{
		Summary:      summary,
		Transactions: transactions,
		Users:        users,
		Insurance:    insurance,
	}
	if err := h.excel.Write(w, report); err != nil {
		// Headers are already out; log and abort the body.
		h.logger.ErrorContext(ctx, "excel export failed",
			slog.String("error", err.Error()))
	}
}

// ExportStatesCSV handles GET /api/export/csv/states.
func (h *ExportHandler) ExportStatesCSV(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Transactions(r.Context(), filterFromQuery(r), metricFromQuery(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("state-totals-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exporter.StateTotalsCSV(w, result.ByState); err != nil {
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("error", err.Error()))
	}
}
