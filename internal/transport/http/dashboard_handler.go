package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"pulseapi/internal/analytics"
	apierrors "pulseapi/internal/errors"
	"pulseapi/pkg/contracts/domain"
)

// DashboardHandler handles the dashboard page endpoints.
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)
	r.Get("/filters", h.GetFilters)
	r.Get("/overview", h.GetOverview)
	r.Get("/transactions", h.GetTransactions)
	r.Get("/users", h.GetUsers)
	r.Get("/insurance", h.GetInsurance)
	r.Get("/trends", h.GetTrends)
	r.Get("/trends/compare", h.CompareStates)

	r.Route("/datasets/{dataset}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.GetDataset)
	})

	r.Post("/cache/refresh", h.RefreshCache)

	return r
}

// filterQuery carries the common query parameters of the page endpoints.
type filterQuery struct {
	State    string `validate:"omitempty,max=64"`
	YearFrom int    `validate:"omitempty,min=2000,max=2100"`
	YearTo   int    `validate:"omitempty,min=2000,max=2100"`
	Quarter  int    `validate:"omitempty,min=1,max=4"`
	Type     string `validate:"omitempty,max=64"`
	Metric   string `validate:"omitempty,oneof=count amount"`
	Last     int    `validate:"omitempty,min=1,max=40"`
}

// parseFilter reads and validates the shared query parameters. A nil return
// means the error response has already been written.
func (h *DashboardHandler) parseFilter(w http.ResponseWriter, r *http.Request) *filterQuery {
	q := r.URL.Query()
	fq := &filterQuery{
		State:  strings.TrimSpace(q.Get("state")),
		Type:   strings.TrimSpace(q.Get("type")),
		Metric: strings.TrimSpace(q.Get("metric")),
	}

	intParam := func(name string) (int, bool) {
		raw := q.Get(name)
		if raw == "" {
			return 0, true
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(name, "must be an integer"))
			return 0, false
		}
		return v, true
	}

	var ok bool
	if fq.YearFrom, ok = intParam("year_from"); !ok {
		return nil
	}
	if fq.YearTo, ok = intParam("year_to"); !ok {
		return nil
	}
	if year, ok := intParam("year"); !ok {
		return nil
	} else if year != 0 {
		fq.YearFrom, fq.YearTo = year, year
	}
	if fq.Quarter, ok = intParam("quarter"); !ok {
		return nil
	}
	if fq.Last, ok = intParam("last"); !ok {
		return nil
	}

	if err := h.validate.Struct(fq); err != nil {
		var details []apierrors.ValidationError
		if verrs, isValidation := err.(validator.ValidationErrors); isValidation {
			for _, fe := range verrs {
				details = append(details, apierrors.ValidationError{
					Field:   strings.ToLower(fe.Field()),
					Message: "failed " + fe.Tag() + " validation",
				})
			}
		}
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "VALIDATION_FAILED", "Invalid query parameters", details))
		return nil
	}

	if fq.YearFrom != 0 && fq.YearTo != 0 && fq.YearFrom > fq.YearTo {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("year_from", "must not exceed year_to"))
		return nil
	}

	return fq
}

func (fq *filterQuery) filter() analytics.Filter {
	return analytics.Filter{
		State:    fq.State,
		YearFrom: fq.YearFrom,
		YearTo:   fq.YearTo,
		Quarter:  fq.Quarter,
		Type:     fq.Type,
	}
}

func (fq *filterQuery) metric() analytics.Metric {
	if fq.Metric == "" {
		return analytics.MetricCount
	}
	return analytics.Metric(fq.Metric)
}

// respond writes the standard success envelope.
func respond(w http.ResponseWriter, r *http.Request, data interface{}, count int) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
		"count":  count,
	})
}

// GetSummary handles GET /api/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute summary",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, stats, 1)
}

// GetFilters handles GET /api/filters
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.Filters(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list filter options",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, options, len(options.States))
}

// GetOverview handles GET /api/overview
func (h *DashboardHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	fq := h.parseFilter(w, r)
	if fq == nil {
		return
	}

	result, err := h.service.Overview(r.Context(), fq.filter())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute overview",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, result, result.RowCount)
}

// GetTransactions handles GET /api/transactions
func (h *DashboardHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	fq := h.parseFilter(w, r)
	if fq == nil {
		return
	}

	result, err := h.service.Transactions(r.Context(), fq.filter(), fq.metric())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute transactions view",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, result, result.RowCount)
}

// GetUsers handles GET /api/users
func (h *DashboardHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	fq := h.parseFilter(w, r)
	if fq == nil {
		return
	}

	result, err := h.service.Users(r.Context(), fq.filter())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute users view",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, result, result.RowCount)
}

// GetInsurance handles GET /api/insurance
func (h *DashboardHandler) GetInsurance(w http.ResponseWriter, r *http.Request) {
	fq := h.parseFilter(w, r)
	if fq == nil {
		return
	}

	result, err := h.service.Insurance(r.Context(), fq.filter(), fq.metric())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute insurance view",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, result, result.RowCount)
}

// GetTrends handles GET /api/trends
func (h *DashboardHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	fq := h.parseFilter(w, r)
	if fq == nil {
		return
	}

	result, err := h.service.Trends(r.Context(), fq.filter(), fq.metric(), fq.Last)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute trends",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, result, len(result.Series))
}

// CompareStates handles GET /api/trends/compare?states=a,b,c
func (h *DashboardHandler) CompareStates(w http.ResponseWriter, r *http.Request) {
	fq := h.parseFilter(w, r)
	if fq == nil {
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("states"))
	if raw == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("states", "at least one state is required"))
		return
	}

	var states []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			states = append(states, s)
		}
	}
	if len(states) > 10 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("states", "at most 10 states may be compared"))
		return
	}

	series, err := h.service.CompareStates(r.Context(), states, fq.filter())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compare states",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, series, len(series))
}

// DatasetCtx middleware validates the dataset identifier parameter.
func (h *DashboardHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := domain.DatasetID(chi.URLParam(r, "dataset"))
		if !id.Valid() {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("dataset", "unknown dataset identifier"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetDataset handles GET /api/datasets/{dataset}
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	id := domain.DatasetID(chi.URLParam(r, "dataset"))

	rows, count, err := h.service.Dataset(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load dataset",
			slog.String("dataset", string(id)),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, rows, count)
}

// RefreshCache handles POST /api/cache/refresh
func (h *DashboardHandler) RefreshCache(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "cache refresh requested",
		slog.String("request_id", middleware.GetReqID(r.Context())))

	if err := h.service.Refresh(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "cache refresh failed",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": "dataset cache refreshed",
	})
}
