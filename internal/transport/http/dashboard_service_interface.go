package http

import (
	"context"

	"pulseapi/internal/analytics"
	"pulseapi/internal/services"
	"pulseapi/pkg/contracts/domain"
)

// DashboardServiceInterface defines the service contract the dashboard
// handler depends on.
type DashboardServiceInterface interface {
	Summary(ctx context.Context) (*services.SummaryStats, error)
	Filters(ctx context.Context) (*services.FilterOptions, error)
	Overview(ctx context.Context, f analytics.Filter) (*services.OverviewResult, error)
	Transactions(ctx context.Context, f analytics.Filter, metric analytics.Metric) (*services.TransactionsResult, error)
	Users(ctx context.Context, f analytics.Filter) (*services.UsersResult, error)
	Insurance(ctx context.Context, f analytics.Filter, metric analytics.Metric) (*services.InsuranceResult, error)
	Trends(ctx context.Context, f analytics.Filter, metric analytics.Metric, last int) (*services.TrendsResult, error)
	CompareStates(ctx context.Context, states []string, f analytics.Filter) ([]services.StateSeries, error)
	Dataset(ctx context.Context, id domain.DatasetID) (interface{}, int, error)
	Refresh(ctx context.Context) error
}
