package services

import (
	"context"
	"fmt"
	"log/slog"

	"pulseapi/internal/analytics"
	"pulseapi/internal/dataset"
	"pulseapi/pkg/contracts/domain"
)

// DashboardService orchestrates the dataset store and the aggregation helpers
// for the dashboard pages. Filtering that matches nothing is not an error:
// the page renders an empty state from an empty table.
type DashboardService struct {
	store     *dataset.Store
	logger    *slog.Logger
	onRefresh func()
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store *dataset.Store, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		store:  store,
		logger: logger.With(slog.String("component", "dashboard_service")),
	}
}

// SummaryStats is the entry-page metrics block.
type SummaryStats struct {
	TotalTransactions      int64   `json:"total_transactions"`
	TotalTransactionAmount float64 `json:"total_transaction_amount"`
	TotalRegisteredUsers   int64   `json:"total_registered_users"`
	TotalAppOpens          int64   `json:"total_app_opens"`
	TotalInsuranceCount    int64   `json:"total_insurance_count"`
	TotalInsuranceAmount   float64 `json:"total_insurance_amount"`
	StatesCovered          int     `json:"states_covered"`
	YearsCovered           string  `json:"years_covered"`

	// Pre-rendered display strings in Indian units.
	Formatted map[string]string `json:"formatted"`
}

// Summary computes the entry-page totals across the three main datasets.
func (s *DashboardService) Summary(ctx context.Context) (*SummaryStats, error) {
	transactions, err := s.store.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	insurance, err := s.store.Insurance(ctx)
	if err != nil {
		return nil, fmt.Errorf("load insurance: %w", err)
	}

	stats := &SummaryStats{}

	states := make(map[string]struct{})
	minYear, maxYear := 0, 0
	for _, r := range transactions {
		stats.TotalTransactions += r.Count
		stats.TotalTransactionAmount += r.Amount
		states[r.State] = struct{}{}
		if minYear == 0 || r.Year < minYear {
			minYear = r.Year
		}
		if r.Year > maxYear {
			maxYear = r.Year
		}
	}
	for _, r := range users {
		stats.TotalRegisteredUsers += r.RegisteredUsers
		stats.TotalAppOpens += r.AppOpens
	}
	for _, r := range insurance {
		stats.TotalInsuranceCount += r.Count
		stats.TotalInsuranceAmount += r.Amount
	}

	stats.StatesCovered = len(states)
	if minYear != 0 {
		stats.YearsCovered = fmt.Sprintf("%d - %d", minYear, maxYear)
	}

	stats.Formatted = map[string]string{
		"total_transactions":       analytics.FormatNumber(float64(stats.TotalTransactions)),
		"total_transaction_amount": analytics.FormatCurrency(stats.TotalTransactionAmount),
		"total_registered_users":   analytics.FormatNumber(float64(stats.TotalRegisteredUsers)),
		"total_app_opens":          analytics.FormatNumber(float64(stats.TotalAppOpens)),
		"total_insurance_count":    analytics.FormatNumber(float64(stats.TotalInsuranceCount)),
		"total_insurance_amount":   analytics.FormatCurrency(stats.TotalInsuranceAmount),
	}

	s.logger.DebugContext(ctx, "summary computed",
		slog.Int("states", stats.StatesCovered),
		slog.String("years", stats.YearsCovered))

	return stats, nil
}

// FilterOptions holds the distinct values the filter widgets offer.
type FilterOptions struct {
	States           []string `json:"states"`
	Years            []int    `json:"years"`
	Quarters         []int    `json:"quarters"`
	TransactionTypes []string `json:"transaction_types"`
	InsuranceTypes   []string `json:"insurance_types"`
}

// Filters returns the selectable filter values across the datasets.
func (s *DashboardService) Filters(ctx context.Context) (*FilterOptions, error) {
	states, err := s.store.States(ctx)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	years, err := s.store.Years(ctx)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	quarters, err := s.store.Quarters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quarters: %w", err)
	}

	transactions, err := s.store.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	insurance, err := s.store.Insurance(ctx)
	if err != nil {
		return nil, fmt.Errorf("load insurance: %w", err)
	}

	options := &FilterOptions{
		States:   states,
		Years:    years,
		Quarters: quarters,
	}
	for _, t := range analytics.SumTransactionsByType(transactions) {
		options.TransactionTypes = append(options.TransactionTypes, t.Type)
	}
	for _, t := range analytics.SumInsuranceByType(insurance) {
		options.InsuranceTypes = append(options.InsuranceTypes, t.Type)
	}

	return options, nil
}

// OverviewResult feeds the geographic overview page.
type OverviewResult struct {
	StateTotals     []analytics.StateTotal      `json:"state_totals"`
	TypeTotals      []analytics.TypeTotal       `json:"type_totals"`
	TopByCount      []analytics.StateTotal      `json:"top_by_count"`
	TopByAmount     []analytics.StateTotal      `json:"top_by_amount"`
	DistrictLeaders []analytics.DistrictTotal   `json:"district_leaders"`
	TopPerformers   []domain.TopPerformerRecord `json:"top_performers"`
	RowCount        int                         `json:"row_count"`
}

// Overview computes the overview page tables for the given filter.
func (s *DashboardService) Overview(ctx context.Context, f analytics.Filter) (*OverviewResult, error) {
	transactions, err := s.store.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	mapRows, err := s.store.MapTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load map transactions: %w", err)
	}
	performers, err := s.store.TopPerformers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load top performers: %w", err)
	}

	filtered := analytics.FilterTransactions(transactions, f)
	stateTotals := analytics.SumTransactionsByState(filtered)
	districts := analytics.SumByDistrict(analytics.FilterMapTransactions(mapRows, f))

	return &OverviewResult{
		StateTotals:     stateTotals,
		TypeTotals:      analytics.SumTransactionsByType(filtered),
		TopByCount:      analytics.TopStates(stateTotals, analytics.MetricCount, 10),
		TopByAmount:     analytics.TopStates(stateTotals, analytics.MetricAmount, 10),
		DistrictLeaders: analytics.TopDistricts(districts, analytics.MetricAmount, 15),
		TopPerformers:   analytics.FilterTopPerformers(performers, f),
		RowCount:        len(filtered),
	}, nil
}

// TransactionsResult feeds the transactions page.
type TransactionsResult struct {
	TotalCount     int64                   `json:"total_count"`
	TotalAmount    float64                 `json:"total_amount"`
	AvgTransaction analytics.Ratio         `json:"avg_transaction"`
	ByType         []analytics.TypeTotal   `json:"by_type"`
	ByState        []analytics.StateTotal  `json:"by_state"`
	ByPeriod       []analytics.PeriodTotal `json:"by_period"`
	Heatmap        analytics.Pivot         `json:"heatmap"`
	Growth         []analytics.GrowthPoint `json:"growth"`
	OverallGrowth  analytics.Percent       `json:"overall_growth"`
	RowCount       int                     `json:"row_count"`
}

// Transactions computes the transaction analysis tables for the given filter
// and metric.
func (s *DashboardService) Transactions(ctx context.Context, f analytics.Filter, metric analytics.Metric) (*TransactionsResult, error) {
	rows, err := s.store.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	filtered := analytics.FilterTransactions(rows, f)

	result := &TransactionsResult{
		ByType:   analytics.SumTransactionsByType(filtered),
		ByState:  analytics.SumTransactionsByState(filtered),
		ByPeriod: analytics.SumTransactionsByPeriod(filtered),
		Heatmap:  analytics.PivotTransactions(filtered, metric),
		RowCount: len(filtered),
	}
	for _, r := range filtered {
		result.TotalCount += r.Count
		result.TotalAmount += r.Amount
	}
	result.AvgTransaction = analytics.SafeRatio(result.TotalAmount, float64(result.TotalCount))
	result.Growth = analytics.GrowthSeries(result.ByPeriod, metric)
	result.OverallGrowth = analytics.OverallGrowth(result.ByPeriod, metric)

	return result, nil
}

// UsersResult feeds the user analytics page.
type UsersResult struct {
	TotalRegisteredUsers int64                       `json:"total_registered_users"`
	TotalAppOpens        int64                       `json:"total_app_opens"`
	OpensPerUser         analytics.Ratio             `json:"opens_per_user"`
	ByState              []analytics.UserStateTotal  `json:"by_state"`
	ByPeriod             []analytics.UserPeriodTotal `json:"by_period"`
	UserGrowth           analytics.Percent           `json:"user_growth"`
	OpensGrowth          analytics.Percent           `json:"opens_growth"`
	RowCount             int                         `json:"row_count"`
}

// Users computes the user analytics tables for the given filter.
func (s *DashboardService) Users(ctx context.Context, f analytics.Filter) (*UsersResult, error) {
	rows, err := s.store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	filtered := analytics.FilterUsers(rows, f)
	byPeriod := analytics.SumUsersByPeriod(filtered)

	result := &UsersResult{
		ByState:  analytics.SumUsersByState(filtered),
		ByPeriod: byPeriod,
		RowCount: len(filtered),
	}
	for _, r := range filtered {
		result.TotalRegisteredUsers += r.RegisteredUsers
		result.TotalAppOpens += r.AppOpens
	}
	result.OpensPerUser = analytics.SafeRatio(float64(result.TotalAppOpens), float64(result.TotalRegisteredUsers))

	result.UserGrowth = analytics.OverallGrowth(userPeriodsAsTotals(byPeriod, false), analytics.MetricCount)
	result.OpensGrowth = analytics.OverallGrowth(userPeriodsAsTotals(byPeriod, true), analytics.MetricCount)

	return result, nil
}

// userPeriodsAsTotals projects a user period series onto the generic period
// shape so the growth helpers apply.
func userPeriodsAsTotals(series []analytics.UserPeriodTotal, opens bool) []analytics.PeriodTotal {
	out := make([]analytics.PeriodTotal, 0, len(series))
	for _, pt := range series {
		v := pt.RegisteredUsers
		if opens {
			v = pt.AppOpens
		}
		out = append(out, analytics.PeriodTotal{
			Period: pt.Period,
			Label:  pt.Label,
			Count:  v,
		})
	}
	return out
}

// InsuranceResult feeds the insurance analytics page.
type InsuranceResult struct {
	TotalCount    int64                      `json:"total_count"`
	TotalAmount   float64                    `json:"total_amount"`
	AvgPolicy     analytics.Ratio            `json:"avg_policy"`
	ByType        []analytics.TypeTotal      `json:"by_type"`
	ByState       []analytics.StateTotal     `json:"by_state"`
	ByPeriod      []analytics.PeriodTotal    `json:"by_period"`
	Penetration   []analytics.PenetrationRow `json:"penetration"`
	Growth        []analytics.GrowthPoint    `json:"growth"`
	OverallGrowth analytics.Percent          `json:"overall_growth"`
	RowCount      int                        `json:"row_count"`
}

// Insurance computes the insurance analytics tables for the given filter and
// metric. Penetration joins against the users dataset under the same filter.
func (s *DashboardService) Insurance(ctx context.Context, f analytics.Filter, metric analytics.Metric) (*InsuranceResult, error) {
	rows, err := s.store.Insurance(ctx)
	if err != nil {
		return nil, fmt.Errorf("load insurance: %w", err)
	}
	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	filtered := analytics.FilterInsurance(rows, f)

	// The users join ignores the insurance type clause; the users dataset
	// has no category column.
	userFilter := f
	userFilter.Type = ""
	filteredUsers := analytics.FilterUsers(users, userFilter)

	result := &InsuranceResult{
		ByType:      analytics.SumInsuranceByType(filtered),
		ByState:     analytics.SumInsuranceByState(filtered),
		ByPeriod:    analytics.SumInsuranceByPeriod(filtered),
		Penetration: analytics.Penetration(filtered, filteredUsers),
		RowCount:    len(filtered),
	}
	for _, r := range filtered {
		result.TotalCount += r.Count
		result.TotalAmount += r.Amount
	}
	result.AvgPolicy = analytics.SafeRatio(result.TotalAmount, float64(result.TotalCount))
	result.Growth = analytics.GrowthSeries(result.ByPeriod, metric)
	result.OverallGrowth = analytics.OverallGrowth(result.ByPeriod, metric)

	return result, nil
}

// TrendPoint merges the three datasets on one quarter.
type TrendPoint struct {
	Period            domain.Period   `json:"period"`
	Label             string          `json:"label"`
	TransactionCount  int64           `json:"transaction_count"`
	TransactionAmount float64         `json:"transaction_amount"`
	RegisteredUsers   int64           `json:"registered_users"`
	AppOpens          int64           `json:"app_opens"`
	InsuranceCount    int64           `json:"insurance_count"`
	InsuranceAmount   float64         `json:"insurance_amount"`
	OpensPerUser      analytics.Ratio `json:"opens_per_user"`
	AvgTransaction    analytics.Ratio `json:"avg_transaction"`
}

// TrendsResult feeds the trends and comparison page.
type TrendsResult struct {
	Series            []TrendPoint            `json:"series"`
	TransactionGrowth []analytics.GrowthPoint `json:"transaction_growth"`
	UserGrowth        []analytics.GrowthPoint `json:"user_growth"`
	InsuranceGrowth   []analytics.GrowthPoint `json:"insurance_growth"`
}

// Trends builds the combined quarterly time series across all three main
// datasets. last limits the series to the trailing n quarters when positive.
func (s *DashboardService) Trends(ctx context.Context, f analytics.Filter, metric analytics.Metric, last int) (*TrendsResult, error) {
	transactions, err := s.store.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	insurance, err := s.store.Insurance(ctx)
	if err != nil {
		return nil, fmt.Errorf("load insurance: %w", err)
	}

	txnPeriods := analytics.SumTransactionsByPeriod(analytics.FilterTransactions(transactions, f))
	userPeriods := analytics.SumUsersByPeriod(analytics.FilterUsers(users, f))
	insPeriods := analytics.SumInsuranceByPeriod(analytics.FilterInsurance(insurance, f))

	series := mergeTrends(txnPeriods, userPeriods, insPeriods)
	series = analytics.LastN(series, last)

	return &TrendsResult{
		Series:            series,
		TransactionGrowth: analytics.GrowthSeries(analytics.LastN(txnPeriods, last), metric),
		UserGrowth:        analytics.GrowthSeries(analytics.LastN(userPeriodsAsTotals(userPeriods, false), last), analytics.MetricCount),
		InsuranceGrowth:   analytics.GrowthSeries(analytics.LastN(insPeriods, last), metric),
	}, nil
}

// mergeTrends outer-joins the per-dataset period series on the quarter.
func mergeTrends(txn []analytics.PeriodTotal, users []analytics.UserPeriodTotal, ins []analytics.PeriodTotal) []TrendPoint {
	byPeriod := make(map[domain.Period]*TrendPoint)

	point := func(p domain.Period) *TrendPoint {
		if pt, ok := byPeriod[p]; ok {
			return pt
		}
		pt := &TrendPoint{Period: p, Label: p.Label()}
		byPeriod[p] = pt
		return pt
	}

	for _, t := range txn {
		pt := point(t.Period)
		pt.TransactionCount = t.Count
		pt.TransactionAmount = t.Amount
	}
	for _, u := range users {
		pt := point(u.Period)
		pt.RegisteredUsers = u.RegisteredUsers
		pt.AppOpens = u.AppOpens
	}
	for _, i := range ins {
		pt := point(i.Period)
		pt.InsuranceCount = i.Count
		pt.InsuranceAmount = i.Amount
	}

	out := make([]TrendPoint, 0, len(byPeriod))
	for _, pt := range byPeriod {
		pt.OpensPerUser = analytics.SafeRatio(float64(pt.AppOpens), float64(pt.RegisteredUsers))
		pt.AvgTransaction = analytics.SafeRatio(pt.TransactionAmount, float64(pt.TransactionCount))
		out = append(out, *pt)
	}
	sortTrendPoints(out)
	return out
}

func sortTrendPoints(points []TrendPoint) {
	for i := 1; i < len(points); i++ {
		for j := i; j > 0 && points[j].Period.Before(points[j-1].Period); j-- {
			points[j], points[j-1] = points[j-1], points[j]
		}
	}
}

// StateSeries is one state's quarterly series for the comparison chart.
type StateSeries struct {
	State  string                  `json:"state"`
	Points []analytics.PeriodTotal `json:"points"`
}

// CompareStates builds per-state quarterly transaction series for the
// comparison chart on the trends page.
func (s *DashboardService) CompareStates(ctx context.Context, states []string, f analytics.Filter) ([]StateSeries, error) {
	rows, err := s.store.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	out := make([]StateSeries, 0, len(states))
	for _, state := range states {
		sf := f
		sf.State = state
		out = append(out, StateSeries{
			State:  state,
			Points: analytics.SumTransactionsByPeriod(analytics.FilterTransactions(rows, sf)),
		})
	}
	return out, nil
}

// Dataset exposes the raw rows of one dataset for inspection.
func (s *DashboardService) Dataset(ctx context.Context, id domain.DatasetID) (interface{}, int, error) {
	return s.store.Dataset(ctx, id)
}

// SetRefreshListener registers a callback fired after a successful cache
// refresh. Used to push a stale-view notice to connected dashboards.
func (s *DashboardService) SetRefreshListener(fn func()) {
	s.onRefresh = fn
}

// Refresh drops every cached dataset and re-warms the cache from disk.
func (s *DashboardService) Refresh(ctx context.Context) error {
	s.logger.InfoContext(ctx, "refreshing dataset cache")
	s.store.InvalidateAll()
	if err := s.store.Warm(ctx); err != nil {
		return fmt.Errorf("re-warm dataset cache: %w", err)
	}
	if s.onRefresh != nil {
		s.onRefresh()
	}
	return nil
}
