package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseapi/internal/analytics"
	"pulseapi/internal/dataset"
	apperrors "pulseapi/internal/errors"
	"pulseapi/pkg/contracts/domain"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFixture(t, dir, "aggregated_transactions.csv",
		`State,Year,Quarter,Transaction_Type,Transaction_Count,Transaction_Amount
karnataka,2022,1,P2P,100,5000
karnataka,2022,2,P2P,200,8000
karnataka,2022,2,Merchant,50,1000
goa,2022,1,P2P,10,200
goa,2022,2,P2P,20,500
`)
	writeFixture(t, dir, "aggregated_users.csv",
		`State,Year,Quarter,Registered_Users,App_Opens
karnataka,2022,1,1000,15000
karnataka,2022,2,1200,20000
goa,2022,1,100,500
goa,2022,2,110,800
`)
	writeFixture(t, dir, "aggregated_insurance.csv",
		`State,Year,Quarter,Insurance_Type,Insurance_Count,Insurance_Amount
karnataka,2022,1,Motor,20,40000
karnataka,2022,2,Motor,30,60000
goa,2022,2,Life,2,9000
`)
	writeFixture(t, dir, "map_transactions.csv",
		`State,Year,Quarter,District,Transaction_Count,Transaction_Amount
karnataka,2022,1,bengaluru urban,80,4000
karnataka,2022,1,mysuru,20,1000
goa,2022,1,north goa,10,200
`)
	writeFixture(t, dir, "top_performers.csv",
		`State,Year,Quarter,Entity_Type,Entity_Name,Transaction_Count,Transaction_Amount
karnataka,2022,1,district,bengaluru urban,80,4000
goa,2022,1,pincode,403001,5,100
`)
	return dir
}

func newTestService(t *testing.T) (*DashboardService, string) {
	t.Helper()
	dir := fixtureDir(t)
	store := dataset.NewStore(dir, slog.Default())
	return NewDashboardService(store, slog.Default()), dir
}

func TestDashboardServiceSummary(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 380, stats.TotalTransactions)
	assert.InDelta(t, 14700, stats.TotalTransactionAmount, 1e-9)
	assert.EqualValues(t, 2410, stats.TotalRegisteredUsers)
	assert.EqualValues(t, 36300, stats.TotalAppOpens)
	assert.EqualValues(t, 52, stats.TotalInsuranceCount)
	assert.Equal(t, 2, stats.StatesCovered)
	assert.Equal(t, "2022 - 2022", stats.YearsCovered)

	require.Contains(t, stats.Formatted, "total_transaction_amount")
	assert.Equal(t, "₹14.70K", stats.Formatted["total_transaction_amount"])
}

func TestDashboardServiceFilters(t *testing.T) {
	svc, _ := newTestService(t)

	options, err := svc.Filters(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"goa", "karnataka"}, options.States)
	assert.Equal(t, []int{2022}, options.Years)
	assert.Equal(t, []int{1, 2}, options.Quarters)
	assert.Equal(t, []string{"P2P", "Merchant"}, options.TransactionTypes)
	assert.ElementsMatch(t, []string{"Motor", "Life"}, options.InsuranceTypes)
}

func TestDashboardServiceOverview(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Overview(context.Background(), analytics.Filter{})
	require.NoError(t, err)

	require.Len(t, result.StateTotals, 2)
	assert.Equal(t, "goa", result.StateTotals[0].State)
	assert.Equal(t, "karnataka", result.TopByCount[0].State)
	assert.Len(t, result.DistrictLeaders, 3)
	assert.Len(t, result.TopPerformers, 2)
	assert.Equal(t, 5, result.RowCount)
}

func TestDashboardServiceTransactions(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Transactions(context.Background(), analytics.Filter{State: "karnataka"}, analytics.MetricCount)
	require.NoError(t, err)

	assert.EqualValues(t, 350, result.TotalCount)
	assert.InDelta(t, 14000, result.TotalAmount, 1e-9)
	assert.InDelta(t, 40, float64(result.AvgTransaction), 1e-9)
	assert.Equal(t, 3, result.RowCount)

	require.Len(t, result.ByPeriod, 2)
	require.Len(t, result.Growth, 2)
	assert.False(t, result.Growth[0].Growth.IsDefined())
	assert.InDelta(t, 150, float64(result.Growth[1].Growth), 1e-9, "100 to 250 transactions")
	assert.InDelta(t, 150, float64(result.OverallGrowth), 1e-9)

	assert.Equal(t, []string{"karnataka"}, result.Heatmap.Rows)
	assert.Equal(t, []string{"Merchant", "P2P"}, result.Heatmap.Columns)
}

func TestDashboardServiceEmptyResultIsNotAnError(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Transactions(context.Background(), analytics.Filter{State: "atlantis"}, analytics.MetricCount)
	require.NoError(t, err, "a filter matching nothing is an empty view, not a failure")

	assert.Zero(t, result.TotalCount)
	assert.Empty(t, result.ByState)
	assert.Empty(t, result.ByPeriod)
	assert.Equal(t, 0, result.RowCount)
	assert.False(t, result.AvgTransaction.IsDefined())
	assert.False(t, result.OverallGrowth.IsDefined())
}

func TestDashboardServiceUsers(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Users(context.Background(), analytics.Filter{})
	require.NoError(t, err)

	assert.EqualValues(t, 2410, result.TotalRegisteredUsers)
	assert.EqualValues(t, 36300, result.TotalAppOpens)
	require.Len(t, result.ByPeriod, 2)

	// 1100 -> 1310 registered users.
	assert.InDelta(t, 19.0909, float64(result.UserGrowth), 1e-3)
	assert.True(t, result.OpensPerUser.IsDefined())
}

func TestDashboardServiceInsurance(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Insurance(context.Background(), analytics.Filter{}, analytics.MetricCount)
	require.NoError(t, err)

	assert.EqualValues(t, 52, result.TotalCount)
	require.Len(t, result.Penetration, 2)
	assert.Equal(t, "karnataka", result.Penetration[0].State)
	// 50 policies over 2200 registered users.
	assert.InDelta(t, 2.2727, float64(result.Penetration[0].Penetration), 1e-3)
}

func TestDashboardServiceTrends(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Trends(context.Background(), analytics.Filter{}, analytics.MetricCount, 0)
	require.NoError(t, err)

	require.Len(t, result.Series, 2)
	assert.Equal(t, "2022-Q1", result.Series[0].Label)
	assert.EqualValues(t, 110, result.Series[0].TransactionCount)
	assert.EqualValues(t, 1100, result.Series[0].RegisteredUsers)
	assert.EqualValues(t, 20, result.Series[0].InsuranceCount)

	limited, err := svc.Trends(context.Background(), analytics.Filter{}, analytics.MetricCount, 1)
	require.NoError(t, err)
	require.Len(t, limited.Series, 1)
	assert.Equal(t, "2022-Q2", limited.Series[0].Label)
}

func TestDashboardServiceCompareStates(t *testing.T) {
	svc, _ := newTestService(t)

	series, err := svc.CompareStates(context.Background(), []string{"goa", "karnataka"}, analytics.Filter{})
	require.NoError(t, err)

	require.Len(t, series, 2)
	assert.Equal(t, "goa", series[0].State)
	require.Len(t, series[0].Points, 2)
	assert.EqualValues(t, 10, series[0].Points[0].Count)
}

func TestDashboardServiceRefresh(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	_, err := svc.Summary(ctx)
	require.NoError(t, err)

	notified := false
	svc.SetRefreshListener(func() { notified = true })

	writeFixture(t, dir, "aggregated_transactions.csv",
		"State,Year,Quarter,Transaction_Type,Transaction_Count,Transaction_Amount\nsikkim,2023,1,P2P,7,70\n")

	require.NoError(t, svc.Refresh(ctx))
	assert.True(t, notified, "refresh listener must fire on success")

	stats, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 7, stats.TotalTransactions)
}

func TestDashboardServiceRefreshFailure(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	notified := false
	svc.SetRefreshListener(func() { notified = true })

	require.NoError(t, os.Remove(filepath.Join(dir, "aggregated_users.csv")))

	err := svc.Refresh(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.False(t, notified, "no notification on a failed refresh")
}

func TestDashboardServiceDataset(t *testing.T) {
	svc, _ := newTestService(t)

	rows, count, err := svc.Dataset(context.Background(), domain.DatasetTopPerformers)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NotNil(t, rows)
}
