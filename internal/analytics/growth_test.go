package analytics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseapi/pkg/contracts/domain"
)

func TestGrowth(t *testing.T) {
	tests := []struct {
		name    string
		prior   float64
		current float64
		want    float64
		defined bool
	}{
		{name: "increase", prior: 100, current: 150, want: 50, defined: true},
		{name: "decrease", prior: 200, current: 150, want: -25, defined: true},
		{name: "flat", prior: 100, current: 100, want: 0, defined: true},
		{name: "zero prior is undefined", prior: 0, current: 500, defined: false},
		{name: "to zero", prior: 100, current: 0, want: -100, defined: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Growth(tt.prior, tt.current)
			if !tt.defined {
				assert.False(t, got.IsDefined())
				return
			}
			require.True(t, got.IsDefined())
			assert.InDelta(t, tt.want, float64(got), 1e-9)
		})
	}
}

func TestSafeRatio(t *testing.T) {
	assert.InDelta(t, 2.5, float64(SafeRatio(5, 2)), 1e-9)
	assert.False(t, SafeRatio(5, 0).IsDefined())
}

func TestGrowthSeries(t *testing.T) {
	series := []PeriodTotal{
		{Period: domain.Period{Year: 2022, Quarter: 1}, Label: "2022-Q1", Count: 100, Amount: 1000},
		{Period: domain.Period{Year: 2022, Quarter: 2}, Label: "2022-Q2", Count: 150, Amount: 1200},
		{Period: domain.Period{Year: 2022, Quarter: 3}, Label: "2022-Q3", Count: 150, Amount: 600},
	}

	got := GrowthSeries(series, MetricCount)
	require.Len(t, got, 3)

	assert.False(t, got[0].Growth.IsDefined(), "first point has no prior")
	assert.InDelta(t, 50, float64(got[1].Growth), 1e-9)
	assert.InDelta(t, 0, float64(got[2].Growth), 1e-9)
	assert.Equal(t, "2022-Q2", got[1].Label)

	byAmount := GrowthSeries(series, MetricAmount)
	assert.InDelta(t, 20, float64(byAmount[1].Growth), 1e-9)
	assert.InDelta(t, -50, float64(byAmount[2].Growth), 1e-9)
}

func TestGrowthSeriesZeroPrior(t *testing.T) {
	series := []PeriodTotal{
		{Period: domain.Period{Year: 2022, Quarter: 1}, Count: 0},
		{Period: domain.Period{Year: 2022, Quarter: 2}, Count: 500},
	}

	got := GrowthSeries(series, MetricCount)
	require.Len(t, got, 2)
	assert.False(t, got[1].Growth.IsDefined(), "growth over a zero quarter is undefined")
}

func TestOverallGrowth(t *testing.T) {
	series := []PeriodTotal{
		{Period: domain.Period{Year: 2022, Quarter: 1}, Count: 100, Amount: 400},
		{Period: domain.Period{Year: 2022, Quarter: 2}, Count: 90, Amount: 500},
		{Period: domain.Period{Year: 2022, Quarter: 3}, Count: 200, Amount: 800},
	}

	assert.InDelta(t, 100, float64(OverallGrowth(series, MetricCount)), 1e-9)
	assert.InDelta(t, 100, float64(OverallGrowth(series, MetricAmount)), 1e-9)

	assert.False(t, OverallGrowth(series[:1], MetricCount).IsDefined())
	assert.False(t, OverallGrowth(nil, MetricCount).IsDefined())
}

func TestPercentMarshalJSON(t *testing.T) {
	type payload struct {
		Growth Percent `json:"growth"`
		Ratio  Ratio   `json:"ratio"`
	}

	out, err := json.Marshal(payload{
		Growth: Percent(math.NaN()),
		Ratio:  Ratio(math.NaN()),
	})
	require.NoError(t, err, "NaN must not break the encoder")
	assert.JSONEq(t, `{"growth":null,"ratio":null}`, string(out))

	out, err = json.Marshal(payload{Growth: 12.5, Ratio: 0.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"growth":12.5,"ratio":0.5}`, string(out))
}
