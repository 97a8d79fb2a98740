package analytics

import (
	"encoding/json"
	"math"

	"pulseapi/pkg/contracts/domain"
)

// Percent is a percentage value that may be undefined (NaN). Undefined values
// marshal as JSON null instead of breaking the encoder.
type Percent float64

// IsDefined reports whether the percentage carries a value.
func (p Percent) IsDefined() bool {
	return !math.IsNaN(float64(p))
}

// MarshalJSON renders NaN as null.
func (p Percent) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(p))
}

// Ratio is a derived quotient with the same NaN-as-null JSON discipline.
type Ratio float64

// IsDefined reports whether the ratio carries a value.
func (r Ratio) IsDefined() bool {
	return !math.IsNaN(float64(r))
}

// MarshalJSON renders NaN as null.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(r)) || math.IsInf(float64(r), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(r))
}

// GrowthPoint is one element of a period-over-period growth series.
type GrowthPoint struct {
	Period domain.Period `json:"period"`
	Label  string        `json:"label"`
	Value  float64       `json:"value"`
	Growth Percent       `json:"growth"`
}

// Growth returns the percentage change from prior to current. A zero prior
// period has no defined growth and yields NaN, never a panic.
func Growth(prior, current float64) Percent {
	if prior == 0 {
		return Percent(math.NaN())
	}
	return Percent((current - prior) / prior * 100)
}

// SafeRatio divides numerator by denominator, yielding NaN for a zero
// denominator.
func SafeRatio(numerator, denominator float64) Ratio {
	if denominator == 0 {
		return Ratio(math.NaN())
	}
	return Ratio(numerator / denominator)
}

// GrowthSeries computes quarter-over-quarter growth of the chosen metric over
// a chronologically ordered period series. The first point has no prior and
// is therefore undefined.
func GrowthSeries(series []PeriodTotal, metric Metric) []GrowthPoint {
	out := make([]GrowthPoint, 0, len(series))
	for i, pt := range series {
		value := float64(pt.Count)
		if metric == MetricAmount {
			value = pt.Amount
		}

		growth := Percent(math.NaN())
		if i > 0 {
			prior := float64(series[i-1].Count)
			if metric == MetricAmount {
				prior = series[i-1].Amount
			}
			growth = Growth(prior, value)
		}

		out = append(out, GrowthPoint{
			Period: pt.Period,
			Label:  pt.Label,
			Value:  value,
			Growth: growth,
		})
	}
	return out
}

// OverallGrowth returns the percentage change between the first and last
// points of a period series, the "X% from 2020 to 2023" figure shown on the
// page summaries. Undefined when the series has fewer than two points or a
// zero starting value.
func OverallGrowth(series []PeriodTotal, metric Metric) Percent {
	if len(series) < 2 {
		return Percent(math.NaN())
	}

	first := float64(series[0].Count)
	last := float64(series[len(series)-1].Count)
	if metric == MetricAmount {
		first = series[0].Amount
		last = series[len(series)-1].Amount
	}

	return Growth(first, last)
}
