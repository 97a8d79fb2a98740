package analytics

import (
	"sort"

	"pulseapi/pkg/contracts/domain"
)

// Metric selects which measure a ranking or growth series is computed over.
type Metric string

const (
	MetricCount  Metric = "count"
	MetricAmount Metric = "amount"
)

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	return m == MetricCount || m == MetricAmount
}

// StateTotal is a group-by-state rollup row.
type StateTotal struct {
	State  string  `json:"state"`
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

// TypeTotal is a group-by-category rollup row.
type TypeTotal struct {
	Type   string  `json:"type"`
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

// PeriodTotal is a group-by-quarter rollup row, chronologically ordered.
type PeriodTotal struct {
	Period domain.Period `json:"period"`
	Label  string        `json:"label"`
	Count  int64         `json:"count"`
	Amount float64       `json:"amount"`
}

// DistrictTotal is a group-by-district rollup row with the derived average
// transaction value.
type DistrictTotal struct {
	State          string  `json:"state"`
	District       string  `json:"district"`
	Count          int64   `json:"count"`
	Amount         float64 `json:"amount"`
	AvgTransaction Ratio   `json:"avg_transaction"`
}

// UserStateTotal is a group-by-state rollup of the users dataset with the
// derived engagement ratio.
type UserStateTotal struct {
	State           string `json:"state"`
	RegisteredUsers int64  `json:"registered_users"`
	AppOpens        int64  `json:"app_opens"`
	OpensPerUser    Ratio  `json:"opens_per_user"`
}

// UserPeriodTotal is a group-by-quarter rollup of the users dataset.
type UserPeriodTotal struct {
	Period          domain.Period `json:"period"`
	Label           string        `json:"label"`
	RegisteredUsers int64         `json:"registered_users"`
	AppOpens        int64         `json:"app_opens"`
}

// total is the generic accumulator shared by the rollups.
type total struct {
	count  int64
	amount float64
}

// sumBy folds rows into per-key totals using the provided accessors.
func sumBy[T any, K comparable](rows []T, key func(T) K, count func(T) int64, amount func(T) float64) map[K]total {
	acc := make(map[K]total)
	for _, r := range rows {
		t := acc[key(r)]
		t.count += count(r)
		t.amount += amount(r)
		acc[key(r)] = t
	}
	return acc
}

// SumTransactionsByState rolls transactions up per state, sorted by state name.
func SumTransactionsByState(rows []domain.TransactionRecord) []StateTotal {
	acc := sumBy(rows,
		func(r domain.TransactionRecord) string { return r.State },
		func(r domain.TransactionRecord) int64 { return r.Count },
		func(r domain.TransactionRecord) float64 { return r.Amount })

	out := make([]StateTotal, 0, len(acc))
	for state, t := range acc {
		out = append(out, StateTotal{State: state, Count: t.count, Amount: t.amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}

// SumTransactionsByType rolls transactions up per payment category, sorted by
// descending count.
func SumTransactionsByType(rows []domain.TransactionRecord) []TypeTotal {
	acc := sumBy(rows,
		func(r domain.TransactionRecord) string { return r.Type },
		func(r domain.TransactionRecord) int64 { return r.Count },
		func(r domain.TransactionRecord) float64 { return r.Amount })

	out := make([]TypeTotal, 0, len(acc))
	for typ, t := range acc {
		out = append(out, TypeTotal{Type: typ, Count: t.count, Amount: t.amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// SumTransactionsByPeriod rolls transactions up per quarter in chronological
// order.
func SumTransactionsByPeriod(rows []domain.TransactionRecord) []PeriodTotal {
	acc := sumBy(rows,
		func(r domain.TransactionRecord) domain.Period { return r.Period() },
		func(r domain.TransactionRecord) int64 { return r.Count },
		func(r domain.TransactionRecord) float64 { return r.Amount })

	return sortPeriodTotals(acc)
}

// SumInsuranceByState rolls insurance policies up per state, sorted by state
// name.
func SumInsuranceByState(rows []domain.InsuranceRecord) []StateTotal {
	acc := sumBy(rows,
		func(r domain.InsuranceRecord) string { return r.State },
		func(r domain.InsuranceRecord) int64 { return r.Count },
		func(r domain.InsuranceRecord) float64 { return r.Amount })

	out := make([]StateTotal, 0, len(acc))
	for state, t := range acc {
		out = append(out, StateTotal{State: state, Count: t.count, Amount: t.amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}

// SumInsuranceByType rolls insurance policies up per category, sorted by
// descending count.
func SumInsuranceByType(rows []domain.InsuranceRecord) []TypeTotal {
	acc := sumBy(rows,
		func(r domain.InsuranceRecord) string { return r.Type },
		func(r domain.InsuranceRecord) int64 { return r.Count },
		func(r domain.InsuranceRecord) float64 { return r.Amount })

	out := make([]TypeTotal, 0, len(acc))
	for typ, t := range acc {
		out = append(out, TypeTotal{Type: typ, Count: t.count, Amount: t.amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// SumInsuranceByPeriod rolls insurance policies up per quarter in
// chronological order.
func SumInsuranceByPeriod(rows []domain.InsuranceRecord) []PeriodTotal {
	acc := sumBy(rows,
		func(r domain.InsuranceRecord) domain.Period { return r.Period() },
		func(r domain.InsuranceRecord) int64 { return r.Count },
		func(r domain.InsuranceRecord) float64 { return r.Amount })

	return sortPeriodTotals(acc)
}

// SumUsersByState rolls the users dataset up per state with the opens-per-user
// engagement ratio, sorted by state name.
func SumUsersByState(rows []domain.UserRecord) []UserStateTotal {
	acc := sumBy(rows,
		func(r domain.UserRecord) string { return r.State },
		func(r domain.UserRecord) int64 { return r.RegisteredUsers },
		func(r domain.UserRecord) float64 { return float64(r.AppOpens) })

	out := make([]UserStateTotal, 0, len(acc))
	for state, t := range acc {
		out = append(out, UserStateTotal{
			State:           state,
			RegisteredUsers: t.count,
			AppOpens:        int64(t.amount),
			OpensPerUser:    SafeRatio(t.amount, float64(t.count)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}

// SumUsersByPeriod rolls the users dataset up per quarter in chronological
// order.
func SumUsersByPeriod(rows []domain.UserRecord) []UserPeriodTotal {
	acc := sumBy(rows,
		func(r domain.UserRecord) domain.Period { return r.Period() },
		func(r domain.UserRecord) int64 { return r.RegisteredUsers },
		func(r domain.UserRecord) float64 { return float64(r.AppOpens) })

	out := make([]UserPeriodTotal, 0, len(acc))
	for period, t := range acc {
		out = append(out, UserPeriodTotal{
			Period:          period,
			Label:           period.Label(),
			RegisteredUsers: t.count,
			AppOpens:        int64(t.amount),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return out
}

// SumByDistrict rolls the map dataset up per (state, district) with the
// average transaction value, sorted by state then district.
func SumByDistrict(rows []domain.MapTransactionRecord) []DistrictTotal {
	type districtKey struct {
		state    string
		district string
	}

	acc := sumBy(rows,
		func(r domain.MapTransactionRecord) districtKey {
			return districtKey{state: r.State, district: r.District}
		},
		func(r domain.MapTransactionRecord) int64 { return r.Count },
		func(r domain.MapTransactionRecord) float64 { return r.Amount })

	out := make([]DistrictTotal, 0, len(acc))
	for key, t := range acc {
		out = append(out, DistrictTotal{
			State:          key.state,
			District:       key.district,
			Count:          t.count,
			Amount:         t.amount,
			AvgTransaction: SafeRatio(t.amount, float64(t.count)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].State != out[j].State {
			return out[i].State < out[j].State
		}
		return out[i].District < out[j].District
	})
	return out
}

func sortPeriodTotals(acc map[domain.Period]total) []PeriodTotal {
	out := make([]PeriodTotal, 0, len(acc))
	for period, t := range acc {
		out = append(out, PeriodTotal{
			Period: period,
			Label:  period.Label(),
			Count:  t.count,
			Amount: t.amount,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return out
}

// TopStates returns the n highest state totals by the chosen metric.
// Ties break on state name so the ranking is stable.
func TopStates(totals []StateTotal, metric Metric, n int) []StateTotal {
	out := make([]StateTotal, len(totals))
	copy(out, totals)

	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch metric {
		case MetricAmount:
			if out[i].Amount != out[j].Amount {
				return out[i].Amount > out[j].Amount
			}
			less = out[i].State < out[j].State
		default:
			if out[i].Count != out[j].Count {
				return out[i].Count > out[j].Count
			}
			less = out[i].State < out[j].State
		}
		return less
	})

	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// TopDistricts returns the n highest district totals by the chosen metric.
func TopDistricts(totals []DistrictTotal, metric Metric, n int) []DistrictTotal {
	out := make([]DistrictTotal, len(totals))
	copy(out, totals)

	sort.Slice(out, func(i, j int) bool {
		switch metric {
		case MetricAmount:
			if out[i].Amount != out[j].Amount {
				return out[i].Amount > out[j].Amount
			}
		default:
			if out[i].Count != out[j].Count {
				return out[i].Count > out[j].Count
			}
		}
		if out[i].State != out[j].State {
			return out[i].State < out[j].State
		}
		return out[i].District < out[j].District
	})

	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// LastN returns the trailing n elements of a period series (the "recent
// quarters" window the entry page uses). n <= 0 or n >= len returns the
// input unchanged.
func LastN[T any](series []T, n int) []T {
	if n <= 0 || n >= len(series) {
		return series
	}
	return series[len(series)-n:]
}
