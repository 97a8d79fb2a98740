package analytics

import (
	"sort"

	"pulseapi/pkg/contracts/domain"
)

// Pivot is a dense State × Type matrix of one metric, the shape the heatmap
// charts consume. Cells without data are zero-filled.
type Pivot struct {
	Rows    []string    `json:"rows"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// PivotTransactions builds a State × Transaction_Type matrix of the chosen
// metric. Rows and columns are sorted so the layout is deterministic.
func PivotTransactions(rows []domain.TransactionRecord, metric Metric) Pivot {
	type cell struct {
		state string
		typ   string
	}

	acc := make(map[cell]float64)
	stateSet := make(map[string]struct{})
	typeSet := make(map[string]struct{})

	for _, r := range rows {
		value := float64(r.Count)
		if metric == MetricAmount {
			value = r.Amount
		}
		acc[cell{state: r.State, typ: r.Type}] += value
		stateSet[r.State] = struct{}{}
		typeSet[r.Type] = struct{}{}
	}

	states := make([]string, 0, len(stateSet))
	for s := range stateSet {
		states = append(states, s)
	}
	sort.Strings(states)

	types := make([]string, 0, len(typeSet))
	for t := range typeSet {
		types = append(types, t)
	}
	sort.Strings(types)

	values := make([][]float64, len(states))
	for i, state := range states {
		values[i] = make([]float64, len(types))
		for j, typ := range types {
			values[i][j] = acc[cell{state: state, typ: typ}]
		}
	}

	return Pivot{Rows: states, Columns: types, Values: values}
}

// PenetrationRow is the insurance-adoption ratio for one state: policies per
// hundred registered users.
type PenetrationRow struct {
	State           string  `json:"state"`
	InsuranceCount  int64   `json:"insurance_count"`
	RegisteredUsers int64   `json:"registered_users"`
	Penetration     Percent `json:"penetration"`
}

// Penetration joins insurance and user rollups on state and computes the
// adoption ratio. States missing from either side are skipped; the result is
// sorted by descending penetration.
func Penetration(insurance []domain.InsuranceRecord, users []domain.UserRecord) []PenetrationRow {
	policies := sumBy(insurance,
		func(r domain.InsuranceRecord) string { return r.State },
		func(r domain.InsuranceRecord) int64 { return r.Count },
		func(r domain.InsuranceRecord) float64 { return r.Amount })

	registered := sumBy(users,
		func(r domain.UserRecord) string { return r.State },
		func(r domain.UserRecord) int64 { return r.RegisteredUsers },
		func(r domain.UserRecord) float64 { return 0 })

	out := make([]PenetrationRow, 0, len(policies))
	for state, p := range policies {
		u, ok := registered[state]
		if !ok {
			continue
		}
		out = append(out, PenetrationRow{
			State:           state,
			InsuranceCount:  p.count,
			RegisteredUsers: u.count,
			Penetration:     Percent(SafeRatio(float64(p.count), float64(u.count)) * 100),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Penetration, out[j].Penetration
		if pi.IsDefined() != pj.IsDefined() {
			return pi.IsDefined()
		}
		if pi != pj {
			return pi > pj
		}
		return out[i].State < out[j].State
	})
	return out
}
