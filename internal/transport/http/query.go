package http

import (
	"net/http"
	"strconv"
	"strings"

	"pulseapi/internal/analytics"
)

// filterFromQuery reads the shared filter parameters leniently, ignoring
// values that do not parse. The export endpoints use it; the page endpoints
// validate strictly through parseFilter instead.
func filterFromQuery(r *http.Request) analytics.Filter {
	q := r.URL.Query()

	intOrZero := func(name string) int {
		v, err := strconv.Atoi(q.Get(name))
		if err != nil {
			return 0
		}
		return v
	}

	f := analytics.Filter{
		State:    strings.TrimSpace(q.Get("state")),
		YearFrom: intOrZero("year_from"),
		YearTo:   intOrZero("year_to"),
		Quarter:  intOrZero("quarter"),
		Type:     strings.TrimSpace(q.Get("type")),
	}
	if year := intOrZero("year"); year != 0 {
		f.YearFrom, f.YearTo = year, year
	}
	return f
}

// metricFromQuery reads the metric parameter, defaulting to count.
func metricFromQuery(r *http.Request) analytics.Metric {
	m := analytics.Metric(strings.TrimSpace(r.URL.Query().Get("metric")))
	if !m.Valid() {
		return analytics.MetricCount
	}
	return m
}
