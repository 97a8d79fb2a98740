package domain

import "fmt"

// DatasetID identifies one of the pre-aggregated CSV datasets served by the
// dashboard. IDs double as the stable keys used by the loader cache and the
// /api/datasets/{id} route.
type DatasetID string

const (
	DatasetTransactions    DatasetID = "aggregated_transactions"
	DatasetUsers           DatasetID = "aggregated_users"
	DatasetInsurance       DatasetID = "aggregated_insurance"
	DatasetMapTransactions DatasetID = "map_transactions"
	DatasetTopPerformers   DatasetID = "top_performers"
)

// AllDatasets lists every dataset the service knows about, in load order.
func AllDatasets() []DatasetID {
	return []DatasetID{
		DatasetTransactions,
		DatasetUsers,
		DatasetInsurance,
		DatasetMapTransactions,
		DatasetTopPerformers,
	}
}

// Valid reports whether id names a known dataset.
func (id DatasetID) Valid() bool {
	switch id {
	case DatasetTransactions, DatasetUsers, DatasetInsurance,
		DatasetMapTransactions, DatasetTopPerformers:
		return true
	}
	return false
}

// Period is a (Year, Quarter) pair, the finest time grain in the datasets.
type Period struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

// Label renders the period in the "2022-Q3" form used for chart axes.
func (p Period) Label() string {
	return fmt.Sprintf("%d-Q%d", p.Year, p.Quarter)
}

// Before reports whether p is chronologically before other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Quarter < other.Quarter
}

// TransactionRecord is one row of the aggregated transactions dataset:
// transaction volume and value per state, quarter and payment category.
type TransactionRecord struct {
	State   string  `json:"state"`
	Year    int     `json:"year"`
	Quarter int     `json:"quarter"`
	Type    string  `json:"type"`
	Count   int64   `json:"count"`
	Amount  float64 `json:"amount"`
}

// Period returns the record's time grain.
func (r TransactionRecord) Period() Period { return Period{Year: r.Year, Quarter: r.Quarter} }

// UserRecord is one row of the aggregated users dataset: registrations and
// app-open counts per state and quarter.
type UserRecord struct {
	State           string `json:"state"`
	Year            int    `json:"year"`
	Quarter         int    `json:"quarter"`
	RegisteredUsers int64  `json:"registered_users"`
	AppOpens        int64  `json:"app_opens"`
}

// Period returns the record's time grain.
func (r UserRecord) Period() Period { return Period{Year: r.Year, Quarter: r.Quarter} }

// InsuranceRecord is one row of the aggregated insurance dataset: policy
// volume and value per state, quarter and insurance category.
type InsuranceRecord struct {
	State   string  `json:"state"`
	Year    int     `json:"year"`
	Quarter int     `json:"quarter"`
	Type    string  `json:"type"`
	Count   int64   `json:"count"`
	Amount  float64 `json:"amount"`
}

// Period returns the record's time grain.
func (r InsuranceRecord) Period() Period { return Period{Year: r.Year, Quarter: r.Quarter} }

// MapTransactionRecord is one row of the district-level map dataset.
type MapTransactionRecord struct {
	State    string  `json:"state"`
	Year     int     `json:"year"`
	Quarter  int     `json:"quarter"`
	District string  `json:"district"`
	Count    int64   `json:"count"`
	Amount   float64 `json:"amount"`
}

// Period returns the record's time grain.
func (r MapTransactionRecord) Period() Period { return Period{Year: r.Year, Quarter: r.Quarter} }

// TopPerformerRecord is one row of the top performers dataset: the
// highest-ranked entities (states, districts, pincodes) per quarter.
type TopPerformerRecord struct {
	State      string  `json:"state"`
	Year       int     `json:"year"`
	Quarter    int     `json:"quarter"`
	EntityType string  `json:"entity_type"`
	Name       string  `json:"name"`
	Count      int64   `json:"count"`
	Amount     float64 `json:"amount"`
}

// Period returns the record's time grain.
func (r TopPerformerRecord) Period() Period { return Period{Year: r.Year, Quarter: r.Quarter} }
