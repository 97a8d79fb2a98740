package dataset

import (
	"pulseapi/pkg/contracts/domain"
)

// Column names as they appear in the CSV headers. The files are produced by
// an upstream aggregation job; the names are fixed and validated at load time.
const (
	colState           = "State"
	colYear            = "Year"
	colQuarter         = "Quarter"
	colTransactionType = "Transaction_Type"
	colTxnCount        = "Transaction_Count"
	colTxnAmount       = "Transaction_Amount"
	colRegisteredUsers = "Registered_Users"
	colAppOpens        = "App_Opens"
	colInsuranceType   = "Insurance_Type"
	colInsuranceCount  = "Insurance_Count"
	colInsuranceAmount = "Insurance_Amount"
	colDistrict        = "District"
	colEntityType      = "Entity_Type"
	colEntityName      = "Entity_Name"
)

// Schema describes the required columns of one dataset.
type Schema struct {
	ID      domain.DatasetID
	File    string
	Columns []string
}

// schemas is the static registry of every dataset the Store can serve.
var schemas = map[domain.DatasetID]Schema{
	domain.DatasetTransactions: {
		ID:      domain.DatasetTransactions,
		File:    "aggregated_transactions.csv",
		Columns: []string{colState, colYear, colQuarter, colTransactionType, colTxnCount, colTxnAmount},
	},
	domain.DatasetUsers: {
		ID:      domain.DatasetUsers,
		File:    "aggregated_users.csv",
		Columns: []string{colState, colYear, colQuarter, colRegisteredUsers, colAppOpens},
	},
	domain.DatasetInsurance: {
		ID:      domain.DatasetInsurance,
		File:    "aggregated_insurance.csv",
		Columns: []string{colState, colYear, colQuarter, colInsuranceType, colInsuranceCount, colInsuranceAmount},
	},
	domain.DatasetMapTransactions: {
		ID:      domain.DatasetMapTransactions,
		File:    "map_transactions.csv",
		Columns: []string{colState, colYear, colQuarter, colDistrict, colTxnCount, colTxnAmount},
	},
	domain.DatasetTopPerformers: {
		ID:      domain.DatasetTopPerformers,
		File:    "top_performers.csv",
		Columns: []string{colState, colYear, colQuarter, colEntityType, colEntityName, colTxnCount, colTxnAmount},
	},
}

// SchemaFor returns the schema registered for id.
func SchemaFor(id domain.DatasetID) (Schema, bool) {
	s, ok := schemas[id]
	return s, ok
}
