package analytics

import (
	"pulseapi/pkg/contracts/domain"
)

// Filter narrows records by state, year range, quarter and type. Zero values
// mean "all": an empty state matches every state, YearFrom/YearTo of 0 leave
// that bound open, Quarter 0 matches all quarters, an empty Type matches all
// categories.
type Filter struct {
	State    string
	YearFrom int
	YearTo   int
	Quarter  int
	Type     string
}

// Any reports whether the filter restricts anything at all.
func (f Filter) Any() bool {
	return f != Filter{}
}

func (f Filter) matches(state string, year, quarter int, typ string) bool {
	if f.State != "" && f.State != state {
		return false
	}
	if f.YearFrom != 0 && year < f.YearFrom {
		return false
	}
	if f.YearTo != 0 && year > f.YearTo {
		return false
	}
	if f.Quarter != 0 && f.Quarter != quarter {
		return false
	}
	if f.Type != "" && f.Type != typ {
		return false
	}
	return true
}

// FilterTransactions returns the transaction records matching f.
func FilterTransactions(rows []domain.TransactionRecord, f Filter) []domain.TransactionRecord {
	out := make([]domain.TransactionRecord, 0, len(rows))
	for _, r := range rows {
		if f.matches(r.State, r.Year, r.Quarter, r.Type) {
			out = append(out, r)
		}
	}
	return out
}

// FilterUsers returns the user records matching f. The type clause is
// ignored; the users dataset has no category column.
func FilterUsers(rows []domain.UserRecord, f Filter) []domain.UserRecord {
	f.Type = ""
	out := make([]domain.UserRecord, 0, len(rows))
	for _, r := range rows {
		if f.matches(r.State, r.Year, r.Quarter, "") {
			out = append(out, r)
		}
	}
	return out
}

// FilterInsurance returns the insurance records matching f.
func FilterInsurance(rows []domain.InsuranceRecord, f Filter) []domain.InsuranceRecord {
	out := make([]domain.InsuranceRecord, 0, len(rows))
	for _, r := range rows {
		if f.matches(r.State, r.Year, r.Quarter, r.Type) {
			out = append(out, r)
		}
	}
	return out
}

// FilterMapTransactions returns the district records matching f.
func FilterMapTransactions(rows []domain.MapTransactionRecord, f Filter) []domain.MapTransactionRecord {
	f.Type = ""
	out := make([]domain.MapTransactionRecord, 0, len(rows))
	for _, r := range rows {
		if f.matches(r.State, r.Year, r.Quarter, "") {
			out = append(out, r)
		}
	}
	return out
}

// FilterTopPerformers returns the top performer records matching f, with the
// type clause matched against the entity type.
func FilterTopPerformers(rows []domain.TopPerformerRecord, f Filter) []domain.TopPerformerRecord {
	out := make([]domain.TopPerformerRecord, 0, len(rows))
	for _, r := range rows {
		if f.matches(r.State, r.Year, r.Quarter, r.EntityType) {
			out = append(out, r)
		}
	}
	return out
}
