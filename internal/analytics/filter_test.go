package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseapi/pkg/contracts/domain"
)

func TestFilterTransactions(t *testing.T) {
	rows := sampleTransactions()

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{name: "empty filter keeps everything", filter: Filter{}, want: len(rows)},
		{name: "by state", filter: Filter{State: "karnataka"}, want: 2},
		{name: "by quarter", filter: Filter{Quarter: 1}, want: 3},
		{name: "by type", filter: Filter{Type: "Merchant"}, want: 2},
		{name: "by year range", filter: Filter{YearFrom: 2023}, want: 0},
		{name: "combined", filter: Filter{State: "maharashtra", Quarter: 2}, want: 1},
		{name: "unknown state matches nothing", filter: Filter{State: "atlantis"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterTransactions(rows, tt.filter)
			assert.Len(t, got, tt.want)
			assert.LessOrEqual(t, len(got), len(rows))
		})
	}
}

func TestFilterYearRange(t *testing.T) {
	rows := []domain.TransactionRecord{
		{State: "goa", Year: 2021, Quarter: 1},
		{State: "goa", Year: 2022, Quarter: 1},
		{State: "goa", Year: 2023, Quarter: 1},
	}

	got := FilterTransactions(rows, Filter{YearFrom: 2022, YearTo: 2022})
	require.Len(t, got, 1)
	assert.Equal(t, 2022, got[0].Year)
}

func TestFilterUsersIgnoresType(t *testing.T) {
	rows := []domain.UserRecord{
		{State: "goa", Year: 2022, Quarter: 1, RegisteredUsers: 10},
	}

	// The users dataset has no category column, so a type clause must not
	// exclude anything.
	got := FilterUsers(rows, Filter{Type: "Merchant"})
	assert.Len(t, got, 1)

	got = FilterUsers(rows, Filter{State: "karnataka"})
	assert.Empty(t, got)
}

func TestFilterMapTransactionsIgnoresType(t *testing.T) {
	rows := []domain.MapTransactionRecord{
		{State: "goa", District: "north goa", Year: 2022, Quarter: 1},
	}
	assert.Len(t, FilterMapTransactions(rows, Filter{Type: "P2P"}), 1)
}

func TestFilterTopPerformersMatchesEntityType(t *testing.T) {
	rows := []domain.TopPerformerRecord{
		{State: "goa", Year: 2022, Quarter: 1, EntityType: "district", Name: "north goa"},
		{State: "goa", Year: 2022, Quarter: 1, EntityType: "pincode", Name: "403001"},
	}

	got := FilterTopPerformers(rows, Filter{Type: "district"})
	require.Len(t, got, 1)
	assert.Equal(t, "north goa", got[0].Name)
}

func TestFilterAny(t *testing.T) {
	assert.False(t, Filter{}.Any())
	assert.True(t, Filter{State: "goa"}.Any())
	assert.True(t, Filter{Quarter: 3}.Any())
}
