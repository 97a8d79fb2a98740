package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseapi/pkg/contracts/domain"
)

func TestPivotTransactions(t *testing.T) {
	rows := []domain.TransactionRecord{
		{State: "goa", Type: "P2P", Count: 10, Amount: 100},
		{State: "goa", Type: "P2P", Count: 5, Amount: 50},
		{State: "karnataka", Type: "Merchant", Count: 20, Amount: 400},
	}

	got := PivotTransactions(rows, MetricCount)

	assert.Equal(t, []string{"goa", "karnataka"}, got.Rows)
	assert.Equal(t, []string{"Merchant", "P2P"}, got.Columns)
	require.Len(t, got.Values, 2)

	// goa has no Merchant data; the cell is zero-filled, not missing.
	assert.Equal(t, []float64{0, 15}, got.Values[0])
	assert.Equal(t, []float64{20, 0}, got.Values[1])

	byAmount := PivotTransactions(rows, MetricAmount)
	assert.Equal(t, []float64{0, 150}, byAmount.Values[0])
}

func TestPivotTransactionsEmpty(t *testing.T) {
	got := PivotTransactions(nil, MetricCount)
	assert.Empty(t, got.Rows)
	assert.Empty(t, got.Columns)
	assert.Empty(t, got.Values)
}

func TestPenetration(t *testing.T) {
	insurance := []domain.InsuranceRecord{
		{State: "goa", Count: 50},
		{State: "karnataka", Count: 10},
		{State: "sikkim", Count: 5}, // no user rows, must be skipped
	}
	users := []domain.UserRecord{
		{State: "goa", RegisteredUsers: 1000},
		{State: "karnataka", RegisteredUsers: 10000},
	}

	got := Penetration(insurance, users)
	require.Len(t, got, 2, "states missing from the users side are skipped")

	assert.Equal(t, "goa", got[0].State, "sorted by descending penetration")
	assert.InDelta(t, 5, float64(got[0].Penetration), 1e-9)
	assert.Equal(t, "karnataka", got[1].State)
	assert.InDelta(t, 0.1, float64(got[1].Penetration), 1e-9)
}

func TestPenetrationZeroUsers(t *testing.T) {
	got := Penetration(
		[]domain.InsuranceRecord{{State: "goa", Count: 50}},
		[]domain.UserRecord{{State: "goa", RegisteredUsers: 0}},
	)
	require.Len(t, got, 1)
	assert.False(t, got[0].Penetration.IsDefined())
}
