package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatasetIDValid(t *testing.T) {
	for _, id := range AllDatasets() {
		assert.True(t, id.Valid(), "dataset %s", id)
	}
	assert.False(t, DatasetID("").Valid())
	assert.False(t, DatasetID("aggregated_payments").Valid())
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "2022-Q3", Period{Year: 2022, Quarter: 3}.Label())
}

func TestPeriodBefore(t *testing.T) {
	tests := []struct {
		name string
		a, b Period
		want bool
	}{
		{name: "earlier year", a: Period{2021, 4}, b: Period{2022, 1}, want: true},
		{name: "same year earlier quarter", a: Period{2022, 1}, b: Period{2022, 2}, want: true},
		{name: "equal", a: Period{2022, 2}, b: Period{2022, 2}, want: false},
		{name: "later", a: Period{2023, 1}, b: Period{2022, 4}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Before(tt.b))
		})
	}
}
