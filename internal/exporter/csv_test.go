package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseapi/internal/analytics"
)

func TestStateTotalsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := StateTotalsCSV(&buf, []analytics.StateTotal{
		{State: "goa", Count: 30, Amount: 700.5},
		{State: "karnataka", Count: 350, Amount: 14000},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xef\xbb\xbf"), "BOM prefix for Excel")

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(out, "\xef\xbb\xbf")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "State,Count,Amount", lines[0])
	assert.Equal(t, "goa,30,700.50", lines[1])
	assert.Equal(t, "karnataka,350,14000.00", lines[2])
}

func TestStreamCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, StreamCSV(&buf, []string{"A", "B"}, nil))
	assert.Contains(t, buf.String(), "A,B")
}
