package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats_JSON(t *testing.T) {
	stats := DashboardStats{
		Upcoming:      Available(3),
		Attended:      Unavailable(),
		Notifications: Available(0),
	}
	b, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.JSONEq(t, `{"upcoming":3,"attended":"-","notifications":0}`, string(b))

	var decoded DashboardStats
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, stats, decoded)
}

func TestMetric_UnmarshalRejectsOtherStrings(t *testing.T) {
	var m Metric
	require.Error(t, json.Unmarshal([]byte(`"n/a"`), &m))
}

func TestMetric_Value(t *testing.T) {
	n, ok := Available(7).Value()
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = Unavailable().Value()
	assert.False(t, ok)
	assert.Equal(t, "-", Unavailable().String())
}
