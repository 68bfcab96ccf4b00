package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RegistersCollectors(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterRequests.WithLabelValues("GET", "/api/v1/me", "200").Inc()
	m.CounterWorkoutsCreated.Inc()
	m.CounterNotificationsPushed.WithLabelValues("success").Add(2)
	m.HistPlannedDistance.Observe(4.33)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterWorkoutsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterNotificationsPushed.WithLabelValues("success")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "coaching_test_server_request")
	assert.Contains(t, names, "coaching_test_server_planned_distance_km")
}

func TestNewRegistry_RuntimeCollectors(t *testing.T) {
	reg := NewRegistry()
	NewManager("coaching", "api", reg)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
	assert.True(t, names["go_build_info"])
}
