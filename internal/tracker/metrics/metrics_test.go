package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RegisterAndObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.MessagesProcessed.Inc()
	m.ObserveCommand("log_water", time.Now())
	m.ObserveCommand("log_water", time.Now())
	m.ObserveLookup("found", time.Now())
	m.SetUsers(3, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesProcessed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CommandsProcessed.WithLabelValues("log_water")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.UsersTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProfilesTotal))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})
}
