package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hydrotrack_bot"

// Metrics holds the bot's Prometheus collectors.
type Metrics struct {
	MessagesProcessed prometheus.Counter
	CommandsProcessed *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec
	DialogueSteps     *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec
	LookupDuration    *prometheus.HistogramVec
	UsersTotal        prometheus.Gauge
	ProfilesTotal     prometheus.Gauge
}

// NewMetrics registers the collectors on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MessagesProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_processed_total",
			Help:      "Total number of processed inbound messages",
		}),

		CommandsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_processed_total",
			Help:      "Total number of processed commands by name",
		}, []string{"command"}),

		CommandDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Duration of command processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),

		DialogueSteps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialogue_steps_total",
			Help:      "Dialogue replies by dialogue and outcome",
		}, []string{"dialogue", "outcome"}),

		ErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "User-facing errors by kind",
		}, []string{"kind"}),

		LookupDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nutrition_lookup_duration_seconds",
			Help:      "Duration of nutrition lookups by result",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"result"}),

		UsersTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "users_total",
			Help:      "Users seen since start",
		}),

		ProfilesTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profiles_total",
			Help:      "Users with a completed profile",
		}),
	}
}

func (m *Metrics) ObserveCommand(command string, started time.Time) {
	m.CommandsProcessed.WithLabelValues(command).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveLookup(result string, started time.Time) {
	m.LookupDuration.WithLabelValues(result).Observe(time.Since(started).Seconds())
}

func (m *Metrics) SetUsers(users, profiles int) {
	m.UsersTotal.Set(float64(users))
	m.ProfilesTotal.Set(float64(profiles))
}
