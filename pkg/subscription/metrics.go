package subscription

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// config holds registry options.
type config struct {
	Namespace  string
	Subsystem  string
	Registerer prometheus.Registerer
	Logger     *slog.Logger
}

// Option configures a Registry.
type Option func(*config)

// WithNamespace sets the metrics namespace (default: "vango_use").
func WithNamespace(namespace string) Option {
	return func(c *config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem (default: "subscriptions").
func WithSubsystem(subsystem string) Option {
	return func(c *config) {
		c.Subsystem = subsystem
	}
}

// WithRegisterer registers the registry metrics with r. Without it the
// metrics are tracked but not exported.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(c *config) {
		c.Registerer = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.Logger = l
	}
}

func defaultConfig() config {
	return config{
		Namespace: "vango_use",
		Subsystem: "subscriptions",
		Logger:    slog.Default(),
	}
}

type metrics struct {
	active   prometheus.Gauge
	attaches *prometheus.CounterVec
	detaches *prometheus.CounterVec
	pending  *prometheus.CounterVec
}

func newMetrics(c config) *metrics {
	factory := promauto.With(c.Registerer)

	return &metrics{
		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: c.Namespace,
			Subsystem: c.Subsystem,
			Name:      "active",
			Help:      "Number of listeners currently attached to an event source",
		}),
		attaches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: c.Namespace,
			Subsystem: c.Subsystem,
			Name:      "attach_total",
			Help:      "Total number of listeners attached",
		}, []string{"event"}),
		detaches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: c.Namespace,
			Subsystem: c.Subsystem,
			Name:      "detach_total",
			Help:      "Total number of listeners detached",
		}, []string{"event"}),
		pending: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: c.Namespace,
			Subsystem: c.Subsystem,
			Name:      "pending_total",
			Help:      "Total number of subscriptions whose source was not resolved",
		}, []string{"event"}),
	}
}
