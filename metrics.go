package xlog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Values of the kind label of xlog_errors_total.
const (
	_METRIC_ERR_ARGUMENT = "argument" // empty message, nil stream or buffer, invalid fd
	_METRIC_ERR_COMPOSE  = "compose"  // bad color code
	_METRIC_ERR_WRITE    = "write"    // sink or destination returned an error
	_METRIC_ERR_PANIC    = "panic"    // sink or destination panicked
)

// Metrics counts lines going through a Logger. All methods are safe on a nil
// *Metrics so a logger without metrics pays one nil check per line.
type Metrics struct {
	lines     [_LVL_MAX_for_checks_only]prometheus.Counter
	bytes     prometheus.Counter
	filter    prometheus.Counter
	truncated prometheus.Counter
	errors    map[string]prometheus.Counter
}

// NewMetrics creates the xlog_* counters and registers them with reg
// (prometheus.DefaultRegisterer if nil). Label children are resolved here,
// counting a line does no label lookup.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	linesTotal := factory.NewCounterVec(prometheus.CounterOpts{
		Name: "xlog_lines_total",
		Help: "Total number of composed log lines by level",
	}, []string{"level"})
	errorsTotal := factory.NewCounterVec(prometheus.CounterOpts{
		Name: "xlog_errors_total",
		Help: "Total number of failed log calls by kind",
	}, []string{"kind"})

	m := &Metrics{
		bytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "xlog_bytes_total",
			Help: "Total number of composed bytes",
		}),
		filter: factory.NewCounter(prometheus.CounterOpts{
			Name: "xlog_lines_filtered_total",
			Help: "Total number of log calls dropped by the module level",
		}),
		truncated: factory.NewCounter(prometheus.CounterOpts{
			Name: "xlog_lines_truncated_total",
			Help: "Total number of lines truncated to the buffer capacity",
		}),
		errors: make(map[string]prometheus.Counter, 4),
	}
	for level := range m.lines {
		m.lines[level] = linesTotal.WithLabelValues(LevelNames[level])
	}
	for _, kind := range []string{_METRIC_ERR_ARGUMENT, _METRIC_ERR_COMPOSE, _METRIC_ERR_WRITE, _METRIC_ERR_PANIC} {
		m.errors[kind] = errorsTotal.WithLabelValues(kind)
	}
	return m
}

// composed counts a line that is about to be written.
func (m *Metrics) composed(level Level, b *boundedBuf) {
	if m == nil {
		return
	}
	m.lines[norm_byte(level, _LVL_MAX_for_checks_only, LVL_INVALID)].Inc()
	m.bytes.Add(float64(b.used))
	if b.cut {
		m.truncated.Inc()
	}
}

func (m *Metrics) filtered() {
	if m == nil {
		return
	}
	m.filter.Inc()
}

func (m *Metrics) error(kind string) {
	if m == nil {
		return
	}
	m.errors[kind].Inc()
}
