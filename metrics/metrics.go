package metrics

import (
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "selftest"
)

var (
	// Debug mirrors every increment to the debug log.
	Debug bool

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "runs_total",
		Help:      "Count of completed self-test runs",
	}, []string{
		"result",
	})

	suitesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "suites_total",
		Help:      "Count of executed suites",
	}, []string{
		"suite",
		"category",
		"result",
	})

	subtestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "subtests_total",
		Help:      "Count of executed subtests",
	}, []string{
		"suite",
		"result",
	})

	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "checks_total",
		Help:      "Count of individual checks",
	}, []string{
		"result",
	})

	lastRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the most recent completed run",
	})

	lastRunDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "last_run_duration_seconds",
		Help:      "Wall-clock duration of the most recent completed run",
	})
)

func RecordRun(result string, duration time.Duration) {
	if Debug {
		log.Debug("metric inc",
			"m", "runs_total",
			"result", result,
			"duration", duration,
		)
	}
	runsTotal.WithLabelValues(result).Inc()
	lastRunTimestamp.SetToCurrentTime()
	lastRunDuration.Set(duration.Seconds())
}

func RecordSuite(suiteName, category, result string) {
	if Debug {
		log.Debug("metric inc",
			"m", "suites_total",
			"suite", suiteName,
			"category", category,
			"result", result,
		)
	}
	suitesTotal.WithLabelValues(suiteName, category, result).Inc()
}

func RecordSubtest(suiteName, result string) {
	if Debug {
		log.Debug("metric inc",
			"m", "subtests_total",
			"suite", suiteName,
			"result", result,
		)
	}
	subtestsTotal.WithLabelValues(suiteName, result).Inc()
}

func RecordCheck(result string) {
	checksTotal.WithLabelValues(result).Inc()
}
