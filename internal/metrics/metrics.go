// Package metrics exposes Prometheus collectors for the triage service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeOK labels successful channel dispatches.
	OutcomeOK = "ok"
	// OutcomeError labels failed channel dispatches.
	OutcomeError = "error"
)

var (
	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vetlink_triage",
			Name:      "queue_depth",
			Help:      "Number of cases currently waiting in the triage queue.",
		},
	)

	intakeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vetlink_triage",
			Name:      "intake_total",
			Help:      "Total cases created at intake, partitioned by triage level.",
		},
		[]string{"triage_level"},
	)

	assignedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vetlink_triage",
			Name:      "assigned_total",
			Help:      "Total case assignments, manual and automatic.",
		},
	)

	alertsFiredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vetlink_triage",
			Name:      "alerts_fired_total",
			Help:      "Total alert instances raised, partitioned by severity.",
		},
		[]string{"severity"},
	)

	alertsResolvedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vetlink_triage",
			Name:      "alerts_resolved_total",
			Help:      "Total alert instances resolved.",
		},
	)

	sampleFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vetlink_triage",
			Name:      "sample_failures_total",
			Help:      "Metric samples that failed or timed out, partitioned by metric.",
		},
		[]string{"metric"},
	)

	dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vetlink_triage",
			Name:      "dispatch_total",
			Help:      "Notification dispatch attempts, partitioned by channel type and outcome.",
		},
		[]string{"channel_type", "outcome"},
	)

	escalationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vetlink_triage",
			Name:      "escalations_total",
			Help:      "Escalation levels dispatched, partitioned by level index.",
		},
		[]string{"level"},
	)
)

// Register attaches triage collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		queueDepth,
		intakeTotal,
		assignedTotal,
		alertsFiredTotal,
		alertsResolvedTotal,
		sampleFailuresTotal,
		dispatchTotal,
		escalationsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// SetQueueDepth records the current waiting-queue depth.
func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}

// IncIntake records a case intake by triage level.
func IncIntake(level string) {
	intakeTotal.WithLabelValues(level).Inc()
}

// IncAssigned records a case assignment.
func IncAssigned() {
	assignedTotal.Inc()
}

// IncAlertFired records a raised alert instance by severity.
func IncAlertFired(severity string) {
	alertsFiredTotal.WithLabelValues(severity).Inc()
}

// IncAlertResolved records a resolved alert instance.
func IncAlertResolved() {
	alertsResolvedTotal.Inc()
}

// IncSampleFailure records a failed or timed-out metric sample.
func IncSampleFailure(metric string) {
	sampleFailuresTotal.WithLabelValues(metric).Inc()
}

// IncDispatch records a notification dispatch attempt.
func IncDispatch(channelType, outcome string) {
	dispatchTotal.WithLabelValues(channelType, outcome).Inc()
}

// IncEscalation records a dispatched escalation level.
func IncEscalation(level string) {
	escalationsTotal.WithLabelValues(level).Inc()
}
