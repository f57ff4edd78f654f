// Package metrics holds the Prometheus collectors served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job metrics are labelled by Zeebe task type. Outcome is completed,
// failed (retries left) or thrown (BPMN error).
var (
	JobsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portal_jobs_in_flight",
			Help: "Jobs currently executing",
		},
		[]string{"task_type"},
	)

	JobOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_jobs_total",
			Help: "Finished jobs by outcome and error code",
		},
		[]string{"task_type", "outcome", "error_code"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_job_duration_seconds",
			Help:    "Time from activation to the completion or failure report",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"task_type", "outcome"},
	)
)

// Portal metrics.
var (
	WizardTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_wizard_transitions_total",
			Help: "Wizard step transitions by direction, source step and outcome",
		},
		[]string{"direction", "step", "outcome"},
	)

	SagaCompensations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_saga_compensations_total",
			Help: "Ticket status rollbacks after a failed notification",
		},
		[]string{"outcome"},
	)

	DocumentsUploaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_documents_uploaded_total",
			Help: "Documents appended to an owner's bucket",
		},
		[]string{"bucket"},
	)

	RiskProfilesComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_risk_profiles_total",
			Help: "Risk profiles created by archetype",
		},
		[]string{"archetype"},
	)

	StoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_store_request_duration_seconds",
			Help:    "Latency of document store calls by backend, verb and collection",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "verb", "collection"},
	)
)
