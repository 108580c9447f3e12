// Package metrics exposes Prometheus instrumentation for the submission
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SubmissionsTotal counts accepted submissions per form.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_cms_submissions_total",
		Help: "Accepted form submissions.",
	}, []string{"form"})

	// SubmissionFailures counts rejected submission attempts per form.
	SubmissionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_cms_submission_failures_total",
		Help: "Rejected form submission attempts.",
	}, []string{"form", "reason"})
)

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
