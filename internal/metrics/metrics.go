// Package metrics records wizard, upload and application metrics in Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the service metrics. A nil *Recorder records nothing.
type Recorder struct {
	stepSaves    *prometheus.CounterVec
	saveDuration *prometheus.HistogramVec
	uploads      *prometheus.CounterVec
	applications *prometheus.CounterVec
}

// New registers the metrics on reg. main passes prometheus.DefaultRegisterer;
// tests pass a fresh registry.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		stepSaves: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wizard_step_saves_total",
				Help: "Wizard step saves by flow, step and outcome",
			},
			[]string{"flow", "step", "outcome"},
		),
		saveDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wizard_save_duration_seconds",
				Help:    "Duration of wizard step saves in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"flow"},
		),
		uploads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uploads_total",
				Help: "File uploads by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		applications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "job_applications_total",
				Help: "Job application submissions by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveSave records one step save. outcome is "saved", "rejected", "conflict" or "error".
// Steps below 1 are recorded under the step label "invalid".
func (r *Recorder) ObserveSave(flow string, step int, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	label := "invalid"
	if step >= 1 {
		label = strconv.Itoa(step)
	}
	r.stepSaves.WithLabelValues(flow, label, outcome).Inc()
	r.saveDuration.WithLabelValues(flow).Observe(d.Seconds())
}

func (r *Recorder) ObserveUpload(kind, outcome string) {
	if r == nil {
		return
	}
	r.uploads.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) ObserveApplication(outcome string) {
	if r == nil {
		return
	}
	r.applications.WithLabelValues(outcome).Inc()
}
