package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the KYC module.
// Tracks lifecycle transitions, uploads and submission gate outcomes.
type Metrics struct {
	Transitions        *prometheus.CounterVec
	DocumentsUploaded  *prometheus.CounterVec
	UploadsRejected    *prometheus.CounterVec
	SubmissionsBlocked prometheus.Counter
	UploadDuration     prometheus.Histogram
}

// New registers the KYC metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "garagehub_kyc_transitions_total",
			Help: "KYC record status transitions",
		}, []string{"from", "to"}),
		DocumentsUploaded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "garagehub_kyc_documents_uploaded_total",
			Help: "Documents stored per slot kind",
		}, []string{"slot"}),
		UploadsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "garagehub_kyc_uploads_rejected_total",
			Help: "Uploads refused before storage, by error code",
		}, []string{"code"}),
		SubmissionsBlocked: f.NewCounter(prometheus.CounterOpts{
			Name: "garagehub_kyc_submissions_blocked_total",
			Help: "Submissions refused because the record was incomplete",
		}),
		UploadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "garagehub_kyc_upload_duration_seconds",
			Help:    "Duration of document uploads including blob storage",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

func (m *Metrics) IncrementTransition(from, to string) {
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncrementDocumentUploaded(slot string) {
	m.DocumentsUploaded.WithLabelValues(slot).Inc()
}

func (m *Metrics) IncrementUploadRejected(code string) {
	m.UploadsRejected.WithLabelValues(code).Inc()
}

func (m *Metrics) IncrementSubmissionBlocked() {
	m.SubmissionsBlocked.Inc()
}

// ObserveUpload records the duration of an upload.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveUpload(start time.Time) {
	m.UploadDuration.Observe(time.Since(start).Seconds())
}
