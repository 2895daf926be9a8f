package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementTransition("in_progress", "submitted")
	m.IncrementTransition("in_progress", "submitted")
	m.IncrementDocumentUploaded("certification")
	m.IncrementUploadRejected("invalid_upload")
	m.IncrementSubmissionBlocked()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("in_progress", "submitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsUploaded.WithLabelValues("certification")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadsRejected.WithLabelValues("invalid_upload")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubmissionsBlocked))
}

func TestNewOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
