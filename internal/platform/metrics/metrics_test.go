package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("GET", "/experts/me/kyc", "200", 20*time.Millisecond)
	m.ObserveRequest("GET", "/experts/me/kyc", "200", 30*time.Millisecond)
	m.ObserveRequest("POST", "/experts/me/kyc/submit", "422", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/experts/me/kyc", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/experts/me/kyc/submit", "422")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}
