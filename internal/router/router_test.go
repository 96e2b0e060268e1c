package router

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMetricsAreRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := initRouterMetrics("test_http", reg)

	m.requestTotal.WithLabelValues("GET", "/api/v1/clinics", "200").Inc()
	m.requestDuration.WithLabelValues("GET", "/api/v1/clinics", "200").Observe(time.Millisecond.Seconds())
	m.errorTotal.WithLabelValues("GET", "/api/v1/clinics", "http").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["test_http_requests_total"])
	assert.True(t, names["test_http_request_duration_seconds"])
	assert.True(t, names["test_http_errors_total"])
}
