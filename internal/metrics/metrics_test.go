package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// gather возвращает значения counter/gauge по имени метрики и склеенным меткам.
func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string]float64)
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "|" + lp.GetValue()
			}

			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}

	return out
}

func TestHTTP_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTP(reg)

	m.Start()
	require.Equal(t, 1.0, gather(t, reg)["bragboard_comments_http_requests_in_flight"])

	m.Observe(http.MethodGet, "/comments", http.StatusOK, 10*time.Millisecond)
	m.Start()
	m.Observe(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	got := gather(t, reg)
	require.Equal(t, 0.0, got["bragboard_comments_http_requests_in_flight"])
	require.Equal(t, 1.0, got["bragboard_comments_http_requests_total|GET|/comments|200"])
	require.Equal(t, 1.0, got["bragboard_comments_http_requests_total|GET|unmatched|404"])
	require.Equal(t, 1.0, got["bragboard_comments_http_request_duration_seconds|GET|/comments"])
}

func TestNewHTTP_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewHTTP(reg)

	require.Panics(t, func() { NewHTTP(reg) })
}
