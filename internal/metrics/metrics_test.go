package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.Counter.GetValue()
}

func TestRecordBreakdown(t *testing.T) {
	breakdownGenerationsTotal.Reset()
	breakdownDuration.Reset()

	RecordBreakdown("deepseek", "success", 12)
	RecordBreakdown("deepseek", "success", 3)
	RecordBreakdown("gemini", "failed", 1)

	assert.Equal(t, 2.0, counterValue(t, breakdownGenerationsTotal.WithLabelValues("deepseek", "success")))
	assert.Equal(t, 1.0, counterValue(t, breakdownGenerationsTotal.WithLabelValues("gemini", "failed")))

	m := &dto.Metric{}
	obs, err := breakdownDuration.GetMetricWithLabelValues("deepseek")
	require.NoError(t, err)
	require.NoError(t, obs.(prometheus.Histogram).Write(m))
	assert.Equal(t, uint64(2), m.Histogram.GetSampleCount())
	assert.Equal(t, 15.0, m.Histogram.GetSampleSum())
}

func TestRecordTaskToggle(t *testing.T) {
	taskTogglesTotal.Reset()

	RecordTaskToggle(true)
	RecordTaskToggle(true)
	RecordTaskToggle(false)

	assert.Equal(t, 2.0, counterValue(t, taskTogglesTotal.WithLabelValues("completed")))
	assert.Equal(t, 1.0, counterValue(t, taskTogglesTotal.WithLabelValues("reopened")))
}

func TestRecordGoalStatusAndNotification(t *testing.T) {
	goalStatusChangesTotal.Reset()
	notificationDeliveriesTotal.Reset()

	RecordGoalStatusChange("paused")
	RecordNotification("push", "failed")

	assert.Equal(t, 1.0, counterValue(t, goalStatusChangesTotal.WithLabelValues("paused")))
	assert.Equal(t, 1.0, counterValue(t, notificationDeliveriesTotal.WithLabelValues("push", "failed")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	httpRequestsTotal.Reset()
	RecordHTTPRequest("GET", "/api/goals", 200, 0.01)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `smartgoals_http_requests_total{method="GET",route="/api/goals",status="200"} 1`)
}
