package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(submissionStartedTotal)
	IncSubmissionStarted()
	assert.Equal(t, before+1, testutil.ToFloat64(submissionStartedTotal))

	failures := testutil.ToFloat64(bulkDeleteFileFailuresTotal)
	AddBulkDeleteFileFailures(2)
	AddBulkDeleteFileFailures(0)
	AddBulkDeleteFileFailures(-3)
	assert.Equal(t, failures+2, testutil.ToFloat64(bulkDeleteFileFailuresTotal))
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	ObserveSubmissionDurationMs(-5)
	ObserveSubmissionDurationMs(50)
	ObserveSubmissionDurationMs(400)

	out := scrape(t)
	assert.Contains(t, out, `submission_duration_ms_bucket{le="100"} 2`)
	assert.Contains(t, out, `submission_duration_ms_bucket{le="500"} 3`)
	assert.Contains(t, out, `submission_duration_ms_bucket{le="+Inf"} 3`)
	assert.Contains(t, out, "submission_duration_ms_sum 450")
	assert.Contains(t, out, "submission_duration_ms_count 3")
}

func TestHandlerExposesAllSeries(t *testing.T) {
	IncBulkDelete()

	out := scrape(t)
	for _, name := range []string{
		"submission_started_total",
		"submission_completed_total",
		"submission_failed_total",
		"bulk_delete_total",
		"bulk_delete_file_failures_total",
		"submission_duration_ms_count",
	} {
		assert.True(t, strings.Contains(out, name), "missing %s", name)
	}
}

func scrape(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Handler())

	srv := httptest.NewServer(r)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body)
}
