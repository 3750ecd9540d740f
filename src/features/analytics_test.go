package features

import (
	"errors"
	"testing"
	"time"

	"platform-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func newTestAnalytics(api *fakeAPI, store *fakeStore) *AnalyticsManager {
	return NewAnalyticsManager(testConfig(), testLogger(), api, newFakeSocket(), store, newFakeExchange())
}

// -----------------------------------------------------------------------------

func TestAnalyticsInitAssemblesBothEndpoints(t *testing.T) {
	api := newFakeAPI()
	api.responses["/quant"] = `{
		"performance":{"requests_per_second":250,"average_latency_ms":18,"error_rate":0.001,"uptime_seconds":3600},
		"test_results":[
			{"id":"t1","suite":"alpha","passed":true,"duration_ms":120},
			{"id":"t2","suite":"beta","passed":false,"duration_ms":480}
		]}`
	api.responses["/streams"] = `{"features":[
		{"id":"quant","name":"Quantitative Engine","enabled":true,"health":"healthy"},
		{"id":"prophecy","name":"Regulatory Prophecy","enabled":false,"health":"degraded"}
	]}`
	am := newTestAnalytics(api, newFakeStore())
	defer am.Destroy()

	require.NoError(t, am.Init())

	snap := am.Snapshot()
	assert.InDelta(t, 250, snap.Performance.RequestsPerSecond, 1e-9)
	assert.Len(t, snap.TestResults, 2)
	assert.Len(t, snap.Features, 2)
	assert.Equal(t, 2, snap.Metrics.TotalTests)
	assert.InDelta(t, 0.5, snap.Metrics.PassRate, 1e-9)
	assert.Equal(t, 1, snap.Metrics.EnabledFeatures)
}

// -----------------------------------------------------------------------------

func TestAnalyticsTestResultsAppend(t *testing.T) {
	api := newFakeAPI()
	api.responses["/quant"] = `{"performance":{},"test_results":[{"id":"t1","suite":"alpha","passed":true}]}`
	api.responses["/streams"] = `{"features":[]}`
	am := newTestAnalytics(api, newFakeStore())
	defer am.Destroy()
	require.NoError(t, am.Init())

	am.handleMessage(envelope(models.TopicTestResults, models.MTestResultsPayload{
		Results: []models.MTestResult{
			{ID: "t2", Suite: "beta", Passed: true, DurationMs: 90},
			{ID: "t3", Suite: "gamma", Passed: false, DurationMs: 200},
		},
	}))

	snap := am.Snapshot()
	require.Len(t, snap.TestResults, 3)
	assert.Equal(t, "t3", snap.TestResults[2].ID)
	assert.Equal(t, 3, snap.Metrics.TotalTests)
	assert.InDelta(t, 2.0/3.0, snap.Metrics.PassRate, 1e-9)
}

// -----------------------------------------------------------------------------

func TestAnalyticsPerformanceReplacedWholesale(t *testing.T) {
	api := newFakeAPI()
	api.responses["/quant"] = `{"performance":{"requests_per_second":100},"test_results":[]}`
	api.responses["/streams"] = `{"features":[]}`
	am := newTestAnalytics(api, newFakeStore())
	defer am.Destroy()
	require.NoError(t, am.Init())

	am.handleMessage(envelope(models.TopicPerformanceMetrics, models.MPerformanceMetricsPayload{
		Metrics: models.MPerformanceMetrics{RequestsPerSecond: 300, AverageLatencyMs: 12},
	}))

	snap := am.Snapshot()
	assert.InDelta(t, 300, snap.Performance.RequestsPerSecond, 1e-9)
	assert.InDelta(t, 12, snap.Performance.AverageLatencyMs, 1e-9)
	assert.Equal(t, uint64(2), snap.Version)
}

// -----------------------------------------------------------------------------

func TestAnalyticsFeatureStatusUpsertsByID(t *testing.T) {
	api := newFakeAPI()
	api.responses["/quant"] = `{"performance":{},"test_results":[]}`
	api.responses["/streams"] = `{"features":[{"id":"quant","enabled":false,"health":"degraded"}]}`
	am := newTestAnalytics(api, newFakeStore())
	defer am.Destroy()
	require.NoError(t, am.Init())

	am.handleMessage(envelope(models.TopicFeatureStatus, models.MFeatureStatusPayload{
		Status: models.MFeatureStatus{ID: "quant", Name: "Quantitative Engine", Enabled: true, Health: "healthy"},
	}))
	am.handleMessage(envelope(models.TopicFeatureStatus, models.MFeatureStatusPayload{
		Status: models.MFeatureStatus{ID: "streams", Name: "Stream Processing", Enabled: true, Health: "healthy"},
	}))

	snap := am.Snapshot()
	require.Len(t, snap.Features, 2)
	assert.True(t, snap.Features["quant"].Enabled)
	assert.Equal(t, 2, snap.Metrics.EnabledFeatures)
}

// -----------------------------------------------------------------------------

func TestAnalyticsInitRestoresFromCache(t *testing.T) {
	api := newFakeAPI()
	api.errs["/quant"] = errors.New("down")
	store := newFakeStore()
	cached := `{"performance":{"requests_per_second":77},"test_results":[],"features":{},"version":4}`
	require.NoError(t, store.Save(analyticsFeature, []byte(cached), time.Now()))

	am := newTestAnalytics(api, store)
	defer am.Destroy()
	require.NoError(t, am.Init())

	snap := am.Snapshot()
	assert.InDelta(t, 77, snap.Performance.RequestsPerSecond, 1e-9)
	// Init owns the version counter regardless of what was cached.
	assert.Equal(t, uint64(1), snap.Version)
}

// -----------------------------------------------------------------------------

func TestAnalyticsStaleCacheFallsBackToDefaults(t *testing.T) {
	api := newFakeAPI()
	api.errs["/quant"] = errors.New("down")
	store := newFakeStore()
	cached := `{"performance":{"requests_per_second":77},"test_results":[],"features":{}}`
	require.NoError(t, store.Save(analyticsFeature, []byte(cached), time.Now().Add(-time.Hour)))

	am := newTestAnalytics(api, store)
	defer am.Destroy()
	require.NoError(t, am.Init())

	// Defaults carry three canned test results.
	assert.Len(t, am.Snapshot().TestResults, 3)
}
