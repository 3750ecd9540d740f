package network

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"platform-observer/src/helpers"
	"platform-observer/src/logger"
	"platform-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func clientFor(baseURL string) *APIClient {
	cfg := &models.MConfig{
		API: models.MAPIConfig{
			BaseURL:        baseURL,
			RequestTimeout: 2,
			MaxRetries:     3,
			RetryDelayMs:   1,
		},
	}
	return NewAPIClient(cfg, logger.NewLogger("ERROR", "api-test"))
}

// -----------------------------------------------------------------------------

func TestGetDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	var out struct {
		Status string `json:"status"`
	}
	err := clientFor(srv.URL + "/api/v1").Get(context.Background(), "/health", &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Status)
}

// -----------------------------------------------------------------------------

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"value":42}`))
	}))
	defer srv.Close()

	var out struct {
		Value int `json:"value"`
	}
	err := clientFor(srv.URL).Get(context.Background(), "/intel", &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Value)
	assert.Equal(t, int32(3), calls.Load())
}

// -----------------------------------------------------------------------------

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := clientFor(srv.URL).Get(context.Background(), "/missing", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var netErr *helpers.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.StatusNotFound, netErr.StatusCode)
	assert.Equal(t, "/missing", netErr.Endpoint)
}

// -----------------------------------------------------------------------------

func TestGetRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := clientFor(srv.URL).Get(context.Background(), "/quant", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

// -----------------------------------------------------------------------------

func TestGetDoesNotRetryMalformedBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"value":`))
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := clientFor(srv.URL).Get(context.Background(), "/intel", &out)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

// -----------------------------------------------------------------------------

func TestPostSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.MSimulationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "market-shock", req.Scenario)

		w.Write([]byte(`{"id":"sim-42","scenario":"market-shock","status":"pending"}`))
	}))
	defer srv.Close()

	var created models.MSimulation
	err := clientFor(srv.URL).Post(context.Background(), "/simulations", models.MSimulationRequest{Scenario: "market-shock"}, &created)
	require.NoError(t, err)
	assert.Equal(t, "sim-42", created.ID)
}

// -----------------------------------------------------------------------------

func TestBaseURLTrailingSlashNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := clientFor(srv.URL + "/api/v1/").Get(context.Background(), "health", nil)
	require.NoError(t, err)
}
