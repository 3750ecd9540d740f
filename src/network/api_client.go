package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"platform-observer/src/helpers"
	"platform-observer/src/logger"
	"platform-observer/src/models"
)

// -----------------------------------------------------------------------------
// APIClient
// -----------------------------------------------------------------------------

// APIClient is the single point of outbound HTTP calls to the backend.
// Every endpoint resolves against the one configured base URL; panels do
// not get to hardcode their own hosts.
type APIClient struct {
	Config *models.MConfig
	Client *http.Client
	Logger *logger.Logger

	baseURL string
}

// -----------------------------------------------------------------------------

func NewAPIClient(cfg *models.MConfig, log *logger.Logger) *APIClient {
	return &APIClient{
		Config: cfg,
		Client: &http.Client{
			Timeout: time.Duration(cfg.API.RequestTimeout) * time.Second,
		},
		Logger:  log,
		baseURL: strings.TrimRight(cfg.API.BaseURL, "/"),
	}
}

// -----------------------------------------------------------------------------

// resolve joins the endpoint with the configured base URL.
func (ac *APIClient) resolve(endpoint string) (string, error) {
	full := ac.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if _, err := url.Parse(full); err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	return full, nil
}

// -----------------------------------------------------------------------------

// Get fetches the endpoint with retries and decodes the JSON body into out.
func (ac *APIClient) Get(ctx context.Context, endpoint string, out interface{}) error {
	return ac.request(ctx, http.MethodGet, endpoint, nil, out)
}

// -----------------------------------------------------------------------------

// Post sends body as JSON with retries and decodes the response into out.
func (ac *APIClient) Post(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body for %s: %w", endpoint, err)
		}
	}
	return ac.request(ctx, http.MethodPost, endpoint, encoded, out)
}

// -----------------------------------------------------------------------------

// request performs one call with retry-with-backoff. Transport errors,
// 429 and 5xx are retried; other statuses fail immediately.
func (ac *APIClient) request(ctx context.Context, method, endpoint string, body []byte, out interface{}) error {
	full, err := ac.resolve(endpoint)
	if err != nil {
		return err
	}

	baseDelay := time.Duration(ac.Config.API.RetryDelayMs) * time.Millisecond

	return helpers.RetryWithBackoff(ac.Logger, method+" "+endpoint, ac.Config.API.MaxRetries, baseDelay, func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, full, reader)
		if err != nil {
			return helpers.NewNetworkError(endpoint, 0, err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := ac.Client.Do(req)
		if err != nil {
			return helpers.NewNetworkError(endpoint, 0, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// Drain so the connection can be reused
			io.Copy(io.Discard, resp.Body)
			return helpers.NewNetworkError(endpoint, resp.StatusCode, fmt.Errorf("bad status: %d", resp.StatusCode))
		}

		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return helpers.NewNetworkError(endpoint, resp.StatusCode, err)
		}
		if err := json.Unmarshal(raw, out); err != nil {
			// A malformed body will not improve on retry
			return &helpers.PlatformError{
				Message: fmt.Sprintf("failed to decode response from %s", endpoint),
				Cause:   err,
			}
		}
		return nil
	})
}
